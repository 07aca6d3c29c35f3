package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pcastillom/presencia/internal/lbph"
	"github.com/pcastillom/presencia/internal/session"
	"github.com/pcastillom/presencia/internal/store"
)

// SessionsHandler exposes the capture, training and recognition
// operations. Capture and recognition hold the camera for minutes, so
// they run as background jobs polled through the jobs endpoints;
// training runs inline.
type SessionsHandler struct {
	pipeline *session.Pipeline
	jobs     *JobManager
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(p *session.Pipeline, jobs *JobManager) *SessionsHandler {
	return &SessionsHandler{pipeline: p, jobs: jobs}
}

// CaptureRequest starts a capture session for one user.
type CaptureRequest struct {
	UserID int `json:"user_id"`
}

// CaptureResult is the payload of a completed capture job.
type CaptureResult struct {
	Stored int `json:"stored"`
}

// Capture starts an async capture session.
func (h *SessionsHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	// Reject unknown users before committing the camera to a job.
	if _, err := h.pipeline.Directory.UserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "user lookup failed")
		return
	}

	job, err := h.jobs.Start("capture", func(ctx context.Context, job *Job) (any, error) {
		h.pipeline.OnCaptureProgress = func(stored, total int) {
			job.SetProgress(stored * 100 / total)
		}
		stored, err := h.pipeline.Capture(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		return CaptureResult{Stored: stored}, nil
	})
	if errors.Is(err, ErrSessionBusy) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, job.Snapshot())
}

// TrainResponse reports a finished training run.
type TrainResponse struct {
	Samples int `json:"samples"`
	Skipped int `json:"skipped"`
	Classes int `json:"classes"`
}

// Train fits the model on the stored dataset.
func (h *SessionsHandler) Train(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.Train(r.Context())
	if err != nil {
		if errors.Is(err, lbph.ErrEmptyDataset) {
			respondError(w, http.StatusConflict, "dataset is empty, capture samples first")
			return
		}
		respondError(w, http.StatusInternalServerError, "training failed")
		return
	}
	respondJSON(w, http.StatusOK, TrainResponse{
		Samples: report.Samples,
		Skipped: report.Skipped,
		Classes: report.Classes,
	})
}

// RecognizeRequest starts a recognition session. EventID zero selects
// the most recent active event.
type RecognizeRequest struct {
	EventID int `json:"event_id"`
}

// Recognize starts an async recognition session.
func (h *SessionsHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req RecognizeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	// Resolve the event now so callers get a proper status code instead
	// of a failed job.
	if _, err := h.pipeline.ResolveEvent(r.Context(), req.EventID); err != nil {
		switch {
		case errors.Is(err, session.ErrEventNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, session.ErrEventNotActive), errors.Is(err, session.ErrNoActiveEvent):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "event lookup failed")
		}
		return
	}

	job, err := h.jobs.Start("recognize", func(ctx context.Context, job *Job) (any, error) {
		if err := h.pipeline.Recognize(ctx, req.EventID); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if errors.Is(err, ErrSessionBusy) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, job.Snapshot())
}

// Status returns the state of one session job.
func (h *SessionsHandler) Status(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobs.Get(chi.URLParam(r, "jobID"))
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// Cancel stops a running session job.
func (h *SessionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobs.Get(chi.URLParam(r, "jobID"))
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	job.Cancel()
	respondJSON(w, http.StatusOK, job.Snapshot())
}
