package handlers

import (
	"net/http"
	"time"

	"github.com/pcastillom/presencia/internal/store"
)

// AttendanceHandler handles the attendance ledger endpoints.
type AttendanceHandler struct {
	directory store.Directory
	ledger    store.Ledger
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(d store.Directory, l store.Ledger) *AttendanceHandler {
	return &AttendanceHandler{directory: d, ledger: l}
}

// AttendanceResponse represents an attendance record in API responses,
// enriched with the user and event names when they resolve.
type AttendanceResponse struct {
	ID         int    `json:"id"`
	UserID     int    `json:"user_id"`
	UserName   string `json:"user_name,omitempty"`
	EventID    int    `json:"event_id"`
	EventName  string `json:"event_name,omitempty"`
	RecordedAt string `json:"recorded_at"`
}

// List returns every attendance record.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.ListAttendance(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}

	userNames := map[int]string{}
	eventNames := map[int]string{}
	response := make([]AttendanceResponse, len(records))
	for i, rec := range records {
		if _, ok := userNames[rec.UserID]; !ok {
			if u, err := h.directory.UserByID(r.Context(), rec.UserID); err == nil {
				userNames[rec.UserID] = u.Name
			} else {
				userNames[rec.UserID] = ""
			}
		}
		if _, ok := eventNames[rec.EventID]; !ok {
			if e, err := h.directory.EventByID(r.Context(), rec.EventID); err == nil {
				eventNames[rec.EventID] = e.Name
			} else {
				eventNames[rec.EventID] = ""
			}
		}
		response[i] = AttendanceResponse{
			ID:         rec.ID,
			UserID:     rec.UserID,
			UserName:   userNames[rec.UserID],
			EventID:    rec.EventID,
			EventName:  eventNames[rec.EventID],
			RecordedAt: rec.RecordedAt.Format(time.RFC3339),
		}
	}
	respondJSON(w, http.StatusOK, response)
}
