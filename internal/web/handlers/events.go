package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pcastillom/presencia/internal/store"
)

// eventDateLayout is the wire format for event dates.
const eventDateLayout = "2006-01-02"

// EventsHandler handles event directory endpoints.
type EventsHandler struct {
	directory store.Directory
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(d store.Directory) *EventsHandler {
	return &EventsHandler{directory: d}
}

// EventRequest represents an event create or update payload.
type EventRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Presenter   string `json:"presenter"`
	Active      bool   `json:"active"`
}

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Presenter   string `json:"presenter"`
	Active      bool   `json:"active"`
}

func eventToResponse(e store.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Date:        e.Date.Format(eventDateLayout),
		Description: e.Description,
		Presenter:   e.Presenter,
		Active:      e.Active,
	}
}

func eventFromRequest(req EventRequest) (store.Event, error) {
	date, err := time.Parse(eventDateLayout, req.Date)
	if err != nil {
		return store.Event{}, err
	}
	return store.Event{
		Name:        req.Name,
		Date:        date,
		Description: req.Description,
		Presenter:   req.Presenter,
		Active:      req.Active,
	}, nil
}

// List returns all events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.directory.ListEvents(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	response := make([]EventResponse, len(events))
	for i, e := range events {
		response[i] = eventToResponse(e)
	}
	respondJSON(w, http.StatusOK, response)
}

// Create registers a new event.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	event, err := eventFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if err := h.directory.CreateEvent(r.Context(), &event); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create event")
		return
	}
	respondJSON(w, http.StatusCreated, eventToResponse(event))
}

// Get returns a single event by id.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.directory.EventByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	respondJSON(w, http.StatusOK, eventToResponse(*event))
}

// Update modifies an existing event.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	event, err := eventFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	event.ID = id
	err = h.directory.UpdateEvent(r.Context(), &event)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update event")
		return
	}
	respondJSON(w, http.StatusOK, eventToResponse(event))
}

// ActivateRequest toggles an event's active flag.
type ActivateRequest struct {
	Active bool `json:"active"`
}

// Activate sets whether recognition sessions may pick this event.
func (h *EventsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	err = h.directory.SetEventActive(r.Context(), id, req.Active)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "active": req.Active})
}
