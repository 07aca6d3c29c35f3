package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pcastillom/presencia/internal/store"
	"github.com/pcastillom/presencia/internal/store/mock"
)

func TestEventsHandler_CreateAndGet(t *testing.T) {
	directory := mock.NewDirectory()
	handler := NewEventsHandler(directory)

	rec := httptest.NewRecorder()
	handler.Create(rec, newJSONRequest(t, "POST", "/api/v1/events", EventRequest{
		Name:      "Charla de seguridad",
		Date:      "2026-09-01",
		Presenter: "Carla Soto",
		Active:    true,
	}))
	assertStatusCode(t, rec, http.StatusCreated)

	var created EventResponse
	parseJSONResponse(t, rec, &created)
	if created.Date != "2026-09-01" {
		t.Fatalf("date = %q, want %q", created.Date, "2026-09-01")
	}

	rec = httptest.NewRecorder()
	req := withURLParam(newJSONRequest(t, "GET", "/api/v1/events/1", nil), "id", "1")
	handler.Get(rec, req)
	assertStatusCode(t, rec, http.StatusOK)
}

func TestEventsHandler_Create_BadDate(t *testing.T) {
	handler := NewEventsHandler(mock.NewDirectory())

	rec := httptest.NewRecorder()
	handler.Create(rec, newJSONRequest(t, "POST", "/api/v1/events", EventRequest{
		Name: "Charla",
		Date: "01/09/2026",
	}))
	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestEventsHandler_Activate(t *testing.T) {
	directory := mock.NewDirectory()
	directory.AddEvent(store.Event{ID: 1, Name: "Charla", Date: time.Now(), Active: false})
	handler := NewEventsHandler(directory)

	rec := httptest.NewRecorder()
	req := withURLParam(newJSONRequest(t, "POST", "/api/v1/events/1/activate", ActivateRequest{Active: true}), "id", "1")
	handler.Activate(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	event, err := directory.EventByID(req.Context(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !event.Active {
		t.Fatal("event was not activated")
	}
}

func TestEventsHandler_Activate_NotFound(t *testing.T) {
	handler := NewEventsHandler(mock.NewDirectory())

	rec := httptest.NewRecorder()
	req := withURLParam(newJSONRequest(t, "POST", "/api/v1/events/9/activate", ActivateRequest{Active: true}), "id", "9")
	handler.Activate(rec, req)
	assertStatusCode(t, rec, http.StatusNotFound)
}
