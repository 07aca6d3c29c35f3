package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/pcastillom/presencia/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	usersHandler := handlers.NewUsersHandler(s.directory)
	eventsHandler := handlers.NewEventsHandler(s.directory)
	attendanceHandler := handlers.NewAttendanceHandler(s.directory, s.ledger)
	sessionsHandler := handlers.NewSessionsHandler(s.pipeline, s.jobs)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Users
		r.Get("/users", usersHandler.List)
		r.Post("/users", usersHandler.Create)
		r.Get("/users/{id}", usersHandler.Get)
		r.Put("/users/{id}", usersHandler.Update)

		// Events
		r.Get("/events", eventsHandler.List)
		r.Post("/events", eventsHandler.Create)
		r.Get("/events/{id}", eventsHandler.Get)
		r.Put("/events/{id}", eventsHandler.Update)
		r.Post("/events/{id}/activate", eventsHandler.Activate)

		// Attendance ledger
		r.Get("/attendance", attendanceHandler.List)

		// Camera sessions (long-running, run as background jobs)
		r.Post("/sessions/capture", sessionsHandler.Capture)
		r.Post("/sessions/train", sessionsHandler.Train)
		r.Post("/sessions/recognize", sessionsHandler.Recognize)
		r.Get("/sessions/{jobID}", sessionsHandler.Status)
		r.Delete("/sessions/{jobID}", sessionsHandler.Cancel)
	})
}
