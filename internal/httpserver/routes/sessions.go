package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/handlers"
)

func init() { Register("sessions", registerSessions) }

func registerSessions(r chi.Router, d deps.Deps) {
	g := guarded(r, d)
	g.Get("/api/sessions", handlers.ListSessions(d))
	g.Get("/api/sessions/{id}", handlers.GetSession(d))

	w := writes(g, d)
	w.Post("/api/sessions", handlers.CreateSession(d))
	w.Put("/api/sessions/{id}", handlers.UpdateSession(d))
	w.Delete("/api/sessions/{id}", handlers.DeleteSession(d))
}
