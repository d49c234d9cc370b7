package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/handlers"
)

func init() { Register("links", registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	g := guarded(r, d)
	g.Get("/api/links", handlers.ListLinks(d))

	w := writes(g, d)
	w.Post("/api/links", handlers.CreateLink(d))
	w.Delete("/api/links/{id}", handlers.DeleteLink(d))
}
