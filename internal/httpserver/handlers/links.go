package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

type createLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := d.Links.ListAll(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, links)
	}
}

// CreateLink stores a standalone link. Ids are always assigned server side.
func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		link := domain.Link{Title: req.Title, URL: req.URL}
		if err := link.Validate(); err != nil {
			writeError(w, r, d, badRequest{err: err})
			return
		}

		created, err := d.Links.Create(r.Context(), link)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("link created",
			logger.String("link_id", created.ID))
		writeJSON(w, http.StatusCreated, created)
	}
}

func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Links.Delete(r.Context(), id); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
