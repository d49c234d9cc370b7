package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
)

const probeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Storage string `json:"storage,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Readyz reports ready once the storage connection answers a ping. The
// first probe also performs the lazy open.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		if err := d.Storage.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{
				Ready:   false,
				Storage: d.Storage.Name(),
				Error:   err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{
			Ready:   true,
			Storage: d.Storage.Name(),
		})
	}
}
