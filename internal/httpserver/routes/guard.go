package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/mw"
)

// guarded applies the access restrictions shared by every API route.
func guarded(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
}

// writes additionally rate limits mutating routes.
func writes(r chi.Router, d deps.Deps) chi.Router {
	if d.WriteLimiter == nil {
		return r
	}
	return r.With(d.WriteLimiter)
}
