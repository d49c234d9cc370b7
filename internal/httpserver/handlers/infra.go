package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Engine   string `json:"engine,omitempty"`
	Sessions *int   `json:"sessions_displayed,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"storage": checkStorage(r.Context(), d),
			"expiry":  checkExpiry(d),
			"import":  checkImport(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Storage down means every operation fails
	if s, ok := components["storage"]; ok && !s.OK {
		return "critical"
	}

	// Expiry down means sessions outlive their deadline
	if e, ok := components["expiry"]; ok && !e.OK {
		return "degraded"
	}

	return "ok"
}

func checkStorage(parent context.Context, d deps.Deps) componentStatus {
	if d.Storage == nil {
		return componentStatus{OK: false, Error: "not configured"}
	}

	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	if err := d.Storage.Ping(ctx); err != nil {
		return componentStatus{OK: false, Engine: d.Storage.Name(), Error: err.Error()}
	}
	return componentStatus{OK: true, Engine: d.Storage.Name()}
}

func checkExpiry(d deps.Deps) componentStatus {
	if d.Expiry == nil {
		return componentStatus{OK: false, Error: "supervisor not running"}
	}
	n := d.Expiry.Count()
	return componentStatus{OK: true, Sessions: &n}
}

func checkImport(d deps.Deps) componentStatus {
	if d.ImportTrigger == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Mode: "homepage"}
}
