package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
)

// healthzResponse is liveness only: it never touches storage.
type healthzResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Engine         string  `json:"engine,omitempty"`
	DisplayedCount int     `json:"displayed_sessions"`
	ImportEnabled  bool    `json:"import_enabled"`
	Version        string  `json:"version,omitempty"`
	Commit         string  `json:"commit,omitempty"`
	BuildDate      string  `json:"build_date,omitempty"`
	GoVersion      string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			ImportEnabled: d.ImportTrigger != nil,
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		}
		if d.Storage != nil {
			resp.Engine = d.Storage.Name()
		}
		if d.Expiry != nil {
			resp.DisplayedCount = d.Expiry.Count()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
