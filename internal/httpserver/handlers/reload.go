package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

type reloadResponse struct {
	Import string `json:"import"`
	Sync   string `json:"sync"`
}

// Reload triggers a bookmark import (when enabled) and a session resync.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := reloadResponse{
			Import: trigger(d, d.ImportTrigger, "bookmark import", r.RemoteAddr),
			Sync:   trigger(d, d.SyncTrigger, "session sync", r.RemoteAddr),
		}

		if resp.Import == "triggered" || resp.Sync == "triggered" {
			writeJSON(w, http.StatusAccepted, resp)
			return
		}
		writeJSON(w, http.StatusTooManyRequests, resp)
	}
}

func trigger(d deps.Deps, ch chan struct{}, what, remote string) string {
	if ch == nil {
		return "disabled"
	}
	select {
	case ch <- struct{}{}:
		d.Logger.Info("manual "+what+" triggered via endpoint",
			logger.String("remote_ip", remote))
		return "triggered"
	default:
		d.Logger.Warn(what+" already in progress",
			logger.String("remote_ip", remote))
		return "busy"
	}
}
