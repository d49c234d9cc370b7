package mw

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/utils"
)

// EnforceHost rejects requests whose Host header matches none of the
// patterns. "*.example.com" matches any subdomain; a pattern without a port
// matches the host on any port. An empty list lets everything through.
func EnforceHost(patterns []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(patterns) == 0 {
		return passthrough
	}
	log.Debug("host allow-list active", logger.Strings("hosts", patterns))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range patterns {
				if matchHost(r.Host, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Debug("host rejected", logger.String("host", r.Host))
			deny(w, "host not allowed")
		})
	}
}

func matchHost(host, pattern string) bool {
	if !strings.Contains(pattern, ":") {
		host = utils.ParseHostNoPort(host)
	}
	if host == pattern {
		return true
	}
	suffix, wildcard := strings.CutPrefix(pattern, "*")
	return wildcard && strings.HasPrefix(suffix, ".") && strings.HasSuffix(host, suffix)
}

func passthrough(next http.Handler) http.Handler { return next }

// deny writes the same JSON error shape as the API handlers.
func deny(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
}
