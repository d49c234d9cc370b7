package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/utils"
)

// AllowOnlyCIDRS rejects clients outside the allow-list with 403. An empty
// list lets everything through. trustProxy resolves the client from proxy
// headers (cloudflared, nginx).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return passthrough
	}
	log.Debug("client allow-list active",
		logger.Strings("rules", allowed),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debug("client rejected",
					logger.String("ip", ip),
					logger.String("remote_addr", r.RemoteAddr))
				deny(w, "client not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
