package mw

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/utils"
)

// RateLimitConfig configures the per-client token bucket guarding the
// mutating API routes.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int           // sweep early once this many clients are tracked (0 = unbounded)
	SweepInterval     time.Duration // defaults to 1m
	IdleTTL           time.Duration // forget clients idle for this long, defaults to 15m
	TrustProxy        bool
	Now               func() time.Time
}

type bucket struct {
	tokens   float64
	refilled time.Time
}

type decision struct {
	allowed    bool
	remaining  int
	retryAfter int
}

type limiter struct {
	cfg      RateLimitConfig
	perSec   float64
	capacity float64

	mu        sync.Mutex
	clients   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerIPPerMin = max(cfg.RefillPerIPPerMin, 1)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:       cfg,
		perSec:    float64(cfg.RefillPerIPPerMin) / 60,
		capacity:  float64(cfg.Burst),
		clients:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// take spends one token from the client's bucket.
func (l *limiter) take(client string, now time.Time) decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries) {
		l.sweep(now)
	}

	b, ok := l.clients[client]
	if !ok {
		b = &bucket{tokens: l.capacity, refilled: now}
		l.clients[client] = b
	}

	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSec)
		b.refilled = now
	}

	if b.tokens < 1 {
		wait := int(math.Ceil((1 - b.tokens) / l.perSec))
		return decision{retryAfter: max(wait, 1)}
	}
	b.tokens--
	return decision{allowed: true, remaining: int(b.tokens)}
}

// sweep drops buckets that have been full and untouched for IdleTTL.
func (l *limiter) sweep(now time.Time) {
	for client, b := range l.clients {
		if now.Sub(b.refilled) > l.cfg.IdleTTL {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}

// RateLimit is a per-client token bucket. Rejected requests get a JSON 429
// with a Retry-After header.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.take(utils.ClientIP(r, l.cfg.TrustProxy), l.cfg.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
			if d.allowed {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Retry-After", strconv.Itoa(d.retryAfter))
			h.Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
		})
	}
}
