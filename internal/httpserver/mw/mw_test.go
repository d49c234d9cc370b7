package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"bmo.example.com", "bmo.example.com", true},
		{"bmo.example.com:8080", "bmo.example.com", true},
		{"bmo.example.com:8080", "bmo.example.com:9090", false},
		{"sub.example.com", "*.example.com", true},
		{"sub.example.com:443", "*.example.com", true},
		{"example.org", "*.example.com", false},
		{"evil.com", "bmo.example.com", false},
	}

	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"bmo.local"}, logger.Nop())(okHandler)

	req := httptest.NewRequest(http.MethodGet, "http://bmo.local/api/links", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("allowed host got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "http://other.local/api/links", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign host got %d, want 403", rec.Code)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		remoteAddr string
		xff        string
		trustProxy bool
		want       int
	}{
		{name: "empty list passes", allowed: nil, remoteAddr: "8.8.8.8:1234", want: http.StatusOK},
		{name: "cidr match", allowed: []string{"10.0.0.0/8"}, remoteAddr: "10.1.2.3:1234", want: http.StatusOK},
		{name: "exact ip", allowed: []string{"192.168.1.10"}, remoteAddr: "192.168.1.10:80", want: http.StatusOK},
		{name: "rejected", allowed: []string{"10.0.0.0/8"}, remoteAddr: "8.8.8.8:1234", want: http.StatusForbidden},
		{name: "xff ignored without trust", allowed: []string{"10.0.0.0/8"}, remoteAddr: "8.8.8.8:1", xff: "10.0.0.1", want: http.StatusForbidden},
		{name: "xff trusted", allowed: []string{"10.0.0.0/8"}, remoteAddr: "127.0.0.1:1", xff: "10.0.0.1, 1.1.1.1", trustProxy: true, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, tt.trustProxy, logger.Nop())(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(okHandler)

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/links", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("1.2.3.4:5"); rec.Code != http.StatusOK {
			t.Fatalf("request %d got %d", i, rec.Code)
		}
	}

	rec := do("1.2.3.4:5")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", rec.Header().Get("Retry-After"))
	}

	// other clients have their own bucket
	if rec := do("5.6.7.8:5"); rec.Code != http.StatusOK {
		t.Errorf("other client got %d", rec.Code)
	}

	// one token per second refills
	now = now.Add(time.Second)
	if rec := do("1.2.3.4:5"); rec.Code != http.StatusOK {
		t.Errorf("after refill got %d", rec.Code)
	}
}
