package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarkonce/internal/config"
	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/expiry"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage/memory"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
)

type testEnv struct {
	handler  http.Handler
	sessions *store.SessionStore
	sup      *expiry.Supervisor
	sync     chan struct{}
}

func newTestEnv(t *testing.T, open storage.Opener) *testEnv {
	t.Helper()

	conn := storage.NewConnection("memory", open, logger.Nop(), storage.Options{})
	t.Cleanup(func() { _ = conn.Close() })

	links := store.NewLinkStore(conn)
	sessions := store.NewSessionStore(conn)
	sup := expiry.NewSupervisor(sessions, logger.Nop())
	t.Cleanup(sup.Stop)

	syncTrigger := make(chan struct{}, 1)
	d := deps.Deps{
		Logger:      logger.Nop(),
		StartTime:   time.Now(),
		Version:     "test",
		TimeNow:     time.Now,
		Storage:     conn,
		Links:       links,
		Sessions:    sessions,
		Expiry:      sup,
		SyncTrigger: syncTrigger,
	}
	cfg := &config.Config{ListenPort: ":0", RateBurst: 1000, RateRefillPerMin: 1000}

	return &testEnv{
		handler:  New(cfg, logger.Nop(), d).Handler(),
		sessions: sessions,
		sup:      sup,
		sync:     syncTrigger,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type sessionJSON struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Links     []domain.Link `json:"links"`
	EndsAt    string        `json:"endsAt"`
	Remaining string        `json:"remaining"`
}

func TestLinksLifecycle(t *testing.T) {
	env := newTestEnv(t, memory.Open)

	rec := env.do(t, http.MethodPost, "/api/links", map[string]string{"title": "Go", "url": "https://go.dev"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Link](t, rec)
	assert.NotEmpty(t, created.ID)

	rec = env.do(t, http.MethodGet, "/api/links", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.Link{created}, decode[[]domain.Link](t, rec))

	rec = env.do(t, http.MethodDelete, "/api/links/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// absent id is still a success
	rec = env.do(t, http.MethodDelete, "/api/links/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/links", nil)
	assert.Empty(t, decode[[]domain.Link](t, rec))
}

func TestCreateLinkValidation(t *testing.T) {
	env := newTestEnv(t, memory.Open)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing url", body: map[string]string{"title": "x"}},
		{name: "missing title", body: map[string]string{"url": "https://x"}},
		{name: "broken json", body: "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/links", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t, memory.Open)

	rec := env.do(t, http.MethodPost, "/api/sessions", map[string]any{
		"title":     "Reading",
		"permanent": true,
		"links":     []map[string]string{{"title": "Go", "url": "https://go.dev"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	perm := decode[sessionJSON](t, rec)
	assert.Equal(t, domain.PermanentLabel, perm.EndsAt)
	assert.Equal(t, domain.PermanentLabel, perm.Remaining)
	require.Len(t, perm.Links, 1)
	assert.NotEmpty(t, perm.Links[0].ID)

	rec = env.do(t, http.MethodPost, "/api/sessions", map[string]any{
		"title":   "Sprint",
		"hours":   1,
		"minutes": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	timed := decode[sessionJSON](t, rec)
	assert.NotEqual(t, domain.PermanentLabel, timed.EndsAt)
	assert.True(t, strings.HasPrefix(timed.Remaining, "01:"), timed.Remaining)
	assert.Empty(t, timed.Links)

	// both sessions are displayed
	assert.Equal(t, 2, env.sup.Count())

	rec = env.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]sessionJSON](t, rec), 2)
}

func TestCreateSessionValidation(t *testing.T) {
	env := newTestEnv(t, memory.Open)

	tests := []struct {
		name string
		body any
	}{
		{name: "no lifetime", body: map[string]any{"title": "x"}},
		{name: "zero duration", body: map[string]any{"title": "x", "hours": 0, "minutes": 0}},
		{name: "negative", body: map[string]any{"title": "x", "minutes": -5}},
		{name: "too long", body: map[string]any{"title": "x", "hours": 3000000}},
		{name: "missing title", body: map[string]any{"permanent": true}},
		{name: "bad endsAt", body: map[string]any{"title": "x", "endsAt": "tomorrow"}},
		{name: "link without url", body: map[string]any{"title": "x", "permanent": true, "links": []map[string]string{{"title": "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateSessionReplaces(t *testing.T) {
	env := newTestEnv(t, memory.Open)
	ctx := context.Background()

	s, err := env.sessions.Create(ctx, domain.Session{
		ID:     "s1",
		Title:  "Old",
		Links:  []domain.Link{{ID: "l1", Title: "Go", URL: "https://go.dev"}},
		EndsAt: domain.Permanent(),
	})
	require.NoError(t, err)

	endsAt := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	rec := env.do(t, http.MethodPut, "/api/sessions/"+s.ID, map[string]any{
		"title":  "New",
		"endsAt": endsAt,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := env.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Empty(t, got.Links, "omitted links are dropped")
	assert.False(t, got.EndsAt.IsPermanent())

	rec = env.do(t, http.MethodPut, "/api/sessions/s1", map[string]any{"title": "No deadline"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/sessions/s1", map[string]any{"id": "other", "title": "x", "endsAt": "PERMANENT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAndDeleteSession(t *testing.T) {
	env := newTestEnv(t, memory.Open)

	rec := env.do(t, http.MethodGet, "/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/sessions", map[string]any{"title": "x", "minutes": 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[sessionJSON](t, rec)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[sessionJSON](t, rec).ID)

	rec = env.do(t, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, env.sup.Count())
}

func TestStorageUnavailable(t *testing.T) {
	failing := func(context.Context) (storage.Engine, error) {
		return nil, errors.New("database locked")
	}
	env := newTestEnv(t, failing)

	rec := env.do(t, http.MethodGet, "/api/links", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/sessions", map[string]any{"title": "x", "permanent": true})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodGet, "/infra", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "critical", decode[map[string]any](t, rec)["status"])
}

func TestProbes(t *testing.T) {
	env := newTestEnv(t, memory.Open)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "memory", health["engine"])
	assert.Contains(t, health, "displayed_sessions")

	rec = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["ready"])

	rec = env.do(t, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no such route", decode[map[string]any](t, rec)["error"])
}

func TestReload(t *testing.T) {
	env := newTestEnv(t, memory.Open)

	rec := env.do(t, http.MethodPost, "/api/reload", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "disabled", body["import"])
	assert.Equal(t, "triggered", body["sync"])

	// nobody drains the buffered trigger
	rec = env.do(t, http.MethodPost, "/api/reload", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	<-env.sync
}
