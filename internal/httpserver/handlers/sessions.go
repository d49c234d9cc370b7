package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
)

// sessionView is a stored session plus its live countdown label.
type sessionView struct {
	domain.Session
	Remaining string `json:"remaining"`
}

// createSessionRequest mirrors the session form: either permanent, a
// duration in hours and minutes, or an absolute endsAt.
type createSessionRequest struct {
	Title     string        `json:"title"`
	Links     []domain.Link `json:"links"`
	Permanent bool          `json:"permanent"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	EndsAt    string        `json:"endsAt"`
}

// updateSessionRequest is a full replacement record.
type updateSessionRequest struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Links  []domain.Link  `json:"links"`
	EndsAt *domain.Expiry `json:"endsAt"`
}

func ListSessions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := d.Sessions.ListAll(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		views := make([]sessionView, 0, len(sessions))
		for _, s := range sessions {
			views = append(views, view(d, s))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func GetSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, view(d, s))
	}
}

func CreateSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		endsAt, err := req.expiry(d.Now())
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		session := domain.Session{
			Title:  strings.TrimSpace(req.Title),
			Links:  withIDs(req.Links),
			EndsAt: endsAt,
		}
		if err := session.Validate(); err != nil {
			writeError(w, r, d, badRequest{err: err})
			return
		}

		created, err := d.Sessions.Create(r.Context(), session)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("session created",
			logger.String("session_id", created.ID),
			logger.String("ends_at", created.EndsAt.String()))
		refresh(r.Context(), d)
		writeJSON(w, http.StatusCreated, view(d, created))
	}
}

// UpdateSession replaces the whole record. Links omitted from the body are
// dropped from the session.
func UpdateSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req updateSessionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		if req.ID != "" && req.ID != id {
			writeError(w, r, d, invalid("body id %q does not match path id %q", req.ID, id))
			return
		}
		if req.EndsAt == nil {
			writeError(w, r, d, invalid("endsAt is required"))
			return
		}

		session := domain.Session{
			ID:     id,
			Title:  strings.TrimSpace(req.Title),
			Links:  withIDs(req.Links),
			EndsAt: *req.EndsAt,
		}
		if err := session.Validate(); err != nil {
			writeError(w, r, d, badRequest{err: err})
			return
		}

		updated, err := d.Sessions.Update(r.Context(), session)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("session updated",
			logger.String("session_id", updated.ID))
		refresh(r.Context(), d)
		writeJSON(w, http.StatusOK, view(d, updated))
	}
}

func DeleteSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Sessions.Delete(r.Context(), id); err != nil {
			writeError(w, r, d, err)
			return
		}
		refresh(r.Context(), d)
		w.WriteHeader(http.StatusNoContent)
	}
}

// expiry resolves the requested lifetime relative to now.
func (req createSessionRequest) expiry(now time.Time) (domain.Expiry, error) {
	e, err := domain.Lifetime{
		Permanent: req.Permanent,
		Hours:     req.Hours,
		Minutes:   req.Minutes,
		EndsAt:    req.EndsAt,
	}.Resolve(now)
	if err != nil {
		return domain.Expiry{}, badRequest{err: err}
	}
	return e, nil
}

// withIDs gives embedded links without id a fresh one.
func withIDs(links []domain.Link) []domain.Link {
	out := make([]domain.Link, 0, len(links))
	for _, l := range links {
		if l.ID == "" {
			l.ID = store.NewID()
		}
		out = append(out, l)
	}
	return out
}

func view(d deps.Deps, s domain.Session) sessionView {
	label, ok := "", false
	if d.Expiry != nil {
		label, ok = d.Expiry.Display(s.ID)
	}
	if !ok {
		label = domain.Countdown(s.EndsAt, d.Now())
	}
	return sessionView{Session: s, Remaining: label}
}

// refresh re-syncs the displayed set after a mutation. The mutation itself
// already succeeded, so failures are only logged.
func refresh(ctx context.Context, d deps.Deps) {
	if d.Expiry == nil {
		return
	}
	if err := d.Expiry.Sync(ctx); err != nil {
		d.Logger.Warn("failed to refresh displayed sessions",
			logger.Error(err))
	}
}
