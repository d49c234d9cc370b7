package expiry

import (
	"context"
	"errors"
	"sync"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

// SessionSource is the slice of the session store the supervisor needs.
type SessionSource interface {
	ListAll(ctx context.Context) ([]domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// Supervisor keeps one Monitor per displayed session. Sync reconciles the
// displayed set with the store; an expiring monitor deletes its session
// and triggers a Sync.
type Supervisor struct {
	sessions SessionSource
	logger   logger.Logger
	opts     []Option
	handled  func(id string, err error)

	syncMu sync.Mutex // serializes whole Sync passes

	mu       sync.Mutex
	monitors map[string]*Monitor
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  bool
	deleting map[string]struct{} // expired sessions whose delete is in flight
}

// NewSupervisor creates a supervisor. Call Start before use.
func NewSupervisor(sessions SessionSource, log logger.Logger, opts ...Option) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		sessions: sessions,
		logger:   log,
		opts:     opts,
		handled:  buildOptions(opts).handled,
		monitors: make(map[string]*Monitor),
		deleting: make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start binds the supervisor to ctx and performs the initial Sync.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if err := s.Sync(ctx); err != nil {
		return err
	}
	s.logger.Info("expiry supervisor started",
		logger.Int("sessions", s.Count()))
	return nil
}

// Stop releases every monitor. Pending expiry callbacks see a cancelled
// context and give up.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.cancel()
	for id, m := range s.monitors {
		m.Stop()
		delete(s.monitors, id)
	}
}

// Sync refreshes the displayed set from the store: monitors are started for
// new sessions, restarted when endsAt changed or when an earlier expiry
// failed to delete the session, and stopped for sessions that are gone.
func (s *Supervisor) Sync(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}

	seen := make(map[string]struct{}, len(sessions))
	started, replaced := 0, 0
	for _, session := range sessions {
		seen[session.ID] = struct{}{}

		if existing, ok := s.monitors[session.ID]; ok {
			if existing.EndsAt().Equal(session.EndsAt) && !s.needsRetry(existing) {
				continue
			}
			existing.Stop()
			replaced++
		} else {
			started++
		}

		m := NewMonitor(session, s.handleExpiry, s.opts...)
		s.monitors[session.ID] = m
		m.Start()
	}

	removed := 0
	for id, m := range s.monitors {
		if _, ok := seen[id]; !ok {
			m.Stop()
			delete(s.monitors, id)
			removed++
		}
	}

	if started+replaced+removed > 0 {
		s.logger.Debug("expiry monitors synced",
			logger.Int("started", started),
			logger.Int("replaced", replaced),
			logger.Int("removed", removed),
			logger.Int("active", len(s.monitors)))
	}
	return nil
}

// Display returns the countdown label of a displayed session.
func (s *Supervisor) Display(id string) (string, bool) {
	s.mu.Lock()
	m, ok := s.monitors[id]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return m.Display(), true
}

// State returns the monitor state of a displayed session.
func (s *Supervisor) State(id string) (State, bool) {
	s.mu.Lock()
	m, ok := s.monitors[id]
	s.mu.Unlock()
	if !ok {
		return 0, false
	}
	return m.State(), true
}

// Count returns the number of displayed sessions.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.monitors)
}

// needsRetry reports whether m fired but its session is still stored and
// no delete is running for it. Caller holds s.mu.
func (s *Supervisor) needsRetry(m *Monitor) bool {
	if st := m.State(); st != StateExpired && st != StateStopped {
		return false
	}
	_, busy := s.deleting[m.ID()]
	return !busy
}

func (s *Supervisor) handleExpiry(id string) {
	s.mu.Lock()
	ctx := s.ctx
	s.deleting[id] = struct{}{}
	s.mu.Unlock()

	err := s.expire(ctx, id)

	s.mu.Lock()
	delete(s.deleting, id)
	s.mu.Unlock()

	if s.handled != nil && !errors.Is(err, context.Canceled) {
		s.handled(id, err)
	}
}

// expire deletes an expired session and refreshes the displayed set. A
// failed delete leaves the session stored; the next Sync retries it.
func (s *Supervisor) expire(ctx context.Context, id string) error {
	s.logger.Info("session expired, deleting",
		logger.String("session_id", id))

	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("expiry dropped, supervisor stopped",
				logger.String("session_id", id))
			return err
		}
		s.logger.Error("failed to delete expired session, retrying on next sync",
			logger.String("session_id", id),
			logger.Error(err))
		return err
	}

	if err := s.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to refresh sessions after expiry",
			logger.String("session_id", id),
			logger.Error(err))
	}
	return nil
}
