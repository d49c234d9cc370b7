package expiry

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
)

// DefaultInterval is the countdown tick.
const DefaultInterval = time.Second

// State is the lifecycle position of a Monitor.
type State int

const (
	// StateTicking counts down towards a finite deadline.
	StateTicking State = iota
	// StateFrozen belongs to a permanent session; it never fires.
	StateFrozen
	// StateExpired has fired its callback and stopped ticking.
	StateExpired
	// StateStopped was released before its deadline.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateTicking:
		return "ticking"
	case StateFrozen:
		return "frozen"
	case StateExpired:
		return "expired"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ExpireFunc is called once when a monitored session runs out.
type ExpireFunc func(id string)

// Option tunes a Monitor or Supervisor.
type Option func(*options)

type options struct {
	interval time.Duration
	now      func() time.Time
	handled  func(id string, err error)
}

// WithInterval overrides the tick interval.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithExpiryHook is called by a Supervisor after each attempt to delete an
// expired session, with the delete error or nil. Monitors ignore it.
func WithExpiryHook(fn func(id string, err error)) Option {
	return func(o *options) { o.handled = fn }
}

func buildOptions(opts []Option) options {
	o := options{interval: DefaultInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Monitor counts down one displayed session and fires its callback exactly
// once when the deadline passes. It owns a ticker only while ticking.
type Monitor struct {
	id       string
	endsAt   domain.Expiry
	onExpire ExpireFunc
	opts     options

	mu      sync.Mutex
	state   State
	display string

	stopCh    chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	fireOnce  sync.Once
}

// NewMonitor prepares a monitor for session. Nothing runs until Start.
func NewMonitor(session domain.Session, onExpire ExpireFunc, opts ...Option) *Monitor {
	m := &Monitor{
		id:       session.ID,
		endsAt:   session.EndsAt,
		onExpire: onExpire,
		opts:     buildOptions(opts),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	if session.EndsAt.IsPermanent() {
		m.state = StateFrozen
		m.display = domain.PermanentLabel
	} else {
		m.state = StateTicking
		m.display = domain.Countdown(session.EndsAt, m.opts.now())
	}
	return m
}

// Start begins ticking. Frozen monitors start no goroutine and no timer.
// The first evaluation happens on the monitor goroutine, so Start never
// calls the expiry callback itself.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		if m.State() != StateTicking {
			close(m.done)
			return
		}
		go m.run()
	})
}

// Stop releases the timer. It does not wait for the goroutine to exit, so
// it is safe to call from inside the expiry callback.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		if m.state == StateTicking {
			m.state = StateStopped
		}
		m.mu.Unlock()
		close(m.stopCh)
	})
}

// Done is closed once the monitor goroutine has exited (or immediately for
// monitors that never ticked).
func (m *Monitor) Done() <-chan struct{} { return m.done }

// ID returns the monitored session id.
func (m *Monitor) ID() string { return m.id }

// EndsAt returns the deadline the monitor was built for.
func (m *Monitor) EndsAt() domain.Expiry { return m.endsAt }

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Display returns the label for the session: PERMANENT or HH:MM:SS.
func (m *Monitor) Display() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.display
}

func (m *Monitor) run() {
	defer close(m.done)

	if m.tick() {
		return
	}

	ticker := time.NewTicker(m.opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if m.tick() {
				return
			}
		case <-m.stopCh:
			return
		}
	}
}

// tick recomputes the countdown and reports whether ticking should end.
func (m *Monitor) tick() bool {
	m.mu.Lock()
	if m.state != StateTicking {
		m.mu.Unlock()
		return true
	}

	remaining := m.endsAt.Remaining(m.opts.now())
	if remaining > 0 {
		m.display = domain.FormatRemaining(remaining)
		m.mu.Unlock()
		return false
	}

	m.state = StateExpired
	m.display = domain.FormatRemaining(0)
	m.mu.Unlock()

	m.fireOnce.Do(func() {
		if m.onExpire != nil {
			m.onExpire(m.id)
		}
	})
	return true
}
