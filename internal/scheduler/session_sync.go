package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

// DefaultSessionSyncInterval bounds how long a session written by another
// process (shared redis, CLI) waits before it gets a countdown.
const DefaultSessionSyncInterval = 30 * time.Second

// Syncer refreshes the displayed session set from storage.
type Syncer interface {
	Sync(ctx context.Context) error
}

// SessionSync periodically reconciles the expiry monitors with the store.
type SessionSync struct {
	syncer        Syncer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger <-chan struct{}
}

// NewSessionSync creates a new periodic session sync
func NewSessionSync(
	syncer Syncer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *SessionSync {
	if interval <= 0 {
		interval = DefaultSessionSyncInterval
	}

	return &SessionSync{
		syncer:        syncer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic sync. The supervisor performs its own initial
// sync, so the first run happens after one interval.
func (ss *SessionSync) Start(ctx context.Context) {
	ticker := time.NewTicker(ss.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ss.run(ctx)
			case <-ss.manualTrigger:
				ss.logger.Info("manual session sync triggered")
				ss.run(ctx)
			case <-ss.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the periodic sync
func (ss *SessionSync) Stop() {
	ss.stopOnce.Do(func() { close(ss.stopCh) })
}

func (ss *SessionSync) run(ctx context.Context) {
	if err := ss.syncer.Sync(ctx); err != nil {
		ss.logger.Warn("session sync failed",
			logger.Error(err))
	}
}
