package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

// LinkService is the link store as seen by handlers.
type LinkService interface {
	ListAll(ctx context.Context) ([]domain.Link, error)
	Create(ctx context.Context, link domain.Link) (domain.Link, error)
	Delete(ctx context.Context, id string) error
}

// SessionService is the session store as seen by handlers.
type SessionService interface {
	ListAll(ctx context.Context) ([]domain.Session, error)
	Get(ctx context.Context, id string) (domain.Session, error)
	Create(ctx context.Context, session domain.Session) (domain.Session, error)
	Update(ctx context.Context, session domain.Session) (domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// ExpiryView exposes the displayed session set.
type ExpiryView interface {
	Sync(ctx context.Context) error
	Display(id string) (string, bool)
	Count() int
}

// StorageProbe reports on the shared storage connection.
type StorageProbe interface {
	Name() string
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time                // for testing, defaults to time.Now
	AllowedHosts  []string                        // Host headers allowed to access the server
	AllowedCIDRS  []string                        // IPs allowed to access the API and probes
	TrustProxy    bool                            // true if running behind a trusted reverse proxy (e.g., cloudflared)
	WriteLimiter  func(http.Handler) http.Handler // shared rate limit for mutating routes (set by httpserver.New when nil)
	Storage       StorageProbe                    // storage connection, pinged by readyz
	Links         LinkService                     // standalone links
	Sessions      SessionService                  // sessions
	Expiry        ExpiryView                      // expiry supervisor
	ImportTrigger chan struct{}                   // Channel to trigger manual bookmark import (nil if import disabled)
	SyncTrigger   chan struct{}                   // Channel to trigger a session resync
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
