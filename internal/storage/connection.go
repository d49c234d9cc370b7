package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

// DefaultOpenTimeout bounds a single open + migrate sequence.
const DefaultOpenTimeout = 5 * time.Second

// Opener opens an engine. It is called at most once per successful
// Connection lifetime.
type Opener func(ctx context.Context) (Engine, error)

// Options configures a Connection.
type Options struct {
	Version     int           // schema version to migrate to (default SchemaVersion)
	Collections []string      // collections to ensure (default Collections())
	OpenTimeout time.Duration // bound on open + migrate (default DefaultOpenTimeout)
}

// Connection lazily opens one engine and hands the same handle to every
// caller for the rest of the process lifetime.
//
// Concurrent first callers share a single open/migrate sequence. A failed
// open is not cached: the error goes back to every waiting caller and the
// next Get starts a fresh attempt. Nothing here retries on its own.
type Connection struct {
	name   string
	open   Opener
	opts   Options
	logger logger.Logger

	group singleflight.Group

	mu     sync.RWMutex
	engine Engine
	closed bool
}

// NewConnection creates a Connection. Nothing is opened until the first Get.
func NewConnection(name string, open Opener, log logger.Logger, opts Options) *Connection {
	if opts.Version <= 0 {
		opts.Version = SchemaVersion
	}
	if len(opts.Collections) == 0 {
		opts.Collections = Collections()
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOpenTimeout
	}
	return &Connection{
		name:   name,
		open:   open,
		opts:   opts,
		logger: log,
	}
}

// Get returns the open engine, opening and migrating it on first use.
// Failures are reported as *OpenError.
func (c *Connection) Get(ctx context.Context) (Engine, error) {
	if engine, err := c.cached(); engine != nil || err != nil {
		return engine, err
	}

	ch := c.group.DoChan("open", func() (interface{}, error) {
		// Another flight may have finished between cached() and DoChan.
		if engine, err := c.cached(); engine != nil || err != nil {
			return engine, err
		}
		return c.initialize()
	})

	select {
	case <-ctx.Done():
		// The flight keeps going for the other callers; only this caller gives up.
		return nil, &OpenError{Engine: c.name, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Engine), nil
	}
}

// Ping checks that the engine is open and responsive.
func (c *Connection) Ping(ctx context.Context) error {
	engine, err := c.Get(ctx)
	if err != nil {
		return err
	}
	return engine.Ping(ctx)
}

// Name returns the configured engine name.
func (c *Connection) Name() string { return c.name }

// Close releases the engine. Later calls to Get fail with ErrClosed.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.engine == nil {
		return nil
	}
	err := c.engine.Close()
	c.engine = nil
	return err
}

func (c *Connection) cached() (Engine, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, &OpenError{Engine: c.name, Err: ErrClosed}
	}
	return c.engine, nil
}

func (c *Connection) initialize() (Engine, error) {
	// Detached from any caller so one cancelled request cannot fail the
	// open for everyone else waiting on the same flight.
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.OpenTimeout)
	defer cancel()

	start := time.Now()
	c.logger.Info("opening storage",
		logger.String("engine", c.name),
		logger.Int("schema_version", c.opts.Version))

	engine, err := c.open(ctx)
	if err != nil {
		c.logger.Error("failed to open storage",
			logger.String("engine", c.name),
			logger.Error(err))
		return nil, asOpenError(c.name, err)
	}

	previous, err := engine.Migrate(ctx, c.opts.Version, c.opts.Collections)
	if err != nil {
		_ = engine.Close()
		c.logger.Error("failed to initialize storage schema",
			logger.String("engine", c.name),
			logger.Int("schema_version", c.opts.Version),
			logger.Error(err))
		return nil, asOpenError(c.name, err)
	}
	if previous < c.opts.Version {
		c.logger.Info("storage schema upgraded",
			logger.String("engine", c.name),
			logger.Int("from", previous),
			logger.Int("to", c.opts.Version))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = engine.Close()
		return nil, &OpenError{Engine: c.name, Err: ErrClosed}
	}
	c.engine = engine

	c.logger.Info("storage ready",
		logger.String("engine", c.name),
		logger.Duration("elapsed", time.Since(start)))
	return engine, nil
}

func asOpenError(name string, err error) error {
	var openErr *OpenError
	if errors.As(err, &openErr) {
		return err
	}
	return &OpenError{Engine: name, Err: err}
}
