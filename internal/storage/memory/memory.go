package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

// Engine keeps collections in process memory. Nothing survives a restart.
type Engine struct {
	mu          sync.RWMutex
	version     int
	collections map[string]map[string][]byte // collection -> id -> record
	closed      bool
}

// New creates an empty memory engine.
func New() *Engine {
	return &Engine{
		collections: make(map[string]map[string][]byte),
	}
}

// Open matches storage.Opener.
func Open(context.Context) (storage.Engine, error) {
	return New(), nil
}

func (e *Engine) Name() string { return "memory" }

// Migrate creates missing collections and records the version.
func (e *Engine) Migrate(ctx context.Context, version int, collections []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, storage.ErrClosed
	}
	previous := e.version
	if previous > version {
		return previous, fmt.Errorf("%w: stored %d, requested %d", storage.ErrVersionTooNew, previous, version)
	}
	for _, name := range collections {
		if _, ok := e.collections[name]; !ok {
			e.collections[name] = make(map[string][]byte)
		}
	}
	e.version = version
	return previous, nil
}

func (e *Engine) Insert(ctx context.Context, collection, id string, record []byte) error {
	return e.write(ctx, collection, func(c map[string][]byte) error {
		if _, exists := c[id]; exists {
			return storage.ErrDuplicateKey
		}
		c[id] = clone(record)
		return nil
	})
}

func (e *Engine) Put(ctx context.Context, collection, id string, record []byte) error {
	return e.write(ctx, collection, func(c map[string][]byte) error {
		c[id] = clone(record)
		return nil
	})
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	return e.write(ctx, collection, func(c map[string][]byte) error {
		delete(c, id)
		return nil
	})
}

func (e *Engine) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var out []byte
	err := e.read(ctx, collection, func(c map[string][]byte) error {
		record, ok := c[id]
		if !ok {
			return storage.ErrNotFound
		}
		out = clone(record)
		return nil
	})
	return out, err
}

func (e *Engine) All(ctx context.Context, collection string) ([][]byte, error) {
	var out [][]byte
	err := e.read(ctx, collection, func(c map[string][]byte) error {
		ids := make([]string, 0, len(c))
		for id := range c {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		out = make([][]byte, 0, len(ids))
		for _, id := range ids {
			out = append(out, clone(c[id]))
		}
		return nil
	})
	return out, err
}

func (e *Engine) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return storage.ErrClosed
	}
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *Engine) write(ctx context.Context, collection string, fn func(map[string][]byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.lookup(collection)
	if err != nil {
		return err
	}
	return fn(c)
}

func (e *Engine) read(ctx context.Context, collection string, fn func(map[string][]byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	c, err := e.lookup(collection)
	if err != nil {
		return err
	}
	return fn(c)
}

// lookup must be called with mu held.
func (e *Engine) lookup(collection string) (map[string][]byte, error) {
	if e.closed {
		return nil, storage.ErrClosed
	}
	c, ok := e.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownCollection, collection)
	}
	return c, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
