package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

// Engine stores each collection in a Redis hash (id -> JSON record).
type Engine struct {
	client *redis.Client
	keys   keys

	mu    sync.RWMutex
	known map[string]struct{} // collections confirmed by Migrate
}

// NewEngine wraps an existing client.
func NewEngine(client *redis.Client, prefix string) *Engine {
	return &Engine{
		client: client,
		keys:   keys{prefix: prefix},
		known:  make(map[string]struct{}),
	}
}

// Opener returns a storage.Opener that connects with opts.
func Opener(opts ConnectOptions, log logger.Logger) storage.Opener {
	return func(ctx context.Context) (storage.Engine, error) {
		engine, err := Connect(ctx, opts, log)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
}

func (e *Engine) Name() string { return "redis" }

// Migrate registers missing collections and stores the schema version.
// Hashes appear on first write, so registering a name is all it takes to
// create a collection.
func (e *Engine) Migrate(ctx context.Context, version int, collections []string) (int, error) {
	previous, err := e.client.Get(ctx, e.keys.SchemaVersion()).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if previous > version {
		return previous, fmt.Errorf("%w: stored %d, requested %d", storage.ErrVersionTooNew, previous, version)
	}

	members := make([]interface{}, 0, len(collections))
	for _, name := range collections {
		members = append(members, name)
	}

	_, err = e.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(members) > 0 {
			pipe.SAdd(ctx, e.keys.Collections(), members...)
		}
		if previous < version {
			pipe.Set(ctx, e.keys.SchemaVersion(), version, 0)
		}
		return nil
	})
	if err != nil {
		return previous, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Collections created by older builds are kept and stay usable.
	names, err := e.client.SMembers(ctx, e.keys.Collections()).Result()
	if err != nil {
		return previous, fmt.Errorf("failed to list collections: %w", err)
	}

	e.mu.Lock()
	for _, name := range names {
		e.known[name] = struct{}{}
	}
	e.mu.Unlock()

	return previous, nil
}

func (e *Engine) Insert(ctx context.Context, collection, id string, record []byte) error {
	key, err := e.collectionKey(collection)
	if err != nil {
		return err
	}
	created, err := e.client.HSetNX(ctx, key, id, record).Result()
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	if !created {
		return storage.ErrDuplicateKey
	}
	return nil
}

func (e *Engine) Put(ctx context.Context, collection, id string, record []byte) error {
	key, err := e.collectionKey(collection)
	if err != nil {
		return err
	}
	if err := e.client.HSet(ctx, key, id, record).Err(); err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	key, err := e.collectionKey(collection)
	if err != nil {
		return err
	}
	if err := e.client.HDel(ctx, key, id).Err(); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (e *Engine) Get(ctx context.Context, collection, id string) ([]byte, error) {
	key, err := e.collectionKey(collection)
	if err != nil {
		return nil, err
	}
	data, err := e.client.HGet(ctx, key, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return data, nil
}

// All returns records sorted by id so every engine agrees on key order.
func (e *Engine) All(ctx context.Context, collection string) ([][]byte, error) {
	key, err := e.collectionKey(collection)
	if err != nil {
		return nil, err
	}
	entries, err := e.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([][]byte, 0, len(ids))
	for _, id := range ids {
		records = append(records, []byte(entries[id]))
	}
	return records, nil
}

func (e *Engine) Ping(ctx context.Context) error {
	return e.client.Ping(ctx).Err()
}

func (e *Engine) Close() error {
	return e.client.Close()
}

func (e *Engine) collectionKey(name string) (string, error) {
	e.mu.RLock()
	_, ok := e.known[name]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrUnknownCollection, name)
	}
	return e.keys.Collection(name), nil
}
