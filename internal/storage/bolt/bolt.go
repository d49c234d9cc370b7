package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

const (
	metaBucket       = "_meta"
	schemaVersionKey = "schema_version"

	// DefaultLockTimeout bounds how long Open waits for another process
	// holding the database file.
	DefaultLockTimeout = time.Second
)

// Engine stores each collection in its own bbolt bucket, keyed by id.
type Engine struct {
	db   *bbolt.DB
	path string
}

// Open opens (or creates) the database file at path.
func Open(path string, lockTimeout time.Duration) (*Engine, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("open storage db %s: %w", cleanPath, err)
	}

	return &Engine{db: db, path: cleanPath}, nil
}

// Opener returns a storage.Opener for the file at path.
func Opener(path string, lockTimeout time.Duration) storage.Opener {
	return func(ctx context.Context) (storage.Engine, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		engine, err := Open(path, lockTimeout)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
}

func (e *Engine) Name() string { return "bolt" }

// Path returns the database file location.
func (e *Engine) Path() string { return e.path }

// Migrate creates every missing bucket and stores the schema version in a
// single transaction. Existing buckets are left untouched.
func (e *Engine) Migrate(ctx context.Context, version int, collections []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	previous := 0
	err := e.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		if raw := meta.Get([]byte(schemaVersionKey)); len(raw) == 8 {
			previous = int(binary.BigEndian.Uint64(raw))
		}
		if previous > version {
			return fmt.Errorf("%w: stored %d, requested %d", storage.ErrVersionTooNew, previous, version)
		}
		if previous == version {
			// Same version: buckets are still checked in case the file was
			// written by a build that predates one of them.
			return ensureBuckets(tx, collections)
		}

		if err := ensureBuckets(tx, collections); err != nil {
			return err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(version))
		return meta.Put([]byte(schemaVersionKey), buf)
	})
	if err != nil {
		return previous, err
	}
	return previous, nil
}

func (e *Engine) Insert(ctx context.Context, collection, id string, record []byte) error {
	return e.update(ctx, collection, func(b *bbolt.Bucket) error {
		if b.Get([]byte(id)) != nil {
			return storage.ErrDuplicateKey
		}
		return b.Put([]byte(id), record)
	})
}

func (e *Engine) Put(ctx context.Context, collection, id string, record []byte) error {
	return e.update(ctx, collection, func(b *bbolt.Bucket) error {
		return b.Put([]byte(id), record)
	})
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	return e.update(ctx, collection, func(b *bbolt.Bucket) error {
		// bbolt treats a missing key as a no-op.
		return b.Delete([]byte(id))
	})
}

func (e *Engine) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var out []byte
	err := e.view(ctx, collection, func(b *bbolt.Bucket) error {
		v := b.Get([]byte(id))
		if v == nil {
			return storage.ErrNotFound
		}
		// Values are only valid for the life of the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

func (e *Engine) All(ctx context.Context, collection string) ([][]byte, error) {
	var out [][]byte
	err := e.view(ctx, collection, func(b *bbolt.Bucket) error {
		out = make([][]byte, 0, b.Stats().KeyN)
		return b.ForEach(func(_, v []byte) error {
			out = append(out, append([]byte(nil), v...))
			return nil
		})
	})
	return out, err
}

func (e *Engine) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(metaBucket)) == nil {
			return fmt.Errorf("meta bucket is missing")
		}
		return nil
	})
}

func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

func (e *Engine) update(ctx context.Context, collection string, fn func(*bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, collection)
		if err != nil {
			return err
		}
		return fn(b)
	})
}

func (e *Engine) view(ctx context.Context, collection string, fn func(*bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, collection)
		if err != nil {
			return err
		}
		return fn(b)
	})
}

func bucket(tx *bbolt.Tx, collection string) (*bbolt.Bucket, error) {
	if collection == metaBucket {
		return nil, fmt.Errorf("%w: %s is reserved", storage.ErrUnknownCollection, collection)
	}
	b := tx.Bucket([]byte(collection))
	if b == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownCollection, collection)
	}
	return b, nil
}

func ensureBuckets(tx *bbolt.Tx, collections []string) error {
	for _, name := range collections {
		if name == metaBucket {
			return fmt.Errorf("collection name %q is reserved", name)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return fmt.Errorf("create %s bucket: %w", name, err)
		}
	}
	return nil
}
