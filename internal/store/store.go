// Package store exposes typed CRUD for links and sessions on top of a
// lazily opened storage connection. Every operation acquires the
// connection first and runs as its own engine transaction.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

// ErrMissingID is returned when a record without id reaches a keyed write.
var ErrMissingID = errors.New("id is required")

// Connector hands out the shared engine handle. *storage.Connection
// satisfies it.
type Connector interface {
	Get(ctx context.Context) (storage.Engine, error)
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// listRecords reads every record of collection and decodes each one.
func listRecords[T any](ctx context.Context, conn Connector, collection string) ([]T, error) {
	engine, err := conn.Get(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := engine.All(ctx, collection)
	if err != nil {
		return nil, &storage.ReadError{Op: "list", Collection: collection, Err: err}
	}

	out := make([]T, 0, len(raw))
	for _, data := range raw {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, &storage.ReadError{Op: "decode", Collection: collection, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

func getRecord[T any](ctx context.Context, conn Connector, collection, id string) (T, error) {
	var v T
	engine, err := conn.Get(ctx)
	if err != nil {
		return v, err
	}

	data, err := engine.Get(ctx, collection, id)
	if err != nil {
		return v, &storage.ReadError{Op: "get", Collection: collection, ID: id, Err: err}
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, &storage.ReadError{Op: "decode", Collection: collection, ID: id, Err: err}
	}
	return v, nil
}

// writeRecord encodes v and stores it with Insert (create) or Put (replace).
func writeRecord(ctx context.Context, conn Connector, op, collection, id string, v any) error {
	if id == "" {
		return &storage.WriteError{Op: op, Collection: collection, Err: ErrMissingID}
	}

	engine, err := conn.Get(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return &storage.WriteError{Op: op, Collection: collection, ID: id, Err: err}
	}

	if op == "create" {
		err = engine.Insert(ctx, collection, id, data)
	} else {
		err = engine.Put(ctx, collection, id, data)
	}
	if err != nil {
		return &storage.WriteError{Op: op, Collection: collection, ID: id, Err: err}
	}
	return nil
}

func deleteRecord(ctx context.Context, conn Connector, collection, id string) error {
	engine, err := conn.Get(ctx)
	if err != nil {
		return err
	}
	if err := engine.Delete(ctx, collection, id); err != nil {
		return &storage.WriteError{Op: "delete", Collection: collection, ID: id, Err: err}
	}
	return nil
}
