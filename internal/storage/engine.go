package storage

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateKey is returned by Insert when the id already exists.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound is returned by Get when the id is absent.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownCollection is returned when a collection was never created.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrVersionTooNew is returned by Migrate when the stored schema is newer
	// than the one the process knows about.
	ErrVersionTooNew = errors.New("stored schema version is newer than requested")
	// ErrClosed is returned once the connection has been closed.
	ErrClosed = errors.New("storage connection closed")
)

// Engine is a keyed object store holding named collections of records.
// Every call runs in its own transaction. Implementations must be safe for
// concurrent use.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string

	// Migrate brings the schema to version, creating any missing collection.
	// It returns the version found before the upgrade (0 on first run).
	Migrate(ctx context.Context, version int, collections []string) (int, error)

	// Insert stores record under id and fails with ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, collection, id string, record []byte) error
	// Put stores record under id, replacing any previous record.
	Put(ctx context.Context, collection, id string, record []byte) error
	// Get returns the record stored under id or ErrNotFound.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	// Delete removes id. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error
	// All returns every record of the collection in ascending key order.
	All(ctx context.Context, collection string) ([][]byte, error)

	Ping(ctx context.Context) error
	Close() error
}
