package store

import (
	"context"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

// LinkStore persists standalone links. Links are created and deleted,
// never updated in place.
type LinkStore struct {
	conn Connector
}

func NewLinkStore(conn Connector) *LinkStore {
	return &LinkStore{conn: conn}
}

// ListAll returns every link in key order.
func (s *LinkStore) ListAll(ctx context.Context) ([]domain.Link, error) {
	return listRecords[domain.Link](ctx, s.conn, storage.CollectionLinks)
}

// Create persists a new link. An empty ID is assigned a fresh one.
// An existing ID fails with a WriteError wrapping storage.ErrDuplicateKey.
func (s *LinkStore) Create(ctx context.Context, link domain.Link) (domain.Link, error) {
	if link.ID == "" {
		link.ID = NewID()
	}
	if err := writeRecord(ctx, s.conn, "create", storage.CollectionLinks, link.ID, link); err != nil {
		return domain.Link{}, err
	}
	return link, nil
}

// Delete removes the link if present. Absent ids are not an error.
func (s *LinkStore) Delete(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.conn, storage.CollectionLinks, id)
}
