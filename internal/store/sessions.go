package store

import (
	"context"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

// SessionStore persists sessions. Update replaces the whole record; there
// is no partial update.
type SessionStore struct {
	conn Connector
}

func NewSessionStore(conn Connector) *SessionStore {
	return &SessionStore{conn: conn}
}

// ListAll returns every session in key order.
func (s *SessionStore) ListAll(ctx context.Context) ([]domain.Session, error) {
	return listRecords[domain.Session](ctx, s.conn, storage.CollectionSessions)
}

// Get returns one session. A missing id yields a ReadError wrapping
// storage.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	return getRecord[domain.Session](ctx, s.conn, storage.CollectionSessions, id)
}

// Create persists a new session. An empty ID is assigned a fresh one.
func (s *SessionStore) Create(ctx context.Context, session domain.Session) (domain.Session, error) {
	if session.ID == "" {
		session.ID = NewID()
	}
	session = normalize(session)
	if err := writeRecord(ctx, s.conn, "create", storage.CollectionSessions, session.ID, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Update replaces the stored record for session.ID, creating it if absent.
// Fields left empty in session are stored empty.
func (s *SessionStore) Update(ctx context.Context, session domain.Session) (domain.Session, error) {
	session = normalize(session)
	if err := writeRecord(ctx, s.conn, "update", storage.CollectionSessions, session.ID, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Delete removes the session if present. Absent ids are not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.conn, storage.CollectionSessions, id)
}

// normalize stores a nil link set as an empty list.
func normalize(session domain.Session) domain.Session {
	if session.Links == nil {
		session.Links = []domain.Link{}
	}
	return session
}
