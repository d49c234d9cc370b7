// Package storagetest holds a re-usable set of tests that any
// storage.Engine implementation must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

// SuiteBase runs the engine conformance tests against a fresh engine
// produced by the configured factory.
type SuiteBase struct {
	newEngine func(t *testing.T) storage.Engine
}

// SetEngineFactory configures the suite. The factory must return an
// engine that has not been migrated yet.
func (s *SuiteBase) SetEngineFactory(fn func(t *testing.T) storage.Engine) {
	s.newEngine = fn
}

func (s *SuiteBase) migrated(t *testing.T) storage.Engine {
	e := s.newEngine(t)
	_, err := e.Migrate(context.Background(), storage.SchemaVersion, storage.Collections())
	require.NoError(t, err)
	return e
}

// TestMigrateCreatesCollections verifies first-run and repeat migrations.
func (s *SuiteBase) TestMigrateCreatesCollections(t *testing.T) {
	ctx := context.Background()
	e := s.newEngine(t)

	previous, err := e.Migrate(ctx, storage.SchemaVersion, storage.Collections())
	require.NoError(t, err)
	assert.Equal(t, 0, previous, "first migration should report no previous version")

	for _, c := range storage.Collections() {
		records, err := e.All(ctx, c)
		require.NoError(t, err, "collection %s should exist", c)
		assert.Empty(t, records)
	}

	previous, err = e.Migrate(ctx, storage.SchemaVersion, storage.Collections())
	require.NoError(t, err)
	assert.Equal(t, storage.SchemaVersion, previous)
}

// TestMigrateIsAdditive verifies upgrades keep existing collections and data.
func (s *SuiteBase) TestMigrateIsAdditive(t *testing.T) {
	ctx := context.Background()
	e := s.newEngine(t)

	_, err := e.Migrate(ctx, 1, []string{storage.CollectionLinks})
	require.NoError(t, err)
	require.NoError(t, e.Insert(ctx, storage.CollectionLinks, "l1", []byte(`{"id":"l1"}`)))

	_, err = e.All(ctx, storage.CollectionSessions)
	assert.ErrorIs(t, err, storage.ErrUnknownCollection)

	previous, err := e.Migrate(ctx, 2, []string{storage.CollectionSessions})
	require.NoError(t, err)
	assert.Equal(t, 1, previous)

	links, err := e.All(ctx, storage.CollectionLinks)
	require.NoError(t, err)
	assert.Len(t, links, 1, "upgrade must not drop existing collections")

	_, err = e.All(ctx, storage.CollectionSessions)
	assert.NoError(t, err)
}

// TestMigrateRejectsDowngrade verifies a newer stored schema is refused.
func (s *SuiteBase) TestMigrateRejectsDowngrade(t *testing.T) {
	ctx := context.Background()
	e := s.newEngine(t)

	_, err := e.Migrate(ctx, storage.SchemaVersion+1, storage.Collections())
	require.NoError(t, err)

	_, err = e.Migrate(ctx, storage.SchemaVersion, storage.Collections())
	assert.ErrorIs(t, err, storage.ErrVersionTooNew)
}

// TestInsertAndAll verifies inserted records are returned verbatim.
func (s *SuiteBase) TestInsertAndAll(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	record := []byte(`{"id":"a","title":"Doc","url":"https://x"}`)
	require.NoError(t, e.Insert(ctx, storage.CollectionLinks, "a", record))

	records, err := e.All(ctx, storage.CollectionLinks)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record, records[0])

	got, err := e.Get(ctx, storage.CollectionLinks, "a")
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

// TestInsertDuplicate verifies Insert refuses an existing id and keeps the
// original record.
func (s *SuiteBase) TestInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	require.NoError(t, e.Insert(ctx, storage.CollectionLinks, "a", []byte(`"first"`)))
	err := e.Insert(ctx, storage.CollectionLinks, "a", []byte(`"second"`))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := e.Get(ctx, storage.CollectionLinks, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"first"`), got)
}

// TestPutReplaces verifies Put upserts.
func (s *SuiteBase) TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	require.NoError(t, e.Put(ctx, storage.CollectionSessions, "s1", []byte(`"v1"`)))
	require.NoError(t, e.Put(ctx, storage.CollectionSessions, "s1", []byte(`"v2"`)))

	records, err := e.All(ctx, storage.CollectionSessions)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte(`"v2"`)}, records)
}

// TestDeleteIsIdempotent verifies deleting absent ids succeeds and leaves
// the collection unchanged.
func (s *SuiteBase) TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	require.NoError(t, e.Insert(ctx, storage.CollectionLinks, "keep", []byte(`"keep"`)))
	require.NoError(t, e.Delete(ctx, storage.CollectionLinks, "missing"))

	records, err := e.All(ctx, storage.CollectionLinks)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, e.Delete(ctx, storage.CollectionLinks, "keep"))
	require.NoError(t, e.Delete(ctx, storage.CollectionLinks, "keep"))

	_, err = e.Get(ctx, storage.CollectionLinks, "keep")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// TestAllKeyOrder verifies records come back in ascending id order.
func (s *SuiteBase) TestAllKeyOrder(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, e.Insert(ctx, storage.CollectionLinks, id, []byte(`"`+id+`"`)))
	}

	records, err := e.All(ctx, storage.CollectionLinks)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte(`"a"`), []byte(`"b"`), []byte(`"c"`)}, records)
}

// TestCollectionsAreIsolated verifies the same id lives independently in
// two collections.
func (s *SuiteBase) TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	require.NoError(t, e.Insert(ctx, storage.CollectionLinks, "x", []byte(`"link"`)))
	require.NoError(t, e.Insert(ctx, storage.CollectionSessions, "x", []byte(`"session"`)))
	require.NoError(t, e.Delete(ctx, storage.CollectionLinks, "x"))

	got, err := e.Get(ctx, storage.CollectionSessions, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"session"`), got)
}

// TestUnknownCollection verifies operations on unmigrated collections fail.
func (s *SuiteBase) TestUnknownCollection(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	err := e.Put(ctx, "bogus", "a", []byte(`"a"`))
	assert.ErrorIs(t, err, storage.ErrUnknownCollection)
	_, err = e.All(ctx, "bogus")
	assert.ErrorIs(t, err, storage.ErrUnknownCollection)
}

// TestConcurrentWriters verifies parallel inserts on a shared engine all land.
func (s *SuiteBase) TestConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	e := s.migrated(t)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("link-%02d", i)
			errs <- e.Insert(ctx, storage.CollectionLinks, id, []byte(`"`+id+`"`))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	records, err := e.All(ctx, storage.CollectionLinks)
	require.NoError(t, err)
	assert.Len(t, records, writers)
}
