package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage/storagetest"
)

func Test(t *testing.T) {
	suite.Run(t, new(BoltEngineTestSuite))
}

type BoltEngineTestSuite struct {
	suite.Suite
	base storagetest.SuiteBase
}

func (s *BoltEngineTestSuite) SetupTest() {
	s.base.SetEngineFactory(func(t *testing.T) storage.Engine {
		e, err := Open(filepath.Join(t.TempDir(), "bookmark-once.db"), time.Second)
		if err != nil {
			t.Fatalf("open engine: %v", err)
		}
		t.Cleanup(func() { _ = e.Close() })
		return e
	})
}

func (s *BoltEngineTestSuite) TestMigrateCreatesCollections() {
	s.base.TestMigrateCreatesCollections(s.T())
}
func (s *BoltEngineTestSuite) TestMigrateIsAdditive() { s.base.TestMigrateIsAdditive(s.T()) }
func (s *BoltEngineTestSuite) TestMigrateRejectsDowngrade() {
	s.base.TestMigrateRejectsDowngrade(s.T())
}
func (s *BoltEngineTestSuite) TestInsertAndAll()       { s.base.TestInsertAndAll(s.T()) }
func (s *BoltEngineTestSuite) TestInsertDuplicate()    { s.base.TestInsertDuplicate(s.T()) }
func (s *BoltEngineTestSuite) TestPutReplaces()        { s.base.TestPutReplaces(s.T()) }
func (s *BoltEngineTestSuite) TestDeleteIsIdempotent() { s.base.TestDeleteIsIdempotent(s.T()) }
func (s *BoltEngineTestSuite) TestAllKeyOrder()        { s.base.TestAllKeyOrder(s.T()) }
func (s *BoltEngineTestSuite) TestCollectionsAreIsolated() {
	s.base.TestCollectionsAreIsolated(s.T())
}
func (s *BoltEngineTestSuite) TestUnknownCollection() { s.base.TestUnknownCollection(s.T()) }
func (s *BoltEngineTestSuite) TestConcurrentWriters() { s.base.TestConcurrentWriters(s.T()) }

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  ", time.Second); err == nil {
		t.Fatal("Open() with blank path should fail")
	}
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bookmark-once.db")

	e, err := Open(path, time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := e.Migrate(ctx, storage.SchemaVersion, storage.Collections()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := e.Insert(ctx, storage.CollectionLinks, "l1", []byte(`{"id":"l1"}`)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path, time.Second)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	previous, err := reopened.Migrate(ctx, storage.SchemaVersion, storage.Collections())
	if err != nil {
		t.Fatalf("migrate after reopen: %v", err)
	}
	if previous != storage.SchemaVersion {
		t.Fatalf("expected stored version %d, got %d", storage.SchemaVersion, previous)
	}

	got, err := reopened.Get(ctx, storage.CollectionLinks, "l1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != `{"id":"l1"}` {
		t.Fatalf("expected record to survive reopen, got %s", got)
	}
}

func TestOpenLockedFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmark-once.db")

	first, err := Open(path, time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer first.Close()

	if _, err := Open(path, 50*time.Millisecond); err == nil {
		t.Fatal("second Open() on a locked file should fail")
	}
}

func TestReservedMetaBucket(t *testing.T) {
	ctx := context.Background()
	e, err := Open(filepath.Join(t.TempDir(), "bookmark-once.db"), time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer e.Close()

	if _, err := e.Migrate(ctx, storage.SchemaVersion, []string{metaBucket}); err == nil {
		t.Fatal("Migrate() should refuse the reserved meta bucket name")
	}
}
