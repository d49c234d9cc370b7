package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage/memory"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
)

const bookmarksYAML = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go:
        - href: https://go.dev/
- Broken:
    - Nothing:
        - abbr: NO
`

func writeBookmarks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write bookmarks: %v", err)
	}
	return path
}

func newLinkStore(t *testing.T) *store.LinkStore {
	t.Helper()
	conn := storage.NewConnection("memory", memory.Open, logger.Nop(), storage.Options{})
	t.Cleanup(func() { _ = conn.Close() })
	return store.NewLinkStore(conn)
}

func TestLinkImporter_ImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	links := newLinkStore(t)
	li := NewLinkImporter(writeBookmarks(t, bookmarksYAML), links, logger.Nop(), time.Hour, nil)

	res, err := li.Import(ctx)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res != (ImportResult{Loaded: 2, Created: 2}) {
		t.Errorf("first Import() = %+v", res)
	}

	res, err = li.Import(ctx)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if res != (ImportResult{Loaded: 2, Skipped: 2}) {
		t.Errorf("second Import() = %+v", res)
	}

	all, err := links.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAll() returned %d links, want 2", len(all))
	}
}

func TestLinkImporter_ImportMissingFile(t *testing.T) {
	li := NewLinkImporter("/nonexistent/bookmarks.yaml", newLinkStore(t), logger.Nop(), time.Hour, nil)

	if _, err := li.Import(context.Background()); err == nil {
		t.Error("Import() with missing file should fail")
	}
}

type failingCreator struct{ err error }

func (f failingCreator) Create(context.Context, domain.Link) (domain.Link, error) {
	return domain.Link{}, f.err
}

func TestLinkImporter_ImportStopsOnStorageFault(t *testing.T) {
	boom := &storage.WriteError{Op: "create", Collection: storage.CollectionLinks, Err: errors.New("disk full")}
	li := NewLinkImporter(writeBookmarks(t, bookmarksYAML), failingCreator{err: boom}, logger.Nop(), time.Hour, nil)

	res, err := li.Import(context.Background())
	if !storage.IsWriteError(err) {
		t.Fatalf("Import() error = %v, want WriteError", err)
	}
	if res.Created != 0 {
		t.Errorf("Created = %d, want 0", res.Created)
	}
}

func TestLinkImporter_ManualTrigger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := writeBookmarks(t, bookmarksYAML)
	links := newLinkStore(t)
	trigger := make(chan struct{})
	li := NewLinkImporter(path, links, logger.Nop(), time.Hour, trigger)
	li.Start(ctx)
	defer li.Stop()

	// add a bookmark and ask for a re-import
	extra := bookmarksYAML + `- More:
    - Docs:
        - href: https://pkg.go.dev/
`
	if err := os.WriteFile(path, []byte(extra), 0o644); err != nil {
		t.Fatalf("failed to rewrite bookmarks: %v", err)
	}
	trigger <- struct{}{}

	deadline := time.After(2 * time.Second)
	for {
		all, err := links.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(all) == 3 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("manual import did not run, have %d links", len(all))
		case <-time.After(5 * time.Millisecond):
		}
	}
}
