package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/sources/homepage"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

// LinkCreator is the slice of the link store the importer writes through.
type LinkCreator interface {
	Create(ctx context.Context, link domain.Link) (domain.Link, error)
}

// ImportResult summarises one import run.
type ImportResult struct {
	Loaded  int `json:"loaded"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// LinkImporter handles periodic import of homepage bookmarks as links
type LinkImporter struct {
	loader        *homepage.Loader
	links         LinkCreator
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger <-chan struct{}
	mu            sync.Mutex // one import at a time
}

// NewLinkImporter creates a new link importer
func NewLinkImporter(
	bookmarkFile string,
	links LinkCreator,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *LinkImporter {
	return &LinkImporter{
		loader:        homepage.NewLoader(bookmarkFile),
		links:         links,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs an import immediately and then on every tick or manual trigger.
// A failing run is logged; the next run tries again from scratch.
func (li *LinkImporter) Start(ctx context.Context) {
	li.runLogged(ctx)

	ticker := time.NewTicker(li.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				li.runLogged(ctx)
			case <-li.manualTrigger:
				li.logger.Info("manual bookmark import triggered")
				li.runLogged(ctx)
			case <-li.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the importer
func (li *LinkImporter) Stop() {
	li.stopOnce.Do(func() { close(li.stopCh) })
}

// Import loads the bookmarks file and creates a link for every entry that is
// not stored yet. Links already present (same URL hash) are skipped, so the
// run is idempotent.
func (li *LinkImporter) Import(ctx context.Context) (ImportResult, error) {
	li.mu.Lock()
	defer li.mu.Unlock()

	var res ImportResult

	li.logger.Info("importing bookmarks from homepage",
		logger.String("file", li.loader.Path()))

	config, err := li.loader.Load()
	if err != nil {
		return res, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	links, err := homepage.MapLinks(config)
	if err != nil {
		return res, fmt.Errorf("failed to map bookmarks: %w", err)
	}
	res.Loaded = len(links)

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if _, err := li.links.Create(ctx, link); err != nil {
			if storage.IsDuplicateKey(err) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to import %s: %w", link.URL, err)
		}
		res.Created++
	}

	li.logger.Info("bookmarks imported",
		logger.Int("loaded", res.Loaded),
		logger.Int("created", res.Created),
		logger.Int("skipped", res.Skipped))

	return res, nil
}

func (li *LinkImporter) runLogged(ctx context.Context) {
	if _, err := li.Import(ctx); err != nil {
		li.logger.Error("failed to import bookmarks",
			logger.Error(err))
	}
}
