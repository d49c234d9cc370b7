package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/config"
	"github.com/MrSnakeDoc/bookmarkonce/internal/expiry"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver"
	"github.com/MrSnakeDoc/bookmarkonce/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/scheduler"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
	"github.com/MrSnakeDoc/bookmarkonce/internal/store"
	"github.com/MrSnakeDoc/bookmarkonce/internal/utils"
	"github.com/MrSnakeDoc/bookmarkonce/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	conn        *storage.Connection
	supervisor  *expiry.Supervisor
	sessionSync *scheduler.SessionSync
	importer    *scheduler.LinkImporter
}

func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	conn, err := NewConnection(cfg, loggerClient.Named("storage"))
	if err != nil {
		return nil, err
	}
	loggerClient.Info("storage configured (opened lazily)",
		logger.String("engine", cfg.StorageEngine),
		logger.Duration("open_timeout", cfg.OpenTimeout))

	links := store.NewLinkStore(conn)
	sessions := store.NewSessionStore(conn)

	supervisor := expiry.NewSupervisor(sessions, loggerClient.Named("expiry"),
		expiry.WithInterval(cfg.TickInterval))

	// Create manual sync trigger channel
	syncTrigger := make(chan struct{}, 1)
	sessionSync := scheduler.NewSessionSync(supervisor, loggerClient.Named("sync"), cfg.SyncInterval, syncTrigger)

	// Initialize link importer (if bookmark file is configured)
	var importer *scheduler.LinkImporter
	var importTrigger chan struct{}
	if cfg.BookmarkFile != "" {
		loggerClient.Info("bookmark file configured, initializing link importer",
			logger.String("file", cfg.BookmarkFile))
		importTrigger = make(chan struct{}, 1)
		importer = scheduler.NewLinkImporter(
			cfg.BookmarkFile,
			links,
			loggerClient.Named("import"),
			cfg.ImportInterval,
			importTrigger,
		)
	} else {
		loggerClient.Info("bookmark file not configured, import disabled")
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		Storage:       conn,
		Links:         links,
		Sessions:      sessions,
		Expiry:        supervisor,
		ImportTrigger: importTrigger,
		SyncTrigger:   syncTrigger,
	}

	server := httpserver.New(cfg, loggerClient.Named("http"), d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		conn:        conn,
		supervisor:  supervisor,
		sessionSync: sessionSync,
		importer:    importer,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting bookmark-once v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bookmark-once %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial sync opens the storage; a failure here is fatal at startup.
	if err := a.supervisor.Start(ctx); err != nil {
		utils.MustClose(a.conn, a.logger, "storage")
		return fmt.Errorf("failed to start expiry supervisor: %w", err)
	}

	a.sessionSync.Start(ctx)
	a.logger.Info("session sync started",
		logger.Duration("interval", a.cfg.SyncInterval))

	if a.importer != nil {
		a.importer.Start(ctx)
		a.logger.Info("link importer started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.importer != nil {
		a.importer.Stop()
	}
	a.sessionSync.Stop()
	a.supervisor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Warnf("failed to close storage: %v", err)
	} else {
		a.logger.Info("✅ Storage closed cleanly")
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ bookmark-once stopped cleanly")
	return nil
}
