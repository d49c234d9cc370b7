package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/bookmarkonce/internal/config"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
)

func TestNewConnection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "memory", cfg: config.Config{StorageEngine: config.EngineMemory, OpenTimeout: time.Second}},
		{name: "bolt", cfg: config.Config{StorageEngine: config.EngineBolt, DBPath: filepath.Join(t.TempDir(), "app.db"), OpenTimeout: time.Second}},
		{name: "unknown", cfg: config.Config{StorageEngine: "sqlite"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := NewConnection(&tt.cfg, logger.Nop())
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewConnection() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConnection() error = %v", err)
			}
			defer func() { _ = conn.Close() }()

			if conn.Name() != tt.cfg.StorageEngine {
				t.Errorf("Name() = %q, want %q", conn.Name(), tt.cfg.StorageEngine)
			}
			if err := conn.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestNewConnectionUnreachableRedis(t *testing.T) {
	cfg := &config.Config{
		StorageEngine: config.EngineRedis,
		RedisAddr:     "127.0.0.1:1",
		RedisPrefix:   "bmo",
		RedisDT:       100 * time.Millisecond,
		OpenTimeout:   300 * time.Millisecond,
	}

	conn, err := NewConnection(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Get(context.Background()); !storage.IsOpenError(err) {
		t.Errorf("Get() error = %v, want OpenError", err)
	}
}

func TestNewWiresStorageLazily(t *testing.T) {
	cfg := &config.Config{
		ListenPort:      ":0",
		ShutdownTimeout: time.Second,
		StorageEngine:   config.EngineBolt,
		// parent directory does not exist: opening would fail, constructing must not
		DBPath:           filepath.Join(t.TempDir(), "missing", "app.db"),
		OpenTimeout:      time.Second,
		TickInterval:     time.Second,
		SyncInterval:     time.Minute,
		RateBurst:        10,
		RateRefillPerMin: 10,
	}

	a, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.importer != nil {
		t.Error("importer should be disabled without a bookmark file")
	}
	if err := a.conn.Ping(context.Background()); !storage.IsOpenError(err) {
		t.Errorf("Ping() error = %v, want OpenError", err)
	}
}
