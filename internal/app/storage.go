package app

import (
	"fmt"

	"github.com/MrSnakeDoc/bookmarkonce/internal/config"
	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage/bolt"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage/memory"
	"github.com/MrSnakeDoc/bookmarkonce/internal/storage/redis"
)

// NewConnection picks the engine named in cfg and wraps it in a lazy
// connection. Nothing is opened until first use.
func NewConnection(cfg *config.Config, log logger.Logger) (*storage.Connection, error) {
	var open storage.Opener

	switch cfg.StorageEngine {
	case config.EngineBolt:
		open = bolt.Opener(cfg.DBPath, bolt.DefaultLockTimeout)
	case config.EngineMemory:
		open = memory.Open
	case config.EngineRedis:
		open = redis.Opener(redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			RedisDB:      cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			PingTimeout:  cfg.OpenTimeout,
			KeyPrefix:    cfg.RedisPrefix,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.StorageEngine)
	}

	return storage.NewConnection(cfg.StorageEngine, open, log, storage.Options{
		Version:     storage.SchemaVersion,
		Collections: storage.Collections(),
		OpenTimeout: cfg.OpenTimeout,
	}), nil
}
