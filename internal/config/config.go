package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage engines accepted by BMO_STORAGE_ENGINE.
const (
	EngineBolt   = "bolt"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	StorageEngine string        // "bolt" | "redis" | "memory"
	DBPath        string        // bbolt file path
	OpenTimeout   time.Duration // bound on one open + schema upgrade attempt
	TickInterval  time.Duration // expiry countdown tick
	SyncInterval  time.Duration // periodic refresh of the displayed sessions

	// Bookmark import
	BookmarkFile   string        // path to a homepage bookmarks.yaml (optional, empty = import disabled)
	ImportInterval time.Duration // interval to re-import bookmarks (default: 24h)

	// Redis (only when StorageEngine == "redis")
	RedisAddr     string        // ex: "localhost:6379"
	RedisUser     string        // optional
	RedisPassword string        // optional
	RedisDB       int           // Redis DB number
	RedisPrefix   string        // key namespace
	RedisDT       time.Duration // Redis dial timeout (ex: 5s)
	RedisRT       time.Duration // Redis read timeout (ex: 3s)
	RedisWT       time.Duration // Redis write timeout (ex: 3s)
	RedisPoolSize int           // Redis connection pool size

	AllowedHosts     []string // optional, restrict access to specific Host headers
	AllowedCIDRS     []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy       bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst        int      // write requests allowed in a burst per client
	RateRefillPerMin int      // write tokens refilled per minute per client
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is applied first without overriding
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BMO_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BMO_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BMO_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BMO_PRETTY_LOG", true),

		// Storage
		StorageEngine: strings.ToLower(getenv("BMO_STORAGE_ENGINE", EngineBolt)),
		DBPath:        getenv("BMO_DB_PATH", "bookmark-once.db"),
		OpenTimeout:   mustDuration("BMO_OPEN_TIMEOUT", 2*time.Second),
		TickInterval:  mustDuration("BMO_TICK_INTERVAL", time.Second),
		SyncInterval:  mustDuration("BMO_SYNC_INTERVAL", 30*time.Second),

		// Bookmark import
		BookmarkFile:   getenv("BMO_BOOKMARK_FILE", ""),
		ImportInterval: mustDuration("BMO_IMPORT_INTERVAL", 24*time.Hour),

		// Access restrictions
		AllowedHosts:     parseList(getenv("BMO_ALLOWED_HOSTS", "")),
		AllowedCIDRS:     parseList(getenv("BMO_ALLOWED_CIDRS", "")),
		TrustProxy:       mustBool("BMO_TRUST_PROXY", false),
		RateBurst:        getenvInt("BMO_RATE_BURST", 30),
		RateRefillPerMin: getenvInt("BMO_RATE_REFILL_PER_MIN", 120),
	}

	switch cfg.StorageEngine {
	case EngineBolt, EngineMemory:
	case EngineRedis:
		cfg.RedisAddr = requireEnv("BMO_REDIS_ADDR")
		cfg.RedisUser = getenv("BMO_REDIS_USERNAME", "")
		cfg.RedisPassword = getenv("BMO_REDIS_PASSWORD", "")
		cfg.RedisDB = getenvInt("BMO_REDIS_DB", 0)
		cfg.RedisPrefix = getenv("BMO_REDIS_PREFIX", "bmo")
		cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
		cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
		cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
		cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown storage engine %q (want bolt, redis or memory)", cfg.StorageEngine))
	}

	if cfg.TickInterval <= 0 {
		panic("❌ FATAL: BMO_TICK_INTERVAL must be positive")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	return splitAndTrim(raw)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
