package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarkonce/internal/logger"
)

// ConnectOptions defines how the Redis client is built and probed.
type ConnectOptions struct {
	Addr         string        // Redis address (ex: "localhost:6379")
	User         string        // Optional username
	Password     string        // Optional password
	RedisDB      int           // Redis DB number
	DialTimeout  time.Duration // Redis dial timeout
	ReadTimeout  time.Duration // Redis read timeout
	WriteTimeout time.Duration // Redis write timeout
	PoolSize     int           // Redis connection pool size
	PingTimeout  time.Duration // timeout for the initial ping
	KeyPrefix    string        // namespace for every key (ex: "bmo")
}

// connectionLogger handles all Redis connection logging.
type connectionLogger struct {
	logger logger.Logger
}

func (cl *connectionLogger) logConnectionStart(addr string, timeout time.Duration) {
	cl.logger.Info("connecting to redis",
		logger.String("addr", addr),
		logger.Duration("timeout", timeout))
}

func (cl *connectionLogger) logSuccess(addr string, elapsed time.Duration) {
	cl.logger.Info("connected to redis",
		logger.String("addr", addr),
		logger.Duration("elapsed", elapsed))
}

func (cl *connectionLogger) logFailure(addr string, err error) {
	cl.logger.Error("redis unavailable",
		logger.String("addr", addr),
		logger.Error(err))
}

// validateOptions ensures all required configuration values are valid.
func (cl *connectionLogger) validateOptions(opts ConnectOptions) error {
	if opts.Addr == "" {
		cl.logger.Error("invalid Addr: empty")
		return fmt.Errorf("Addr must not be empty")
	}
	if opts.PingTimeout <= 0 {
		cl.logger.Error("invalid PingTimeout", logger.Duration("value", opts.PingTimeout))
		return fmt.Errorf("PingTimeout must be > 0, got %v", opts.PingTimeout)
	}
	if opts.KeyPrefix == "" {
		cl.logger.Error("invalid KeyPrefix: empty")
		return fmt.Errorf("KeyPrefix must not be empty")
	}
	return nil
}

// Connect builds the client and pings it once. There is no retry loop:
// an unreachable server is reported to the caller straight away.
func Connect(ctx context.Context, opts ConnectOptions, log logger.Logger) (*Engine, error) {
	connLogger := &connectionLogger{logger: log}
	if err := connLogger.validateOptions(opts); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
		MaxRetries:   -1, // failures go back to the caller untouched
	})

	connLogger.logConnectionStart(opts.Addr, opts.PingTimeout)
	start := time.Now()

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		connLogger.logFailure(opts.Addr, err)
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable at %s: %w", opts.Addr, err)
	}

	connLogger.logSuccess(opts.Addr, time.Since(start))
	return NewEngine(client, opts.KeyPrefix), nil
}
