package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisOptions tunes the distributed lock.
type RedisOptions struct {
	// TTL bounds how long a crashed holder can keep a key.
	TTL time.Duration
	// RetryInterval and MaxRetries bound the lock wait.
	RetryInterval time.Duration
	MaxRetries    int
	Prefix        string
}

func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		TTL:           30 * time.Second,
		RetryInterval: 50 * time.Millisecond,
		MaxRetries:    40,
		Prefix:        "shopfloor:lock:",
	}
}

// Redis is a Locker backed by bsm/redislock, for deployments with more than
// one process writing to the same database.
type Redis struct {
	client *redislock.Client
	opts   RedisOptions
	logger *slog.Logger
}

func NewRedis(rdb redis.UniversalClient, opts RedisOptions, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: redislock.New(rdb), opts: opts, logger: logger}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *Redis) Lock(ctx context.Context, key string) (Unlock, error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(r.opts.RetryInterval), r.opts.MaxRetries),
	}
	l, err := r.client.Obtain(ctx, r.opts.Prefix+key, r.opts.TTL, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		entity, id := splitKey(key)
		return nil, &domain.ConflictError{Entity: entity, ID: id, Reason: "locked by another operation"}
	}
	if err != nil {
		return nil, fmt.Errorf("obtaining lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release with a fresh context; the caller's may already be done.
			relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.logger.Warn("releasing redis lock", "key", key, "error", err)
			}
		})
	}, nil
}

func splitKey(key string) (string, string) {
	if strings.HasPrefix(key, "mo:") {
		return "manufacturing order", strings.TrimPrefix(key, "mo:")
	}
	return "lock", key
}
