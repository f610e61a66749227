package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rejection throttle tuning parameters.
type Config struct {
	Prefix      string
	MaxFailures int
	Window      time.Duration
}

// Limiter counts failed verifications per client in fixed windows and
// refuses clients that exceed the budget.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "jrf"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check returns ErrRateLimited when client has used up its failure budget
// in the current window. An empty client is never limited.
func (l *Limiter) Check(ctx context.Context, client string) error {
	if client == "" {
		return nil
	}
	count, err := l.redis.Get(ctx, l.key(client)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(l.config.MaxFailures) {
		return ErrRateLimited
	}

	return nil
}

// RecordFailure counts one failed verification for client.
func (l *Limiter) RecordFailure(ctx context.Context, client string) error {
	if client == "" {
		return nil
	}
	count, err := l.incrementWithTTL(ctx, l.key(client), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxFailures) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the failure counter for client.
func (l *Limiter) Reset(ctx context.Context, client string) error {
	if err := l.redis.Del(ctx, l.key(client)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Failures returns the current failure count for client.
func (l *Limiter) Failures(ctx context.Context, client string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(client)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(client string) string {
	return l.config.Prefix + ":" + client
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
