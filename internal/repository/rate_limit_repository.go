package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heliohq/claims-portal/pkg/logger"
)

// RateLimiter counts hits per key inside a rolling window.
type RateLimiter interface {
	// Allow reports whether the caller identified by key is still under
	// limit for the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type redisRateLimiter struct {
	client *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	return &redisRateLimiter{client: client}
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	pipe := r.client.TxPipeline()
	count := pipe.Incr(ctx, "ratelimit:"+key)
	pipe.Expire(ctx, "ratelimit:"+key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		// Redis being down must not lock everyone out.
		logger.WarnContext(ctx, "rate limiter unavailable, allowing request", "error", err)
		return true, nil
	}

	return count.Val() <= int64(limit), nil
}
