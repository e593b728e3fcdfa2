package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window request counter shared across
// instances. The first hit in a window creates the counter and starts the
// window clock.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a RedisRateLimiter
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow counts a request against the key's window and reports whether it
// is within the limit, along with the remaining budget.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := "ratelimit:" + key

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	used := int(count.Val())
	remaining := l.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return used <= l.limit, remaining, nil
}

// Limit returns the configured window budget
func (l *RedisRateLimiter) Limit() int {
	return l.limit
}
