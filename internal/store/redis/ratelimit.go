package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter shared by every instance
// pointing at the same Redis.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Limit is the number of requests allowed per window.
func (l *RateLimiter) Limit() int { return l.limit }

// Allow counts one request for key. On error the caller decides whether to
// fail open.
func (l *RateLimiter) Allow(ctx context.Context, key string, now time.Time) (ok bool, remaining int, retryAfterSec int, err error) {
	start := now.Truncate(l.window)
	redisKey := RateLimitKey(key, start)

	var incr *redis.IntCmd
	_, err = l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.Expire(ctx, redisKey, l.window+time.Second)
		return nil
	})
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	if count <= l.limit {
		return true, l.limit - count, 0, nil
	}
	return false, 0, retryAfter(start.Add(l.window), now), nil
}

func retryAfter(windowEnd, now time.Time) int {
	sec := int(windowEnd.Sub(now).Seconds() + 0.999)
	if sec < 1 {
		sec = 1
	}
	return sec
}
