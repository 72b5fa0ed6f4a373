package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/language-camp/internal/adapters/redis"
)

// Decision is the outcome of counting one request against a window.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter is a fixed-window counter kept in redis.
type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow counts one hit against key. A redis failure lets the request through.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) Decision {
	windowKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	hits := pipe.Incr(ctx, windowKey)
	pipe.ExpireNX(ctx, windowKey, period)
	ttl := pipe.PTTL(ctx, windowKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Allowed: true, Remaining: rate}
	}

	remaining := rate - int(hits.Val())
	if remaining >= 0 {
		return Decision{Allowed: true, Remaining: remaining}
	}
	retry := ttl.Val()
	if retry <= 0 {
		retry = period
	}
	return Decision{Allowed: false, RetryAfter: retry}
}
