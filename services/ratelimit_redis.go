package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// RedisRateLimiter shares the fixed-window counter across instances through Redis.
// Store errors fail open and admit the request.
type RedisRateLimiter struct {
	client  *redis.Client
	ceiling int64
	window  time.Duration
}

// NewRedisRateLimiter creates a Redis-backed rate limiter with the default policy.
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:  client,
		ceiling: RateLimitCeiling,
		window:  RateLimitWindow,
	}
}

// Admit increments the client's window counter, starting the window expiry on the
// first hit.
func (r *RedisRateLimiter) Admit(ctx context.Context, clientKey string) bool {
	key := rateLimitKeyPrefix + clientKey

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("Rate limit store unavailable, admitting %q: %v", clientKey, err)
		return true
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			log.Printf("Failed to arm rate limit window for %q: %v", clientKey, err)
		}
	}
	return count <= r.ceiling
}
