package middlewares

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a fixed-window limiter shared across instances. Each
// window is a redis counter INCRed per request and expired after the
// window elapses; once the counter passes the limit the remaining TTL
// becomes the retry hint.
type RedisCounter struct {
	client redis.UniversalClient
	window time.Duration
	limit  int64
	prefix string
}

// NewRedisCounter builds a limiter allowing limit requests per window.
func NewRedisCounter(client redis.UniversalClient, window time.Duration, limit int64) *RedisCounter {
	return &RedisCounter{
		client: client,
		window: window,
		limit:  limit,
		prefix: "ratelimit:",
	}
}

func (r *RedisCounter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := r.prefix + key

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: incr: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit: expire: %w", err)
		}
	}

	if count > r.limit {
		retryAfter, err := r.client.TTL(ctx, redisKey).Result()
		if err != nil || retryAfter < 0 {
			retryAfter = r.window
		}
		return Decision{RetryAfter: retryAfter}, nil
	}
	return Decision{Allowed: true}, nil
}
