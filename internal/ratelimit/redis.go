package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter whose counters live in Redis, so every
// server instance shares the same budget per client.
type Redis struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedis allows limit requests per window for each key.
func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: int64(limit), window: window}
}

// Dial parses a redis:// URL and verifies the server answers.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Allow increments the counter for key. The window starts with the key:
// SET NX EX and INCR run in one MULTI block, so a counter never exists
// without its expiry and later hits do not extend the window.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, r.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}

	return incr.Val() <= r.limit, nil
}
