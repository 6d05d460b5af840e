package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window store shared across instances. The window is
// approximate at bucket boundaries, which is acceptable for abuse
// protection on auth endpoints.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	count, err := s.client.Incr(ctx, bucket).Result()
	if err != nil {
		return nil, fmt.Errorf("ratelimit incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, bucket, window).Err(); err != nil {
			return nil, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	if count > int64(limit) {
		return &Result{Allowed: false, Remaining: 0, ResetAt: time.Now().Add(window)}, nil
	}
	return &Result{Allowed: true, Remaining: limit - int(count), ResetAt: time.Now().Add(window)}, nil
}
