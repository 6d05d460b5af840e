package whitelist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedRoster is a Redis read-through decorator over a slower roster. The
// roster changes rarely (once per intake), so positive and negative answers
// are both cached with a TTL.
type CachedRoster struct {
	next   Roster
	client *redis.Client
	ttl    time.Duration
}

func NewCachedRoster(next Roster, client *redis.Client, ttl time.Duration) *CachedRoster {
	return &CachedRoster{next: next, client: client, ttl: ttl}
}

func cacheKey(regNo string) string {
	return "whitelist:" + strings.ToLower(regNo)
}

func (r *CachedRoster) Contains(ctx context.Context, regNo string) (bool, error) {
	cached, err := r.client.Get(ctx, cacheKey(regNo)).Result()
	if err == nil {
		return cached == "1", nil
	}
	if !errors.Is(err, redis.Nil) {
		// Cache trouble must not block registration; fall through to the
		// backing roster.
		return r.next.Contains(ctx, regNo)
	}

	eligible, err := r.next.Contains(ctx, regNo)
	if err != nil {
		return false, err
	}
	value := "0"
	if eligible {
		value = "1"
	}
	_ = r.client.Set(ctx, cacheKey(regNo), value, r.ttl).Err()
	return eligible, nil
}
