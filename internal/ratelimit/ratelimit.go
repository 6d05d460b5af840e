// Package ratelimit throttles the unauthenticated endpoints. Registration
// and login are the only routes an outsider can hammer, so they get a
// per-IP sliding window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store tracks request counts per key. Implementations must be safe for
// concurrent use.
type Store interface {
	// Allow records one request against key and reports whether it fits
	// within limit over the trailing window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// InMemory is a sliding-window store for single-instance deployments.
type InMemory struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{windows: make(map[string][]time.Time)}
}

func (s *InMemory) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)
	kept := s.windows[key][:0]
	for _, ts := range s.windows[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		s.windows[key] = kept
		return &Result{Allowed: false, Remaining: 0, ResetAt: kept[0].Add(window)}, nil
	}

	kept = append(kept, now)
	s.windows[key] = kept
	return &Result{Allowed: true, Remaining: limit - len(kept), ResetAt: kept[0].Add(window)}, nil
}
