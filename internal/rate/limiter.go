// Package rate holds the request limiters. The in-memory limiter is
// the default; the Redis one serves deployments with more than one
// replica.
package rate

import (
	"context"
	"sync"
	"time"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// MemoryLimiter is a sliding-window limiter keyed by caller identity.
// State is append/prune only: a slice of recent request timestamps per
// key, pruned on every call.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.hits[key] = recent
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: recent[0].Add(l.window).Sub(now),
		}, nil
	}

	l.hits[key] = append(recent, now)
	return Result{
		Allowed:   true,
		Remaining: int64(l.max - len(recent) - 1),
	}, nil
}
