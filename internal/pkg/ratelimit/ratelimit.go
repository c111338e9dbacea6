// Package ratelimit implements a sliding-window rate limiter keyed by an
// arbitrary string, used to throttle claim submissions per user.
package ratelimit

import (
	"sync"
	"time"
)

type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

// New returns a limiter allowing limit requests per key within window.
func New(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

// Allow records and permits the request unless the key has exhausted its
// window. Expired entries are pruned on the way, so idle keys shrink to
// nothing over time.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	live := rl.prune(key, time.Now())
	if len(live) >= rl.limit {
		return false
	}
	rl.seen[key] = append(live, time.Now())
	return true
}

// GetRemaining reports how many requests the key has left in the current
// window.
func (rl *RateLimiter) GetRemaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	remaining := rl.limit - len(rl.prune(key, time.Now()))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetResetTime reports when the key's oldest live request leaves the
// window. For an idle key it returns now.
func (rl *RateLimiter) GetResetTime(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	live := rl.prune(key, now)
	if len(live) == 0 {
		return now
	}
	return live[0].Add(rl.window)
}

// Limit returns the configured per-window request limit.
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// prune drops entries older than the window. Entries are appended in
// order, so the survivors stay sorted and live[0] is always the oldest.
// Callers must hold mu.
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	entries := rl.seen[key]
	i := 0
	for i < len(entries) && !entries[i].After(cutoff) {
		i++
	}
	if i == len(entries) {
		delete(rl.seen, key)
		return nil
	}
	if i > 0 {
		entries = entries[i:]
		rl.seen[key] = entries
	}
	return entries
}
