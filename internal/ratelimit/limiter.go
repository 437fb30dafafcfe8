// Package ratelimit provides a scoped limiter keyed by (subject, action).
// Limiters are injected where needed; there is no process-global state.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

type key struct {
	subject string
	action  string
}

// Limiter tracks an independent token bucket per (subject, action) pair
// with an explicit per-minute window.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[key]*rate.Limiter
	perEvent rate.Limit
	burst    int
}

// New creates a limiter allowing perMinute events with the given burst
// for each (subject, action) pair.
func New(perMinute, burst int) *Limiter {
	return &Limiter{
		buckets:  make(map[key]*rate.Limiter),
		perEvent: rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether the subject may perform the action now.
func (l *Limiter) Allow(subject, action string) bool {
	l.mu.Lock()
	k := key{subject: subject, action: action}
	bucket, ok := l.buckets[k]
	if !ok {
		bucket = rate.NewLimiter(l.perEvent, l.burst)
		l.buckets[k] = bucket
	}
	l.mu.Unlock()

	return bucket.Allow()
}
