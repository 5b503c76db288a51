package limiter

import (
	"context"
	"sync"
	"time"
)

// RateLimiter caps the number of requests started in any one-second window.
type RateLimiter struct {
	requestTimes []time.Time
	maxRequests  int
	window       time.Duration
	now          func() time.Time
	mu           sync.Mutex
}

// NewRateLimiter returns a limiter allowing maxRequests per second. A value
// below one disables limiting.
func NewRateLimiter(maxRequests int) *RateLimiter {
	return &RateLimiter{
		requestTimes: make([]time.Time, 0, max(maxRequests, 0)),
		maxRequests:  maxRequests,
		window:       time.Second,
		now:          time.Now,
	}
}

// Allow records a request and reports whether it fits in the current window.
func (r *RateLimiter) Allow() bool {
	_, ok := r.reserve()
	return ok
}

// Wait blocks until a request is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve returns how long to wait before the oldest request leaves the window
// when no slot is free.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	if r.maxRequests < 1 {
		return 0, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	windowStart := now.Add(-r.window)

	// Drop requests that left the window
	validTimes := r.requestTimes[:0]
	for _, t := range r.requestTimes {
		if t.After(windowStart) {
			validTimes = append(validTimes, t)
		}
	}
	r.requestTimes = validTimes

	if len(r.requestTimes) < r.maxRequests {
		r.requestTimes = append(r.requestTimes, now)
		return 0, true
	}

	return r.requestTimes[0].Sub(windowStart), false
}
