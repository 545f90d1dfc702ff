// rate_limiter.go
// ----------------
// This file defines the RateLimiter type, a fixed-window limiter owned by exactly one
// client. It lets bursts of up to maxRequests calls through, then holds the caller
// until the current one-second window has run out before opening the next window.
//
// Responsibilities:
// - Throttle(): called before every dispatched request; sleeps when the window is full,
//   then claims a slot in the window. In-flight calls count, whatever their outcome.
// - Stats(): read-only view of the counters.
package pdbebridge

import (
	"sync"
	"time"
)

// DefaultMaxRequestsPerSecond is the ceiling used when the config does not set one.
const DefaultMaxRequestsPerSecond = 15

type RateLimiter struct {
	mu          sync.Mutex
	clock       Clock
	maxRequests int
	window      time.Duration

	requestCount int
	windowStart  time.Time
	totalWaited  time.Duration
}

// RateLimitStats is a snapshot of a RateLimiter.
type RateLimitStats struct {
	MaxRequests  int
	Window       time.Duration
	RequestCount int
	WindowStart  time.Time
	TotalWaited  time.Duration
}

func NewRateLimiter(maxRequests int, clock Clock) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequestsPerSecond
	}
	if clock == nil {
		clock = realClock{}
	}
	return &RateLimiter{
		clock:       clock,
		maxRequests: maxRequests,
		window:      time.Second,
	}
}

// Throttle blocks until the caller may send its request, claims a slot in the current
// window and returns how long it waited. The lock is held while sleeping so concurrent
// callers queue behind the full window.
func (r *RateLimiter) Throttle() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if r.windowStart.IsZero() {
		r.windowStart = now
	}

	var waited time.Duration
	if r.requestCount >= r.maxRequests {
		if elapsed := now.Sub(r.windowStart); elapsed < r.window {
			waited = r.window - elapsed
			r.clock.Sleep(waited)
			r.totalWaited += waited
		}
		r.windowStart = r.clock.Now()
		r.requestCount = 0
	}
	r.requestCount++
	return waited
}

func (r *RateLimiter) Stats() RateLimitStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RateLimitStats{
		MaxRequests:  r.maxRequests,
		Window:       r.window,
		RequestCount: r.requestCount,
		WindowStart:  r.windowStart,
		TotalWaited:  r.totalWaited,
	}
}
