package keap

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	headerRateRemaining = "x-rate-limit-remaining"
	headerRateReset     = "x-rate-limit-reset"

	// initialRemaining is the quota assumed before any response was seen.
	initialRemaining = 1000
	// throttleThreshold is the remaining quota below which requests wait
	// for the reset instant.
	throttleThreshold = 10
)

// RateLimit is a snapshot of the quota reported by Keap.
type RateLimit struct {
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Throttled reports whether a request issued at now would wait for the reset.
func (r RateLimit) Throttled(now time.Time) bool {
	return r.Remaining < throttleThreshold && now.Before(r.ResetAt)
}

// rateLimiter tracks the quota observed on the most recent v1 response.
type rateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time

	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func newRateLimiter(clock func() time.Time) *rateLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &rateLimiter{
		remaining: initialRemaining,
		resetAt:   clock(),
		Clock:     clock,
		Sleep:     sleepContext,
	}
}

// delay returns how long the next request must wait, or zero.
func (r *rateLimiter) delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.remaining < throttleThreshold && now.Before(r.resetAt) {
		return r.resetAt.Sub(now)
	}
	return 0
}

// wait blocks until the quota allows another request. It returns the time
// spent waiting.
func (r *rateLimiter) wait(ctx context.Context) (time.Duration, error) {
	d := r.delay()
	if d <= 0 {
		return 0, nil
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	if err := sleep(ctx, d); err != nil {
		return 0, err
	}
	return d, nil
}

// observe updates the quota from response headers. Both headers must be
// present and numeric, otherwise the state is left untouched.
func (r *rateLimiter) observe(h http.Header) bool {
	remainingRaw := strings.TrimSpace(h.Get(headerRateRemaining))
	resetRaw := strings.TrimSpace(h.Get(headerRateReset))
	if remainingRaw == "" || resetRaw == "" {
		return false
	}
	remaining, err := strconv.Atoi(remainingRaw)
	if err != nil {
		return false
	}
	reset, err := strconv.ParseInt(resetRaw, 10, 64)
	if err != nil {
		return false
	}

	r.mu.Lock()
	r.remaining = remaining
	r.resetAt = time.Unix(reset, 0)
	r.mu.Unlock()
	return true
}

func (r *rateLimiter) snapshot() RateLimit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RateLimit{Remaining: r.remaining, ResetAt: r.resetAt}
}

func (r *rateLimiter) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
