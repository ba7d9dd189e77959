package analyzer

import (
	"context"
	"sync"
	"time"
)

// RateLimiter hands out evenly spaced call slots. Slots are reserved before the call is
// made, so pacing does not depend on how long each call takes.
type RateLimiter struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	interval      time.Duration
	now           func() time.Time
	sleep         func(context.Context, time.Duration) error
}

func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &RateLimiter{
		interval: time.Second / time.Duration(requestsPerSecond),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func (r *RateLimiter) Interval() time.Duration {
	return r.interval
}

// Wait blocks until the next slot is due.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := r.now()
	scheduled := now
	if r.nextAllowedAt.After(now) {
		scheduled = r.nextAllowedAt
	}
	r.nextAllowedAt = scheduled.Add(r.interval)
	r.mu.Unlock()

	if d := scheduled.Sub(now); d > 0 {
		return r.sleep(ctx, d)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
