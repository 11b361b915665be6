package limiter

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between requests shared by all callers.
// A nil *Limiter never waits.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	clock    Timer
}

// New creates a limiter from a requests-per-second budget or a fixed delay.
// rps takes precedence over delay; it returns nil when neither is positive.
func New(rps float64, delay time.Duration, clock Timer) *Limiter {
	interval := Interval(rps, delay)
	if interval <= 0 {
		return nil
	}

	if clock == nil {
		clock = Clock{}
	}

	return &Limiter{
		interval: interval,
		clock:    clock,
	}
}

// Interval converts an rps budget or a delay into the spacing between requests.
func Interval(rps float64, delay time.Duration) time.Duration {
	if rps > 0 {
		return max(time.Duration(float64(time.Second)/rps), time.Nanosecond)
	}

	return max(delay, 0)
}

// Wait reserves the next slot and blocks until it arrives or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	now := l.clock.Now()

	slot := now
	if l.next.After(now) {
		slot = l.next
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	if wait := slot.Sub(now); wait > 0 {
		return l.clock.Sleep(ctx, wait)
	}

	return ctx.Err()
}
