package limiter

import (
	"context"
	"time"
)

// Timer provides time for report timestamps, rate limiting and retry backoff.
// Tests substitute a fixed clock.
type Timer interface {
	Now() time.Time
	Sleep(ctx context.Context, duration time.Duration) error
}

// Clock is the wall-clock Timer.
type Clock struct{}

// NewClock returns the wall-clock Timer.
func NewClock() Clock {
	return Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now()
}

// Sleep waits for duration or until ctx is done, whichever comes first.
func (Clock) Sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
