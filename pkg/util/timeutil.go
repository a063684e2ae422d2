package util

import (
	"context"
	"time"
)

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// WaitAtLeast blocks until min has passed since start or ctx is done.
func WaitAtLeast(ctx context.Context, start time.Time, min time.Duration) error {
	remaining := min - time.Since(start)
	if remaining <= 0 {
		return nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
