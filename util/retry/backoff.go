package retry

import (
	"context"
	"time"
)

// replaced in tests
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BackoffAndSleep sleeps for ((backoffMultiplier * retries) + 1) * durationType, returning early
// with the context error if ctx is done first.
func BackoffAndSleep(ctx context.Context, retries int, backoffMultiplier int, durationType time.Duration) error {
	backoff := (backoffMultiplier * retries) + 1
	return sleepFunc(ctx, time.Duration(backoff)*durationType)
}

// CappedExponentialBackoff multiplies currentBackoff by backoffFactor, never exceeding maxBackoff.
func CappedExponentialBackoff(currentBackoff time.Duration, backoffFactor float64, maxBackoff time.Duration) time.Duration {
	nextBackoff := time.Duration(float64(currentBackoff) * backoffFactor)
	if nextBackoff > maxBackoff {
		return maxBackoff
	}

	return nextBackoff
}
