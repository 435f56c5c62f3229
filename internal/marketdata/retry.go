package marketdata

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy centralizes retry behavior for all provider calls: bounded
// attempts, exponential backoff, and a per-attempt timeout.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy returns the policy shared by provider clients
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    2,
		BaseDelay:      250 * time.Millisecond,
		AttemptTimeout: 10 * time.Second,
	}
}

// Do runs fn until it succeeds or attempts are exhausted. Rate-limited
// attempts wait out the backoff and retry once more; any other error retries
// on the same schedule. The last error is returned, downgraded to
// ErrDataUnavailable when the upstream kept rate limiting.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << (attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		lastErr = fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	// A persistent rate limit degrades to "unavailable" so callers can skip
	// the ticker instead of special-casing it.
	if errors.Is(lastErr, ErrRateLimited) {
		return ErrDataUnavailable
	}
	return lastErr
}
