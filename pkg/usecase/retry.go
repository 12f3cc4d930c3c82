package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// RetryPolicy bounds how a single directory lookup is retried
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first one
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Timeout is applied to each call; zero disables it
	Timeout time.Duration
}

// DefaultRetryPolicy returns 3 attempts, 200ms doubling backoff capped at 5s
// and a 30s per-call timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  3,
		BaseDelay: 200 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Timeout:   30 * time.Second,
	}
}

func callWithRetry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)
	delay := p.BaseDelay

	var lastErr error
	for i := range attempts {
		if i > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, goerr.Wrap(ctx.Err(), "lookup cancelled", goerr.V("attempt", i+1))
			case <-timer.C:
			}

			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		v, err := callOnce(ctx, p.Timeout, fn)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return zero, goerr.Wrap(lastErr, "lookup failed", goerr.V("attempts", attempts))
}

func callOnce[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
