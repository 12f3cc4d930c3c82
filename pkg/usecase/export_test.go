package usecase

import (
	"context"
	"time"
)

// DaysBetween is exported for testing
var DaysBetween = daysBetween

// CallWithRetry is exported for testing
func CallWithRetry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	return callWithRetry(ctx, p, fn)
}

// StaleAfterDaysForTest is exported for testing
func (x *RunConfig) StaleAfterDaysForTest() int {
	return x.staleAfterDays()
}

// NoDelayRetryPolicy retries without waiting, for tests
func NoDelayRetryPolicy(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, Timeout: time.Second}
}
