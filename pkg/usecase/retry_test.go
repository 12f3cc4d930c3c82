package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/usecase"
)

func TestCallWithRetry(t *testing.T) {
	errTemporary := errors.New("temporary")

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		v, err := usecase.CallWithRetry(context.Background(), usecase.NoDelayRetryPolicy(3), func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errTemporary
			}
			return 42, nil
		})
		gt.NoError(t, err).Required()
		gt.Value(t, v).Equal(42)
		gt.Value(t, calls).Equal(3)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		calls := 0
		_, err := usecase.CallWithRetry(context.Background(), usecase.NoDelayRetryPolicy(2), func(ctx context.Context) (string, error) {
			calls++
			return "", errTemporary
		})
		gt.Error(t, err).Is(errTemporary)
		gt.Value(t, calls).Equal(2)
	})

	t.Run("zero attempts still calls once", func(t *testing.T) {
		calls := 0
		_, err := usecase.CallWithRetry(context.Background(), usecase.RetryPolicy{}, func(ctx context.Context) (int, error) {
			calls++
			return 1, nil
		})
		gt.NoError(t, err)
		gt.Value(t, calls).Equal(1)
	})

	t.Run("per-call timeout is applied", func(t *testing.T) {
		p := usecase.RetryPolicy{Attempts: 1, Timeout: 10 * time.Millisecond}
		_, err := usecase.CallWithRetry(context.Background(), p, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		gt.Error(t, err).Is(context.DeadlineExceeded)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		p := usecase.RetryPolicy{Attempts: 5, BaseDelay: time.Hour}
		_, err := usecase.CallWithRetry(ctx, p, func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, errTemporary
		})
		gt.Value(t, err).NotNil()
		gt.Value(t, calls).Equal(1)
	})
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := usecase.DefaultRetryPolicy()
	gt.Value(t, p.Attempts).Equal(3)
	gt.Value(t, p.BaseDelay).Equal(200 * time.Millisecond)
	gt.Value(t, p.MaxDelay).Equal(5 * time.Second)
	gt.Value(t, p.Timeout).Equal(30 * time.Second)
}
