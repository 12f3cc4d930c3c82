package async_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/utils/async"
)

func TestRun(t *testing.T) {
	t.Run("returns handler error", func(t *testing.T) {
		want := errors.New("boom")
		err := async.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		gt.Error(t, err).Is(want)
	})

	t.Run("converts panic into error", func(t *testing.T) {
		err := async.Run(context.Background(), func(ctx context.Context) error {
			panic("unexpected")
		})
		gt.Value(t, err).NotNil()
		gt.String(t, err.Error()).Contains("panic")
	})

	t.Run("nil on success", func(t *testing.T) {
		err := async.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		gt.NoError(t, err)
	})
}
