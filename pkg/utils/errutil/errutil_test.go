package errutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/utils/errutil"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
)

func TestHandle(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(context.Background(), nil, "nothing"))
	})

	t.Run("logs goerr values", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

		base := errors.New("base")
		err := goerr.Wrap(base, "wrapped", goerr.V("user_id", "42"))
		got := errutil.Handle(ctx, err, "run failed")

		gt.Error(t, got).Is(base)
		gt.String(t, buf.String()).Contains("run failed")
		gt.String(t, buf.String()).Contains("user_id")
	})

	t.Run("logs plain error", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

		errutil.Handle(ctx, errors.New("plain"), "plain failed")
		gt.String(t, buf.String()).Contains("plain failed")
	})
}
