package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
)

// Run executes handler in the calling goroutine and converts a panic into an
// error.
func Run(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic in async handler", "panic", r)
			err = goerr.New("panic in async handler", goerr.V("panic", r))
		}
	}()

	return handler(ctx)
}
