package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/service/worker"
	"github.com/secmon-lab/usersreport/pkg/utils/errutil"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const defaultScheduleInterval = 24 * time.Hour

func cmdSchedule() *cli.Command {
	var flags jobFlags
	var interval time.Duration

	cmdFlags := flags.Flags()
	cmdFlags = append(cmdFlags, &cli.DurationFlag{
		Name:        "interval",
		Usage:       "Time between report runs",
		Value:       defaultScheduleInterval,
		Sources:     cli.EnvVars("USERSREPORT_INTERVAL"),
		Destination: &interval,
	})

	return &cli.Command{
		Name:    "schedule",
		Aliases: []string{"s"},
		Usage:   "Run the users report now and then on every interval until interrupted",
		Flags:   cmdFlags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, jobCfg, cleanup, err := flags.setup(ctx, c)
			defer cleanup()
			if err != nil {
				return errutil.Handle(ctx, err, "failed to set up report job")
			}

			w, err := worker.NewReportWorker(uc.UsersReport, jobCfg.Run, interval)
			if err != nil {
				return goerr.Wrap(err, "failed to create report worker")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := w.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start report worker")
			}

			select {
			case <-ctx.Done():
				logging.From(ctx).Info("Shutdown signal received")
			case <-w.Done():
			}
			w.Stop()

			return nil
		},
	}
}
