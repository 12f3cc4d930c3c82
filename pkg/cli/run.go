package cli

import (
	"context"
	"os"

	"github.com/secmon-lab/usersreport/pkg/utils/errutil"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var flags jobFlags
	var listLimit int

	cmdFlags := flags.Flags()
	cmdFlags = append(cmdFlags, &cli.IntFlag{
		Name:        "list-limit",
		Usage:       "Number of flagged users printed in the dry run summary",
		Value:       defaultSummaryLimit,
		Destination: &listLimit,
	})

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Build the users report once, store it and send it",
		Flags:   cmdFlags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, jobCfg, cleanup, err := flags.setup(ctx, c)
			defer cleanup()
			if err != nil {
				return errutil.Handle(ctx, err, "failed to set up report job")
			}

			result, err := uc.UsersReport.Run(ctx, jobCfg.Run)
			if err != nil {
				return errutil.Handle(ctx, err, "users report run failed")
			}

			if result.Skipped {
				return nil
			}

			logging.From(ctx).Info("Users report completed",
				"run_id", result.RunID,
				"artifact_id", result.ArtifactID,
				"notify_failures", result.NotifyFailures,
			)

			if jobCfg.Run.DryRun {
				printSummary(os.Stdout, result, listLimit)
			}
			return nil
		},
	}
}
