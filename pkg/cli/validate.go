package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/cli/config"
	"github.com/secmon-lab/usersreport/pkg/usecase"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrDirectoryIssues is returned by validate --fail-on-issues when the
// directory check reported issues
var ErrDirectoryIssues = goerr.New("directory has data quality issues")

func cmdValidate() *cli.Command {
	var jobCfg config.Job
	var repoCfg config.Repository
	var failOnIssues bool

	var flags []cli.Flag
	flags = append(flags, jobCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "fail-on-issues",
		Usage:       "Exit with an error when the directory check reports issues",
		Destination: &failOnIssues,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the job configuration and check the directory without sending anything",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			// Step 1: job configuration
			job, err := jobCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			if err := job.Run.Validate(); err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logger.Info("Configuration validation passed",
				"destination", job.Run.Destination,
				"recipient_count", len(job.Run.Recipients),
				"primary_environment", job.Run.IsPrimaryEnvironment(),
			)

			// Step 2: directory
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, job.UseCaseOptions()...)
			result, err := uc.ValidateDirectory(ctx)
			if err != nil {
				return goerr.Wrap(err, "directory check failed")
			}

			for _, issue := range result.Issues {
				logger.Warn("Directory issue",
					"user_id", issue.UserID,
					"message", issue.Message,
				)
			}

			if result.HasIssues() {
				logger.Warn("Directory check completed with issues",
					"eligible_users", result.EligibleUsers,
					"issue_count", len(result.Issues),
				)
				if failOnIssues {
					return goerr.Wrap(ErrDirectoryIssues, "directory check reported issues",
						goerr.V("issue_count", len(result.Issues)))
				}
				return nil
			}

			logger.Info("Directory check passed", "eligible_users", result.EligibleUsers)
			return nil
		},
	}
}
