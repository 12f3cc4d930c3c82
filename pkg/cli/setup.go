package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/cli/config"
	"github.com/secmon-lab/usersreport/pkg/usecase"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// jobFlags gathers the flag groups shared by run and schedule
type jobFlags struct {
	job     config.Job
	repo    config.Repository
	storage config.Storage
	mail    config.Mail
	slack   config.Slack
}

func (x *jobFlags) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.job.Flags()...)
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.storage.Flags()...)
	flags = append(flags, x.mail.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	return flags
}

// setup resolves the job and builds the use cases. The returned cleanup
// closes everything setup opened and must be called by the caller.
func (x *jobFlags) setup(ctx context.Context, c *cli.Command) (*usecase.UseCases, *config.JobConfig, func(), error) {
	logger := logging.From(ctx)
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	jobCfg, err := x.job.Configure(c)
	if err != nil {
		return nil, nil, cleanup, goerr.Wrap(err, "failed to configure job")
	}
	if err := jobCfg.Run.Validate(); err != nil {
		return nil, nil, cleanup, err
	}
	logger.Info("Job configured", "job", x.job, "repository", x.repo)

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, cleanup, err
	}
	closers = append(closers, func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close repository", "error", err.Error())
		}
	})

	opts := jobCfg.UseCaseOptions()

	if !jobCfg.Run.DryRun {
		store, closeStore, err := x.storage.Configure(ctx)
		if err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		closers = append(closers, closeStore)
		opts = append(opts, usecase.WithArtifactStore(store))

		mailer, err := x.mail.Configure()
		if err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		if mailer != nil {
			logger.Info("Mail notifier enabled", "mail", x.mail)
			opts = append(opts, usecase.WithNotifier(mailer))
		} else {
			logger.Warn("SMTP relay is not configured, the report email will not be sent")
		}

		slackNotifier, err := x.slack.Configure()
		if err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		if slackNotifier != nil {
			logger.Info("Slack notifier enabled", "slack", x.slack)
			opts = append(opts, usecase.WithNotifier(slackNotifier))
		}
	}

	return usecase.New(repo, opts...), jobCfg, cleanup, nil
}
