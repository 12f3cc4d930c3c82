package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/usersreport/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// JobFile is the TOML representation of a report job
type JobFile struct {
	Environment        string   `toml:"environment"`
	PrimaryEnvironment string   `toml:"primary_environment"`
	AllowNonPrimary    bool     `toml:"allow_non_primary"`
	Destination        string   `toml:"destination"`
	Recipients         []string `toml:"recipients"`
	Author             string   `toml:"author"`
	ReplyTo            string   `toml:"reply_to"`
	Subject            string   `toml:"subject"`
	JobName            string   `toml:"job_name"`
	StaleAfterDays     int      `toml:"stale_after_days"`
	SSOFullLevel       int      `toml:"sso_full_level"`
	Concurrency        int      `toml:"concurrency"`
}

// LoadJobFile reads a job definition from a TOML file
func LoadJobFile(path string) (*JobFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrJobFileNotFound, "job file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read job file", goerr.V(ConfigPathKey, path))
	}

	var f JobFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML job file", goerr.V(ConfigPathKey, path))
	}
	return &f, nil
}

// JobConfig is the resolved job: the run configuration and the use case options
type JobConfig struct {
	Run          usecase.RunConfig
	SSOFullLevel int
	Concurrency  int
}

// UseCaseOptions returns the options for usecase.New derived from the job
func (x *JobConfig) UseCaseOptions() []usecase.Option {
	var opts []usecase.Option
	if x.SSOFullLevel > 0 {
		opts = append(opts, usecase.WithPolicyOptions(usecase.PolicyOptions{SSOFullLevel: x.SSOFullLevel}))
	}
	if x.Concurrency > 0 {
		opts = append(opts, usecase.WithConcurrency(x.Concurrency))
	}
	return opts
}

// Job holds CLI flags for the report job. Flags that are set explicitly
// override values from the job file.
type Job struct {
	configPath         string
	environment        string
	primaryEnvironment string
	allowNonPrimary    bool
	destination        string
	recipients         string
	author             string
	replyTo            string
	subject            string
	jobName            string
	staleAfterDays     int
	ssoFullLevel       int
	concurrency        int
	dryRun             bool
	today              string
}

// Flags returns CLI flags for job configuration
func (x *Job) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML job file",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "environment",
			Usage:       "Environment this job runs in",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_ENVIRONMENT"),
			Destination: &x.environment,
		},
		&cli.StringFlag{
			Name:        "primary-environment",
			Usage:       "Only this environment sends the report",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_PRIMARY_ENVIRONMENT"),
			Destination: &x.primaryEnvironment,
		},
		&cli.BoolFlag{
			Name:        "allow-non-primary",
			Usage:       "Run even when environment is not the primary environment",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_ALLOW_NON_PRIMARY"),
			Destination: &x.allowNonPrimary,
		},
		&cli.StringFlag{
			Name:        "destination",
			Usage:       "Folder the CSV artifact is stored under",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_DESTINATION"),
			Destination: &x.destination,
		},
		&cli.StringFlag{
			Name:        "recipients",
			Usage:       "Email recipients separated by ';' or ',' (at most 10)",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_RECIPIENTS"),
			Destination: &x.recipients,
		},
		&cli.StringFlag{
			Name:        "author",
			Usage:       "Email sender address",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_AUTHOR"),
			Destination: &x.author,
		},
		&cli.StringFlag{
			Name:        "reply-to",
			Usage:       "Reply-To address",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_REPLY_TO"),
			Destination: &x.replyTo,
		},
		&cli.StringFlag{
			Name:        "subject",
			Usage:       "Email subject",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_SUBJECT"),
			Destination: &x.subject,
		},
		&cli.StringFlag{
			Name:        "job-name",
			Usage:       "Job name shown in the email footer",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_JOB_NAME"),
			Destination: &x.jobName,
		},
		&cli.IntFlag{
			Name:        "stale-after-days",
			Usage:       "Accounts inactive for more than this many days are flagged for removal",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_STALE_AFTER_DAYS"),
			Destination: &x.staleAfterDays,
		},
		&cli.IntFlag{
			Name:        "sso-full-level",
			Usage:       "SAML SSO permission level that counts as compliant",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_SSO_FULL_LEVEL"),
			Destination: &x.ssoFullLevel,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Number of users enriched in parallel",
			Category:    "Job",
			Sources:     cli.EnvVars("USERSREPORT_CONCURRENCY"),
			Destination: &x.concurrency,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Build the report and print a summary without storing or sending it",
			Category:    "Job",
			Destination: &x.dryRun,
		},
		&cli.StringFlag{
			Name:        "today",
			Usage:       "Report date in YYYY-MM-DD (defaults to the current date)",
			Category:    "Job",
			Destination: &x.today,
		},
	}
}

func (x Job) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
		slog.String("environment", x.environment),
		slog.String("primary_environment", x.primaryEnvironment),
		slog.String("destination", x.destination),
		slog.String("job_name", x.jobName),
		slog.Bool("dry_run", x.dryRun),
	)
}

// Configure resolves the job from the job file and the flags of c
func (x *Job) Configure(c *cli.Command) (*JobConfig, error) {
	f := &JobFile{}
	if x.configPath != "" {
		loaded, err := LoadJobFile(x.configPath)
		if err != nil {
			return nil, err
		}
		f = loaded
	}

	if c.IsSet("environment") {
		f.Environment = x.environment
	}
	if c.IsSet("primary-environment") {
		f.PrimaryEnvironment = x.primaryEnvironment
	}
	if c.IsSet("allow-non-primary") {
		f.AllowNonPrimary = x.allowNonPrimary
	}
	if c.IsSet("destination") {
		f.Destination = x.destination
	}
	if c.IsSet("recipients") {
		f.Recipients = usecase.SplitRecipients(x.recipients)
	}
	if c.IsSet("author") {
		f.Author = x.author
	}
	if c.IsSet("reply-to") {
		f.ReplyTo = x.replyTo
	}
	if c.IsSet("subject") {
		f.Subject = x.subject
	}
	if c.IsSet("job-name") {
		f.JobName = x.jobName
	}
	if c.IsSet("stale-after-days") {
		f.StaleAfterDays = x.staleAfterDays
	}
	if c.IsSet("sso-full-level") {
		f.SSOFullLevel = x.ssoFullLevel
	}
	if c.IsSet("concurrency") {
		f.Concurrency = x.concurrency
	}

	if f.JobName == "" {
		f.JobName = usecase.DefaultJobName
	}

	var today time.Time
	if x.today != "" {
		t, err := time.Parse(time.DateOnly, x.today)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidDate, "today must be YYYY-MM-DD", goerr.V("today", x.today))
		}
		today = t
	}

	return &JobConfig{
		Run: usecase.RunConfig{
			Environment:        f.Environment,
			PrimaryEnvironment: f.PrimaryEnvironment,
			AllowNonPrimary:    f.AllowNonPrimary,
			Destination:        f.Destination,
			Recipients:         f.Recipients,
			Author:             f.Author,
			ReplyTo:            f.ReplyTo,
			Subject:            f.Subject,
			JobName:            f.JobName,
			StaleAfterDays:     f.StaleAfterDays,
			DryRun:             x.dryRun,
			Today:              today,
		},
		SSOFullLevel: f.SSOFullLevel,
		Concurrency:  f.Concurrency,
	}, nil
}
