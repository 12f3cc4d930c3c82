package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/service/mail"
	"github.com/urfave/cli/v3"
)

// Mail holds CLI flags for the SMTP notifier
type Mail struct {
	host               string
	port               int
	username           string
	password           string
	tls                bool
	startTLS           bool
	insecureSkipVerify bool
	from               string
}

// Flags returns CLI flags for mail configuration
func (x *Mail) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "smtp-host",
			Usage:       "SMTP relay host (mail is not sent when empty)",
			Category:    "Mail",
			Sources:     cli.EnvVars("USERSREPORT_SMTP_HOST"),
			Destination: &x.host,
		},
		&cli.IntFlag{
			Name:        "smtp-port",
			Usage:       "SMTP relay port",
			Category:    "Mail",
			Value:       mail.DefaultPort,
			Sources:     cli.EnvVars("USERSREPORT_SMTP_PORT"),
			Destination: &x.port,
		},
		&cli.StringFlag{
			Name:        "smtp-username",
			Usage:       "SMTP username",
			Category:    "Mail",
			Sources:     cli.EnvVars("USERSREPORT_SMTP_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "smtp-password",
			Usage:       "SMTP password",
			Category:    "Mail",
			Sources:     cli.EnvVars("USERSREPORT_SMTP_PASSWORD"),
			Destination: &x.password,
		},
		&cli.BoolFlag{
			Name:        "smtp-tls",
			Usage:       "Connect with implicit TLS",
			Category:    "Mail",
			Sources:     cli.EnvVars("USERSREPORT_SMTP_TLS"),
			Destination: &x.tls,
		},
		&cli.BoolFlag{
			Name:        "smtp-starttls",
			Usage:       "Upgrade the connection with STARTTLS when offered",
			Category:    "Mail",
			Value:       true,
			Sources:     cli.EnvVars("USERSREPORT_SMTP_STARTTLS"),
			Destination: &x.startTLS,
		},
		&cli.BoolFlag{
			Name:        "smtp-insecure-skip-verify",
			Usage:       "Skip TLS certificate verification (development only)",
			Category:    "Mail",
			Sources:     cli.EnvVars("USERSREPORT_SMTP_INSECURE_SKIP_VERIFY"),
			Destination: &x.insecureSkipVerify,
		},
		&cli.StringFlag{
			Name:        "mail-from",
			Usage:       "Sender address used when the job has no author",
			Category:    "Mail",
			Sources:     cli.EnvVars("USERSREPORT_MAIL_FROM"),
			Destination: &x.from,
		},
	}
}

func (x Mail) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", x.host),
		slog.Int("port", x.port),
		slog.String("username", x.username),
		slog.Int("password.len", len(x.password)),
		slog.Bool("tls", x.tls),
		slog.Bool("starttls", x.startTLS),
		slog.String("from", x.from),
	)
}

// IsConfigured reports whether an SMTP relay is set
func (x *Mail) IsConfigured() bool {
	return x.host != ""
}

// Configure creates the mail notifier, or nil when no relay is set
func (x *Mail) Configure() (interfaces.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.password != "" && x.username == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "smtp-username is required with smtp-password",
			goerr.V(FlagKey, "smtp-username"))
	}

	n, err := mail.New(mail.Config{
		Host:               x.host,
		Port:               x.port,
		Username:           x.username,
		Password:           x.password,
		TLS:                x.tls,
		StartTLS:           x.startTLS,
		InsecureSkipVerify: x.insecureSkipVerify,
		From:               x.from,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize mail notifier")
	}
	return n, nil
}
