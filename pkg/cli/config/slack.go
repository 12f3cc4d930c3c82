package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for posting the report summary)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("USERSREPORT_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID the report summary is posted to",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("USERSREPORT_SLACK_CHANNEL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channelID),
	)
}

// IsConfigured checks if Slack configuration is complete
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// Configure creates the Slack notifier, or nil when Slack is not configured
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if x.botToken == "" && x.channelID == "" {
		return nil, nil
	}
	if x.botToken == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "slack-bot-token is required with slack-channel",
			goerr.V(FlagKey, "slack-bot-token"))
	}
	if x.channelID == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "slack-channel is required with slack-bot-token",
			goerr.V(FlagKey, "slack-channel"))
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Slack service")
	}
	return slack.NewNotifier(svc, x.channelID), nil
}
