package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/service/slack"
	"github.com/secmon-lab/cyberportal/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// DefaultDigestInterval is the default interval between digest posts
const DefaultDigestInterval = time.Hour

type Slack struct {
	botToken       string
	channelID      string
	digestInterval time.Duration
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for incident notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("CYBERPORTAL_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID that receives incident notifications and digests",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("CYBERPORTAL_SLACK_CHANNEL_ID"),
		},
		&cli.DurationFlag{
			Name:        "slack-digest-interval",
			Usage:       "Interval between dashboard digest posts (0 disables the digest)",
			Category:    "Slack",
			Value:       DefaultDigestInterval,
			Destination: &x.digestInterval,
			Sources:     cli.EnvVars("CYBERPORTAL_SLACK_DIGEST_INTERVAL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
		slog.Duration("digest-interval", x.digestInterval),
	)
}

// IsConfigured checks if both the bot token and the channel are set
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// ChannelID returns the notification channel
func (x *Slack) ChannelID() string {
	return x.channelID
}

// DigestInterval returns the digest interval
func (x *Slack) DigestInterval() time.Duration {
	return x.digestInterval
}

// Configure creates the Slack service. It returns nil without error when
// Slack is not configured, which disables notifications.
func (x *Slack) Configure(ctx context.Context) (slack.Service, error) {
	if x.botToken == "" && x.channelID == "" {
		logging.From(ctx).Info("Slack notification is disabled")
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.Wrap(ErrInvalidConfig, "both --slack-bot-token and --slack-channel-id are required for Slack notification")
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack service")
	}

	if name, err := svc.GetChannelName(ctx, x.channelID); err != nil {
		logging.From(ctx).Warn("failed to resolve Slack channel name", "channel_id", x.channelID, "error", err)
	} else {
		logging.From(ctx).Info("Slack notification is enabled", "channel", name)
	}

	return svc, nil
}
