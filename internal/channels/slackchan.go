package channels

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

// SlackChannel posts the alert into the staff Slack channel.
type SlackChannel struct {
	client  *slack.Client
	channel string
}

// NewSlackChannel creates the Slack notification channel.
func NewSlackChannel(cfg config.SlackChannel) *SlackChannel {
	return &SlackChannel{
		client:  slack.New(cfg.Token),
		channel: cfg.Channel,
	}
}

// Name implements alerting.Notifier.
func (s *SlackChannel) Name() string { return "slack" }

// Notify posts one message; the drill banner is part of the text so it
// survives notification previews.
func (s *SlackChannel) Notify(ctx context.Context, n alerting.Notification) error {
	directive := alerting.DirectiveFor(n.Action)

	text := fmt.Sprintf(":rotating_light: *%s %s* (zone %s)\n%s\n_Triggered by %s_",
		n.Mode, n.Action, n.Zone, directive.Text, n.Actor)
	if n.Mode == alerting.ModeDrill {
		text = "*THIS IS A DRILL*\n" + text
	}

	_, _, err := s.client.PostMessageContext(ctx, s.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post failed: %w", err)
	}
	return nil
}
