package channels

import (
	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

// Build constructs every channel the campus config enables, in dispatch
// order. The feed channel is always on: it is in-process state, has no
// failure mode, and the RSS endpoints serve from it.
func Build(campus *config.Campus, feed *FeedState) []alerting.Notifier {
	notifiers := []alerting.Notifier{NewFeedChannel(feed)}

	if campus.Cisco.Enabled {
		notifiers = append(notifiers, NewCiscoChannel(campus.Cisco, campus.Branding.PublicURL))
	}
	if campus.Asterisk.Enabled {
		notifiers = append(notifiers, NewAsteriskChannel(campus.Asterisk))
	}
	if campus.Gotify.Enabled {
		notifiers = append(notifiers, NewGotifyChannel(campus.Gotify, campus.Branding.ServiceName))
	}
	if campus.ClockWise.Enabled {
		notifiers = append(notifiers, NewClockWiseChannel(campus.ClockWise))
	}
	if campus.Email.Enabled {
		notifiers = append(notifiers, NewEmailChannel(campus.Email, campus.Branding))
	}
	if campus.Slack.Enabled {
		notifiers = append(notifiers, NewSlackChannel(campus.Slack))
	}

	return notifiers
}
