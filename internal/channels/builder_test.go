package channels

import (
	"testing"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

func TestBuild_FeedAlwaysPresent(t *testing.T) {
	campus := config.DefaultCampus()
	feed := NewFeedState([]alerting.Action{alerting.ActionHold})

	notifiers := Build(campus, feed)
	if len(notifiers) != 1 {
		t.Fatalf("expected only the feed channel by default, got %d", len(notifiers))
	}
	if notifiers[0].Name() != "rss" {
		t.Errorf("expected rss channel, got %s", notifiers[0].Name())
	}
}

func TestBuild_EnabledChannels(t *testing.T) {
	campus := config.DefaultCampus()
	campus.Gotify = config.GotifyChannel{Enabled: true, URL: "http://gotify.local", Token: "t"}
	campus.Slack = config.SlackChannel{Enabled: true, Token: "xoxb-1", Channel: "#alerts"}
	campus.ClockWise.Enabled = true

	feed := NewFeedState([]alerting.Action{alerting.ActionHold})
	notifiers := Build(campus, feed)

	names := make(map[string]bool)
	for _, n := range notifiers {
		names[n.Name()] = true
	}

	for _, want := range []string{"rss", "gotify", "slack", "clockwise"} {
		if !names[want] {
			t.Errorf("expected channel %s to be built, have %v", want, names)
		}
	}
	if names["cisco"] || names["email"] || names["pbx"] {
		t.Errorf("disabled channels must not be built, have %v", names)
	}
}
