package channels

import (
	"context"
	"log"
	"sync"

	"github.com/glenwood/beacon/internal/alerting"
)

// FeedState holds the per-action RSS token. Signage controllers poll the
// action feeds and treat a token change as the trigger, so "sending" on
// this channel is just bumping the token for the fired action.
type FeedState struct {
	mu     sync.Mutex
	tokens map[alerting.Action]int
}

// NewFeedState initializes a token for every allowed action.
func NewFeedState(actions []alerting.Action) *FeedState {
	tokens := make(map[alerting.Action]int, len(actions))
	for _, a := range actions {
		tokens[alerting.NormalizeAction(string(a))] = 0
	}
	return &FeedState{tokens: tokens}
}

// Token returns the current token for an action and whether the action
// has a feed at all.
func (f *FeedState) Token(action alerting.Action) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[alerting.NormalizeAction(string(action))]
	return tok, ok
}

// Bump advances the token for an action, wrapping at 10000.
func (f *FeedState) Bump(action alerting.Action) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := alerting.NormalizeAction(string(action))
	f.tokens[a] = (f.tokens[a] + 1) % 10000
	return f.tokens[a]
}

// FeedChannel is the notifier facade over FeedState.
type FeedChannel struct {
	state *FeedState
}

// NewFeedChannel creates the RSS token channel.
func NewFeedChannel(state *FeedState) *FeedChannel {
	return &FeedChannel{state: state}
}

// Name implements alerting.Notifier.
func (f *FeedChannel) Name() string { return "rss" }

// Notify bumps the fired action's feed token. It cannot fail.
func (f *FeedChannel) Notify(ctx context.Context, n alerting.Notification) error {
	tok := f.state.Bump(n.Action)
	log.Printf("FeedChannel: %s token -> %d", n.Action, tok)
	return nil
}

// ensure interface compliance for every channel in the package
var (
	_ alerting.Notifier = (*CiscoChannel)(nil)
	_ alerting.Notifier = (*AsteriskChannel)(nil)
	_ alerting.Notifier = (*GotifyChannel)(nil)
	_ alerting.Notifier = (*ClockWiseChannel)(nil)
	_ alerting.Notifier = (*EmailChannel)(nil)
	_ alerting.Notifier = (*SlackChannel)(nil)
	_ alerting.Notifier = (*FeedChannel)(nil)
)
