package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

// GotifyChannel sends a push notification to a Gotify server so staff
// phones buzz even when no campus device is in reach.
type GotifyChannel struct {
	url         string
	token       string
	serviceName string
	client      *http.Client
}

// NewGotifyChannel creates the push-notification channel.
func NewGotifyChannel(cfg config.GotifyChannel, serviceName string) *GotifyChannel {
	return &GotifyChannel{
		url:         strings.TrimRight(cfg.URL, "/") + "/message",
		token:       cfg.Token,
		serviceName: serviceName,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Name implements alerting.Notifier.
func (g *GotifyChannel) Name() string { return "gotify" }

// gotifyMessage is the Gotify /message request body.
type gotifyMessage struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Notify posts the alert with maximum priority.
func (g *GotifyChannel) Notify(ctx context.Context, n alerting.Notification) error {
	body, err := json.Marshal(gotifyMessage{
		Title:    fmt.Sprintf("%s Alert: %s", g.serviceName, n.Action),
		Message:  fmt.Sprintf("%s %s triggered by %s", n.Mode, n.Action, n.Actor),
		Priority: 10,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-Gotify-Key", g.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gotify returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
