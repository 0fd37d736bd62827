package channels

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

// ClockWiseChannel drives the bell/signage controller. Two transports are
// supported: a raw UDP datagram to the controller, or an HTTP GET against
// a URL template with {payload} and {zone} placeholders.
type ClockWiseChannel struct {
	mode       string
	addr       string
	httpURL    string
	triggers   map[string]string
	zoneSuffix map[string]string
	client     *http.Client
}

// NewClockWiseChannel creates the signage trigger channel.
func NewClockWiseChannel(cfg config.ClockWiseChannel) *ClockWiseChannel {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "udp"
	}
	return &ClockWiseChannel{
		mode:       mode,
		addr:       fmt.Sprintf("%s:%d", cfg.IP, cfg.Port),
		httpURL:    cfg.HTTPURL,
		triggers:   cfg.Triggers,
		zoneSuffix: cfg.ZoneSuffix,
		client:     &http.Client{Timeout: 3 * time.Second},
	}
}

// Name implements alerting.Notifier.
func (c *ClockWiseChannel) Name() string { return "clockwise" }

// Notify sends the mapped trigger payload for the action and zone.
func (c *ClockWiseChannel) Notify(ctx context.Context, n alerting.Notification) error {
	payload := c.payloadFor(n.Action, n.Zone)

	if c.mode == "http" {
		return c.sendHTTP(ctx, payload, n.Zone)
	}
	return c.sendUDP(ctx, payload)
}

// payloadFor maps the action through the trigger table and appends the
// zone suffix, falling back to the raw action name.
func (c *ClockWiseChannel) payloadFor(action alerting.Action, zone string) string {
	base, ok := c.triggers[string(action)]
	if !ok {
		base = string(action)
	}
	return base + c.zoneSuffix[strings.ToUpper(zone)]
}

func (c *ClockWiseChannel) sendUDP(ctx context.Context, payload string) error {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "udp", c.addr)
	if err != nil {
		return fmt.Errorf("clockwise UDP dial failed: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(payload)); err != nil {
		return fmt.Errorf("clockwise UDP send failed: %w", err)
	}
	return nil
}

func (c *ClockWiseChannel) sendHTTP(ctx context.Context, payload, zone string) error {
	if c.httpURL == "" {
		return fmt.Errorf("clockwise http mode without http_url")
	}
	url := strings.NewReplacer("{payload}", payload, "{zone}", zone).Replace(c.httpURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("clockwise trigger returned HTTP %d", resp.StatusCode)
	}
	return nil
}
