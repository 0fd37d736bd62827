package channels

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

// AsteriskChannel pages the campus overhead speakers by originating a
// call to the PBX page extension over the Asterisk Manager Interface.
type AsteriskChannel struct {
	host          string
	port          int
	username      string
	secret        string
	pageExtension string
}

// NewAsteriskChannel creates the PBX page channel.
func NewAsteriskChannel(cfg config.AsteriskChannel) *AsteriskChannel {
	return &AsteriskChannel{
		host:          cfg.AMIHost,
		port:          cfg.AMIPort,
		username:      cfg.AMIUsername,
		secret:        cfg.AMISecret,
		pageExtension: cfg.PageExtension,
	}
}

// Name implements alerting.Notifier.
func (a *AsteriskChannel) Name() string { return "pbx" }

// Notify logs in to AMI, originates the page call async, and logs off.
// The page audio itself is PBX-side; the action does not vary the call.
func (a *AsteriskChannel) Notify(ctx context.Context, n alerting.Notification) error {
	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", a.host, a.port))
	if err != nil {
		return fmt.Errorf("AMI connect failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	send := func(lines ...string) error {
		for _, ln := range lines {
			if _, err := fmt.Fprintf(conn, "%s\r\n", ln); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(conn, "\r\n")
		return err
	}
	drain := func() {
		buf := make([]byte, 4096)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _ = conn.Read(buf)
	}

	if err := send(
		"Action: Login",
		"Username: "+a.username,
		"Secret: "+a.secret,
	); err != nil {
		return fmt.Errorf("AMI login failed: %w", err)
	}
	drain()

	if err := send(
		"Action: Originate",
		fmt.Sprintf("Channel: Local/%s@from-internal", a.pageExtension),
		"Context: from-internal",
		"Exten: "+a.pageExtension,
		"Priority: 1",
		"Async: true",
	); err != nil {
		return fmt.Errorf("AMI originate failed: %w", err)
	}
	drain()

	_ = send("Action: Logoff")
	return nil
}
