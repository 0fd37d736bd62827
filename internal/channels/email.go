package channels

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

// EmailChannel mails the district alert template to the fixed recipient
// list over SMTP, with STARTTLS or implicit TLS per config.
type EmailChannel struct {
	cfg        config.EmailChannel
	branding   config.Branding
	recipients []string
}

// NewEmailChannel creates the outbound mail channel.
func NewEmailChannel(cfg config.EmailChannel, branding config.Branding) *EmailChannel {
	// De-duplicate the recipient list once at startup.
	seen := make(map[string]bool)
	var recipients []string
	for _, r := range branding.FixedRecipients {
		if r = strings.TrimSpace(r); r != "" && !seen[r] {
			seen[r] = true
			recipients = append(recipients, r)
		}
	}
	return &EmailChannel{cfg: cfg, branding: branding, recipients: recipients}
}

// Name implements alerting.Notifier.
func (e *EmailChannel) Name() string { return "email" }

// Notify composes and sends the alert mail. The context deadline is not
// threaded into net/smtp, which has no context support; the dispatcher's
// detachment keeps a slow SMTP server from blocking activation.
func (e *EmailChannel) Notify(ctx context.Context, n alerting.Notification) error {
	if len(e.recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	subject := fmt.Sprintf("%s - Action Alert! - %s - Emergency", e.branding.ServiceName, e.branding.SiteName)
	if n.Mode == alerting.ModeDrill {
		subject += " (DRILL)"
	}

	msg := e.composeMessage(subject, n)
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, e.cfg.SMTPPort)
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.AppPassword, e.cfg.SMTPHost)

	if e.cfg.UseSSL {
		return e.sendImplicitTLS(addr, auth, msg)
	}
	return smtp.SendMail(addr, auth, e.cfg.FromAlias, e.recipients, msg)
}

// composeMessage builds a single-part HTML mail.
func (e *EmailChannel) composeMessage(subject string, n alerting.Notification) []byte {
	directive := alerting.DirectiveFor(n.Action)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", e.branding.FromDisplay, e.cfg.FromAlias)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")

	b.WriteString("<!doctype html><html><body style=\"font-family:Arial,Helvetica,sans-serif;color:#111827\">")
	fmt.Fprintf(&b, "<h2>%s</h2>", e.branding.ServiceName)
	if n.Mode == alerting.ModeDrill {
		b.WriteString("<div style=\"background:#1B32A8;color:#fff;padding:14px;text-align:center;font-weight:700\">THIS IS A DRILL!</div>")
	}
	b.WriteString("<div style=\"background:#A00000;color:#fff;padding:12px;text-align:center;font-weight:700\">New Action Alert Reported!</div>")
	b.WriteString("<table style=\"margin-top:16px\">")
	fmt.Fprintf(&b, "<tr><td style=\"color:#6B7280;padding:8px\">Site:</td><td>%s</td></tr>", e.branding.SiteName)
	fmt.Fprintf(&b, "<tr><td style=\"color:#6B7280;padding:8px\">Action:</td><td><b>%s</b></td></tr>", directive.Title)
	fmt.Fprintf(&b, "<tr><td style=\"color:#6B7280;padding:8px\">Zone:</td><td>%s</td></tr>", n.Zone)
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<div style=\"margin-top:12px\"><span style=\"background:#E00000;color:#fff;padding:6px 10px;font-weight:700\">Directive:</span> %s</div>", directive.Text)
	b.WriteString("</body></html>")

	return []byte(b.String())
}

// sendImplicitTLS handles SMTPS servers that expect TLS from byte one.
func (e *EmailChannel) sendImplicitTLS(addr string, auth smtp.Auth, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: e.cfg.SMTPHost})
	if err != nil {
		return fmt.Errorf("SMTPS dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.cfg.SMTPHost)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(e.cfg.FromAlias); err != nil {
		return err
	}
	for _, rcpt := range e.recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
