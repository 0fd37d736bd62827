// Package channels implements the concrete notification channels consumed
// by the dispatch engine. Every channel satisfies alerting.Notifier and is
// constructed from its block of the campus config; a disabled channel is
// simply never built.
package channels

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/config"
)

// maxPhoneWorkers bounds concurrent pushes to the phone fleet.
const maxPhoneWorkers = 8

// CiscoChannel pushes a CiscoIPPhoneExecute payload to every configured
// IP phone, which makes the handset play a tone and load the alert page
// served at {public_url}/xml/{action}.
type CiscoChannel struct {
	username  string
	password  string
	phones    []string
	publicURL string
	client    *http.Client
}

// NewCiscoChannel creates the phone-push channel.
func NewCiscoChannel(cfg config.CiscoChannel, publicURL string) *CiscoChannel {
	return &CiscoChannel{
		username:  cfg.Username,
		password:  cfg.Password,
		phones:    cfg.Phones,
		publicURL: strings.TrimRight(publicURL, "/"),
		client:    &http.Client{Timeout: 7 * time.Second},
	}
}

// Name implements alerting.Notifier.
func (c *CiscoChannel) Name() string { return "cisco" }

// Notify pushes the alert page to every phone concurrently. Individual
// phone failures are logged and do not fail the channel unless every
// phone fails.
func (c *CiscoChannel) Notify(ctx context.Context, n alerting.Notification) error {
	if len(c.phones) == 0 {
		return fmt.Errorf("no phones configured")
	}

	pageURL := fmt.Sprintf("%s/xml/%s", c.publicURL, strings.ToLower(string(n.Action)))
	executeXML := "<CiscoIPPhoneExecute>\n" +
		"  <ExecuteItem URL=\"Play:tone.raw\"/>\n" +
		fmt.Sprintf("  <ExecuteItem URL=%q/>\n", pageURL) +
		"</CiscoIPPhoneExecute>"

	sem := make(chan struct{}, maxPhoneWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, ip := range c.phones {
		wg.Add(1)
		sem <- struct{}{}
		go func(ip string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := c.pushPhone(ctx, ip, executeXML); err != nil {
				log.Printf("CiscoChannel: push failed for %s: %v", ip, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(ip)
	}
	wg.Wait()

	if failed == len(c.phones) {
		return fmt.Errorf("all %d phones failed", failed)
	}
	return nil
}

// pushPhone posts the execute payload to one handset's CGI endpoint.
func (c *CiscoChannel) pushPhone(ctx context.Context, ip, executeXML string) error {
	form := url.Values{"XML": {executeXML}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("http://%s/CGI/Execute", ip), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}
