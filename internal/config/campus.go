package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Campus is the typed form of the campus YAML file: branding, the action
// allow-list, zone-to-display mappings, and per-channel settings. It is
// loaded once at startup; editing it requires a restart.
type Campus struct {
	Branding  Branding            `yaml:"branding"`
	Actions   []string            `yaml:"actions"`
	Zones     map[string]Zone     `yaml:"zones"`
	Cisco     CiscoChannel        `yaml:"cisco"`
	Asterisk  AsteriskChannel     `yaml:"asterisk"`
	Gotify    GotifyChannel       `yaml:"gotify"`
	ClockWise ClockWiseChannel    `yaml:"clockwise"`
	Email     EmailChannel        `yaml:"email"`
	Slack     SlackChannel        `yaml:"slack"`
}

// Branding names the site in outbound notifications and feeds.
type Branding struct {
	ServiceName     string   `yaml:"service_name"`
	SiteName        string   `yaml:"site_name"`
	PublicURL       string   `yaml:"public_url"`
	FromDisplay     string   `yaml:"from_display"`
	FixedRecipients []string `yaml:"fixed_recipients"`
}

// Zone lists the display endpoints an alert in that zone targets.
type Zone struct {
	Displays []string `yaml:"displays"`
}

// CiscoChannel configures the IP-phone push channel.
type CiscoChannel struct {
	Enabled  bool     `yaml:"enabled"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Phones   []string `yaml:"phones"`
}

// AsteriskChannel configures the PBX overhead-page channel.
type AsteriskChannel struct {
	Enabled       bool   `yaml:"enabled"`
	AMIHost       string `yaml:"ami_host"`
	AMIPort       int    `yaml:"ami_port"`
	AMIUsername   string `yaml:"ami_username"`
	AMISecret     string `yaml:"ami_secret"`
	PageExtension string `yaml:"page_extension"`
}

// GotifyChannel configures the push-notification channel.
type GotifyChannel struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
}

// ClockWiseChannel configures the bell/signage trigger channel.
// Mode "udp" sends a datagram to IP:Port; mode "http" GETs the URL
// template, which may use {payload} and {zone}.
type ClockWiseChannel struct {
	Enabled    bool              `yaml:"enabled"`
	Mode       string            `yaml:"mode"`
	IP         string            `yaml:"ip"`
	Port       int               `yaml:"port"`
	HTTPURL    string            `yaml:"http_url"`
	Triggers   map[string]string `yaml:"triggers"`
	ZoneSuffix map[string]string `yaml:"zone_suffix"`
}

// EmailChannel configures SMTP alert mail.
type EmailChannel struct {
	Enabled     bool   `yaml:"enabled"`
	SMTPHost    string `yaml:"smtp_host"`
	SMTPPort    int    `yaml:"smtp_port"`
	Username    string `yaml:"username"`
	AppPassword string `yaml:"app_password"`
	UseTLS      bool   `yaml:"use_tls"`
	UseSSL      bool   `yaml:"use_ssl"`
	FromAlias   string `yaml:"from_alias"`
}

// SlackChannel configures the staff Slack notification channel.
type SlackChannel struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// DefaultCampus returns a Campus with the documented defaults applied.
func DefaultCampus() *Campus {
	return &Campus{
		Branding: Branding{
			ServiceName: "Beacon EMS",
			SiteName:    "Glenwood Academy",
			PublicURL:   "http://localhost:3000",
			FromDisplay: "District Alerts",
		},
		Actions: []string{"HOLD", "SECURE", "SHELTER", "EVACUATE", "LOCKDOWN"},
		Zones:   map[string]Zone{},
		ClockWise: ClockWiseChannel{
			Mode: "udp",
			Port: 8090,
		},
		Asterisk: AsteriskChannel{
			AMIPort: 5038,
		},
		Email: EmailChannel{
			SMTPPort: 587,
			UseTLS:   true,
		},
	}
}

// LoadCampus reads and validates the campus YAML file. A missing file is
// not an error: the service runs with defaults and no channels enabled.
func LoadCampus(path string) (*Campus, error) {
	campus := DefaultCampus()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return campus, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read campus config: %w", err)
	}

	if err := yaml.Unmarshal(data, campus); err != nil {
		return nil, fmt.Errorf("failed to parse campus config: %w", err)
	}

	if err := campus.validate(); err != nil {
		return nil, err
	}
	campus.normalize()
	return campus, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Campus) validate() error {
	if len(c.Actions) == 0 {
		return fmt.Errorf("campus config: actions list is empty")
	}
	switch strings.ToLower(c.ClockWise.Mode) {
	case "", "udp", "http":
	default:
		return fmt.Errorf("campus config: clockwise mode must be udp or http, got %q", c.ClockWise.Mode)
	}
	if c.Email.Enabled && c.Email.SMTPHost == "" {
		return fmt.Errorf("campus config: email enabled but smtp_host is empty")
	}
	if c.Gotify.Enabled && (c.Gotify.URL == "" || c.Gotify.Token == "") {
		return fmt.Errorf("campus config: gotify enabled but url or token is empty")
	}
	if c.Slack.Enabled && (c.Slack.Token == "" || c.Slack.Channel == "") {
		return fmt.Errorf("campus config: slack enabled but token or channel is empty")
	}
	return nil
}

// normalize upper-cases action names and zone tags so lookups match the
// engine's normalized inputs.
func (c *Campus) normalize() {
	for i, a := range c.Actions {
		c.Actions[i] = strings.ToUpper(strings.TrimSpace(a))
	}
	zones := make(map[string]Zone, len(c.Zones))
	for tag, z := range c.Zones {
		zones[strings.ToUpper(strings.TrimSpace(tag))] = z
	}
	c.Zones = zones
}

// ZoneDisplays flattens the zone map for the dispatcher.
func (c *Campus) ZoneDisplays() map[string][]string {
	out := make(map[string][]string, len(c.Zones))
	for tag, z := range c.Zones {
		out[tag] = z.Displays
	}
	return out
}
