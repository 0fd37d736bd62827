package alerting

import "strings"

// Mode classifies an alert as an exercise or a real event.
type Mode string

const (
	ModeDrill Mode = "DRILL"
	ModeLive  Mode = "LIVE"
	ModeIdle  Mode = "IDLE"
)

// Action is the protective directive being broadcast (e.g. LOCKDOWN).
type Action string

// Standard actions recognized out of the box. The active allow-list is
// configurable; these are the defaults.
const (
	ActionHold     Action = "HOLD"
	ActionSecure   Action = "SECURE"
	ActionShelter  Action = "SHELTER"
	ActionEvacuate Action = "EVACUATE"
	ActionLockdown Action = "LOCKDOWN"
)

// DefaultActions is the default action allow-list.
var DefaultActions = []Action{ActionHold, ActionSecure, ActionShelter, ActionEvacuate, ActionLockdown}

// DefaultZone is used when a trigger does not specify a zone.
const DefaultZone = "ALL"

// ActorScheduler identifies activations originated by the drill scheduler.
const ActorScheduler = "SCHEDULER"

// NormalizeMode upper-cases a mode string, defaulting to DRILL.
func NormalizeMode(s string) Mode {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ModeDrill
	}
	return Mode(s)
}

// NormalizeAction upper-cases and trims an action string.
func NormalizeAction(s string) Action {
	return Action(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeZone upper-cases a zone tag, defaulting to ALL.
func NormalizeZone(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultZone
	}
	return s
}

// DisplayMode is the rendering state of a physical display.
type DisplayMode string

const (
	DisplayIdle    DisplayMode = "IDLE"
	DisplayAlert   DisplayMode = "ALERT"
	DisplayMessage DisplayMode = "MESSAGE"
)

// MaxDisplayText bounds the rendering payload pushed to LED panels.
const MaxDisplayText = 64
