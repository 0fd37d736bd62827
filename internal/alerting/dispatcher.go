package alerting

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/glenwood/beacon/internal/metrics"
)

// HistoryStore is the durable record of every alert instance ever fired.
// Persistence is best-effort: the live alert lifecycle never depends on a
// write succeeding.
type HistoryStore interface {
	// CreateAlertRecord appends a new open history row and returns its id.
	CreateAlertRecord(snap Snapshot, actor string) (uint, error)

	// ResolveAlertRecord closes a history row.
	ResolveAlertRecord(id uint, resolvedBy string, totalAcks int) error

	// SetAlertRecordAcks updates the frozen ack tally on a row that was
	// superseded without being resolved.
	SetAlertRecordAcks(id uint, totalAcks int) error
}

// Broadcaster receives alert lifecycle events for live dashboards.
type Broadcaster interface {
	Broadcast(snap Snapshot)
}

// fallbackDisplays guarantees every activation renders somewhere even
// with an empty zone configuration.
var fallbackDisplays = []string{"display-1", "display-2"}

// Dispatcher is the orchestrator: it validates a trigger, fans it out to
// every channel concurrently, and updates the shared engine state.
type Dispatcher struct {
	state    *State
	displays *DisplayRegistry
	acks     *AckTracker
	history  HistoryStore

	notifiers []Notifier
	banner    Broadcaster

	allowed map[Action]bool
	zones   map[string][]string

	// channelTimeout bounds each detached channel send.
	channelTimeout time.Duration
}

// Config wires a Dispatcher.
type Config struct {
	State    *State
	Displays *DisplayRegistry
	Acks     *AckTracker
	History  HistoryStore

	// AllowedActions is the action allow-list; empty means DefaultActions.
	AllowedActions []Action

	// Zones maps a zone tag to its display ids. The "ALL" entry doubles
	// as the fallback for unknown zones.
	Zones map[string][]string

	// ChannelTimeout bounds each channel send; zero means 10s.
	ChannelTimeout time.Duration
}

// NewDispatcher creates a Dispatcher. Channels are registered afterwards
// with RegisterNotifier.
func NewDispatcher(cfg Config) *Dispatcher {
	actions := cfg.AllowedActions
	if len(actions) == 0 {
		actions = DefaultActions
	}
	allowed := make(map[Action]bool, len(actions))
	for _, a := range actions {
		allowed[NormalizeAction(string(a))] = true
	}

	timeout := cfg.ChannelTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Dispatcher{
		state:          cfg.State,
		displays:       cfg.Displays,
		acks:           cfg.Acks,
		history:        cfg.History,
		allowed:        allowed,
		zones:          cfg.Zones,
		channelTimeout: timeout,
	}
}

// RegisterNotifier adds a notification channel.
func (d *Dispatcher) RegisterNotifier(n Notifier) {
	d.notifiers = append(d.notifiers, n)
	log.Printf("Dispatcher: registered channel %q", n.Name())
}

// SetBroadcaster attaches a dashboard broadcaster. Optional.
func (d *Dispatcher) SetBroadcaster(b Broadcaster) {
	d.banner = b
}

// Activate fires an alert: validate, fan out, update state, persist.
//
// Channel sends are detached and mutually isolated; a hung or failing
// channel never delays or fails the activation. The returned snapshot
// reflects in-memory state only, so a history insert failure still
// yields a successful activation with a nil id.
func (d *Dispatcher) Activate(mode Mode, action Action, zone, actor string) (Snapshot, error) {
	action = NormalizeAction(string(action))
	mode = NormalizeMode(string(mode))
	zone = NormalizeZone(zone)

	if !d.allowed[action] {
		return Snapshot{}, fmt.Errorf("invalid action %q", action)
	}

	// Freeze the superseded alert's ack tally into its history row before
	// the tracker is cleared. The original resolve path is the only other
	// writer of this column.
	if prev := d.state.Snapshot(); prev.Active() && prev.ID != nil {
		if err := d.history.SetAlertRecordAcks(*prev.ID, d.acks.Count()); err != nil {
			log.Printf("Dispatcher: failed to freeze ack count for superseded alert %d: %v", *prev.ID, err)
		}
	}

	// Clear before the identity switch: an ack racing the activation can
	// then only carry the outgoing identity, which Summarize filters out.
	// Clearing after would wipe acks already stamped for the new alert.
	d.acks.Clear()

	snap := d.state.Activate(mode, action, zone)

	n := Notification{
		Mode:   mode,
		Action: action,
		Zone:   zone,
		Actor:  actor,
		Text:   snap.Text,
	}
	for _, notifier := range d.notifiers {
		d.fireAndForget(notifier, n)
	}

	d.displays.SetAlert(d.resolveDisplays(zone), snap.Text)

	if d.banner != nil {
		d.banner.Broadcast(snap)
	}
	metrics.AlertActivations.WithLabelValues(string(mode), string(action)).Inc()

	if id, err := d.history.CreateAlertRecord(snap, actor); err != nil {
		log.Printf("Dispatcher: history insert failed (activation continues): %v", err)
	} else {
		d.state.SetID(id, snap.Timestamp)
		snap.ID = &id
	}

	log.Printf("Dispatcher: activated %s by %s (zone %s, %d channels)", snap.Text, actor, zone, len(d.notifiers))
	return snap, nil
}

// Resolve closes out the current alert. Calling it while idle is a no-op.
// Already-sent notifications are not retracted; there is no way to.
func (d *Dispatcher) Resolve(actor string) {
	cur := d.state.Snapshot()
	if !cur.Active() {
		return
	}

	if cur.ID != nil {
		if err := d.history.ResolveAlertRecord(*cur.ID, actor, d.acks.Count()); err != nil {
			log.Printf("Dispatcher: history resolve update failed: %v", err)
		}
	}

	d.state.Reset()
	d.displays.ResetAll()
	d.acks.Clear()

	if d.banner != nil {
		d.banner.Broadcast(d.state.Snapshot())
	}
	log.Printf("Dispatcher: alert %s resolved by %s", cur.Text, actor)
}

// resolveDisplays picks the target displays for a zone: the zone's own
// list, then the ALL list, then the hard-coded fallback pair.
func (d *Dispatcher) resolveDisplays(zone string) []string {
	if ids := d.zones[zone]; len(ids) > 0 {
		return ids
	}
	if ids := d.zones[DefaultZone]; len(ids) > 0 {
		return ids
	}
	return fallbackDisplays
}

// fireAndForget launches one detached channel send with its own timeout.
// Failures are logged and counted, never propagated.
func (d *Dispatcher) fireAndForget(notifier Notifier, n Notification) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Dispatcher: channel %q panicked: %v", notifier.Name(), r)
				metrics.ChannelFailures.WithLabelValues(notifier.Name()).Inc()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.channelTimeout)
		defer cancel()

		if err := notifier.Notify(ctx, n); err != nil {
			log.Printf("Dispatcher: channel %q failed: %v", notifier.Name(), err)
			metrics.ChannelFailures.WithLabelValues(notifier.Name()).Inc()
		}
	}()
}
