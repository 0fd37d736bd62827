package alerting

import (
	"sync"
	"time"
)

// Ack records one station's confirmation of a specific alert activation.
type Ack struct {
	Station string `json:"station"`
	Mode    Mode   `json:"mode"`
	Action  Action `json:"action"`
	AlertTS int64  `json:"alert_ts"`
	AckTS   int64  `json:"ack_ts"`
}

// AckSummary aggregates the acknowledgments for the current alert.
type AckSummary struct {
	Mode    Mode   `json:"mode"`
	Action  Action `json:"action"`
	AlertTS int64  `json:"alert_ts"`
	Count   int    `json:"count"`
	Acks    []Ack  `json:"acks"`
}

// AckTracker is an append-only log of station acknowledgments, cleared in
// full whenever an alert activates or resolves. Volume is bounded by the
// number of stations on campus, so summaries are a linear scan rather
// than anything indexed.
type AckTracker struct {
	mu    sync.Mutex
	log   []Ack
	state *State
	now   func() time.Time
}

// NewAckTracker returns a tracker bound to the given alert state.
func NewAckTracker(state *State) *AckTracker {
	return &AckTracker{state: state, now: time.Now}
}

// Record appends an acknowledgment stamped with the current alert's
// identity tuple. Acknowledging when nothing is active is a silent no-op,
// not an error. A missing station name is recorded as "unknown".
func (t *AckTracker) Record(station string) {
	cur := t.state.Snapshot()
	if !cur.Active() {
		return
	}
	if station == "" {
		station = "unknown"
	}
	mode, action, alertTS := cur.Identity()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = append(t.log, Ack{
		Station: station,
		Mode:    mode,
		Action:  action,
		AlertTS: alertTS,
		AckTS:   t.now().Unix(),
	})
}

// Summarize filters the log to entries matching the current alert's
// identity tuple exactly. Acks from a superseded alert never leak into a
// new one, even when mode and action repeat, because the activation
// timestamp differs.
func (t *AckTracker) Summarize() AckSummary {
	cur := t.state.Snapshot()
	mode, action, alertTS := cur.Identity()

	t.mu.Lock()
	defer t.mu.Unlock()
	matched := []Ack{}
	for _, a := range t.log {
		if a.Mode == mode && a.Action == action && a.AlertTS == alertTS {
			matched = append(matched, a)
		}
	}
	return AckSummary{
		Mode:    mode,
		Action:  action,
		AlertTS: alertTS,
		Count:   len(matched),
		Acks:    matched,
	}
}

// Count returns the number of acknowledgments for the current alert.
func (t *AckTracker) Count() int {
	return len(t.Summarize().Acks)
}

// Clear drops the whole log.
func (t *AckTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = nil
}
