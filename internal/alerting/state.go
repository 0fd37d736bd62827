package alerting

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is a value copy of the current alert, safe to hand to callers
// and JSON encoders without further locking.
type Snapshot struct {
	ID        *uint  `json:"id"`
	Mode      Mode   `json:"mode"`
	Action    Action `json:"action"`
	Text      string `json:"text"`
	Zone      string `json:"zone"`
	Timestamp int64  `json:"timestamp"`
}

// Active reports whether the snapshot describes a live or drill alert.
func (s Snapshot) Active() bool {
	return s.Mode != ModeIdle && s.Timestamp != 0
}

// Identity returns the tuple that binds acknowledgments to one activation.
// The persisted id cannot serve here: it may still be unknown when the
// first acks arrive.
func (s Snapshot) Identity() (Mode, Action, int64) {
	return s.Mode, s.Action, s.Timestamp
}

// State holds the single currently-active alert (or the IDLE sentinel).
// All mutation replaces the record wholesale under the lock, so readers
// never observe a half-updated alert.
type State struct {
	mu  sync.RWMutex
	cur Snapshot
	now func() time.Time
}

// NewState returns a State in the IDLE position.
func NewState() *State {
	return &State{
		cur: Snapshot{Mode: ModeIdle, Zone: DefaultZone},
		now: time.Now,
	}
}

// Snapshot returns a copy of the current alert.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Activate replaces the current alert. The persisted id starts nil and is
// back-filled once the history insert succeeds. Returns the new snapshot.
func (s *State) Activate(mode Mode, action Action, zone string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Snapshot{
		ID:        nil,
		Mode:      mode,
		Action:    action,
		Text:      fmt.Sprintf("%s %s", mode, action),
		Zone:      zone,
		Timestamp: s.now().Unix(),
	}
	return s.cur
}

// SetID back-fills the persisted history id, but only while the given
// activation timestamp still matches. A concurrent activation wins.
func (s *State) SetID(id uint, activatedAt int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur.Timestamp != activatedAt {
		return
	}
	s.cur.ID = &id
}

// Reset returns the state to the IDLE sentinel and reports the snapshot
// that was superseded.
func (s *State) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur
	s.cur = Snapshot{
		Mode:      ModeIdle,
		Action:    "",
		Text:      "",
		Zone:      DefaultZone,
		Timestamp: s.now().Unix(),
	}
	return prev
}
