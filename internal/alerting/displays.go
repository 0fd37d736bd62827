package alerting

import (
	"sort"
	"sync"
	"time"
	"unicode/utf8"
)

// DisplayState is what a polling panel renders.
type DisplayState struct {
	Mode DisplayMode `json:"mode"`
	Text string      `json:"text"`
}

// DisplayInfo is the admin view of one display, including liveness.
type DisplayInfo struct {
	ID       string      `json:"id"`
	Mode     DisplayMode `json:"mode"`
	Text     string      `json:"text"`
	LastSeen int64       `json:"last_seen,omitempty"`
	// AgeSeconds is now minus last poll; -1 when the display has never polled.
	AgeSeconds int64 `json:"age_seconds"`
}

// DisplayRegistry tracks the desired state of every known display endpoint.
// Displays are created lazily on first dispatch or first poll and live for
// the process lifetime. The engine never pushes to a panel; panels poll,
// and that poll is the only liveness signal we have.
type DisplayRegistry struct {
	mu       sync.Mutex
	states   map[string]DisplayState
	lastSeen map[string]int64
	now      func() time.Time
}

// NewDisplayRegistry returns an empty registry.
func NewDisplayRegistry() *DisplayRegistry {
	return &DisplayRegistry{
		states:   make(map[string]DisplayState),
		lastSeen: make(map[string]int64),
		now:      time.Now,
	}
}

// State returns the render state for a display, defaulting to IDLE for
// unknown ids. As a side effect it stamps the display's last-seen time:
// this method IS the device heartbeat.
func (r *DisplayRegistry) State(id string) DisplayState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSeen[id] = r.now().Unix()
	st, ok := r.states[id]
	if !ok {
		st = DisplayState{Mode: DisplayIdle, Text: ""}
		r.states[id] = st
	}
	return st
}

// SetAlert points the given displays at the alert text.
func (r *DisplayRegistry) SetAlert(ids []string, text string) {
	text = truncate(text, MaxDisplayText)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.states[id] = DisplayState{Mode: DisplayAlert, Text: text}
	}
}

// SetMessage puts a one-off custom message on a single display. It does
// not touch alert state or history.
func (r *DisplayRegistry) SetMessage(id, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[id] = DisplayState{Mode: DisplayMessage, Text: truncate(text, MaxDisplayText)}
}

// ResetAll returns every known display to IDLE.
func (r *DisplayRegistry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.states {
		r.states[id] = DisplayState{Mode: DisplayIdle, Text: ""}
	}
}

// Snapshot lists all known displays sorted by id, with poll ages computed
// against the current clock.
func (r *DisplayRegistry) Snapshot() []DisplayInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	nowTS := r.now().Unix()
	infos := make([]DisplayInfo, 0, len(r.states))
	for id, st := range r.states {
		info := DisplayInfo{ID: id, Mode: st.Mode, Text: st.Text, AgeSeconds: -1}
		if last, ok := r.lastSeen[id]; ok {
			info.LastSeen = last
			info.AgeSeconds = nowTS - last
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// truncate cuts s to at most max bytes, backing off to a rune boundary
// so a panel is never handed a split UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
