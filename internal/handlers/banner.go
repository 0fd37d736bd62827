package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/glenwood/beacon/internal/alerting"
)

// BannerEvent is the payload pushed to dashboard banners on every alert
// lifecycle change.
type BannerEvent struct {
	Mode   alerting.Mode   `json:"mode"`
	Action alerting.Action `json:"action"`
	Text   string          `json:"text"`
	Zone   string          `json:"zone"`
	TS     int64           `json:"ts"`
}

// BannerHub fans alert lifecycle events out to connected dashboard
// websockets. It is push-only: client frames are read and discarded just
// to notice disconnects. A slow client is dropped rather than allowed to
// stall the broadcast.
type BannerHub struct {
	upgrader websocket.Upgrader
	state    *alerting.State

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	// writeMu serializes frame writes; gorilla connections do not allow
	// concurrent writers.
	writeMu sync.Mutex
}

// NewBannerHub creates a new banner hub.
func NewBannerHub(state *alerting.State) *BannerHub {
	return &BannerHub{
		upgrader: websocket.Upgrader{
			// Dashboards are served from arbitrary kiosk origins.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		state:   state,
		clients: make(map[*websocket.Conn]bool),
	}
}

// SetupRoutes configures the websocket route.
func (h *BannerHub) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/banner", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and registers the client. The
// current state is pushed immediately so a late-joining dashboard shows
// an in-progress alert without waiting for the next transition.
func (h *BannerHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("BannerHub: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("BannerHub: client connected from %s (%d total)", r.RemoteAddr, count)

	h.send(conn, eventFromSnapshot(h.state.Snapshot()))

	// Read loop exists only to detect disconnects.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast implements alerting.Broadcaster.
func (h *BannerHub) Broadcast(snap alerting.Snapshot) {
	event := eventFromSnapshot(snap)

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.send(conn, event)
	}
}

// send writes one event with a deadline; failure drops the client.
func (h *BannerHub) send(conn *websocket.Conn, event BannerEvent) {
	h.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	err := conn.WriteJSON(event)
	h.writeMu.Unlock()
	if err != nil {
		h.drop(conn)
	}
}

// drop closes and unregisters a client. Safe to call more than once.
func (h *BannerHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if !h.clients[conn] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()

	conn.Close()
	log.Printf("BannerHub: client disconnected (%d remaining)", count)
}

func eventFromSnapshot(snap alerting.Snapshot) BannerEvent {
	return BannerEvent{
		Mode:   snap.Mode,
		Action: snap.Action,
		Text:   snap.Text,
		Zone:   snap.Zone,
		TS:     snap.Timestamp,
	}
}
