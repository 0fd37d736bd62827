package handlers

import (
	"net/http"
	"testing"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/middleware"
	"github.com/glenwood/beacon/internal/testhelpers"
)

func TestDisplayHandler_TextRegistersAndDefaultsIdle(t *testing.T) {
	engine := newTestEngine()
	h := NewDisplayHandler(engine.displays)

	var st alerting.DisplayState
	testhelpers.NewHTTPTestContext(t, "GET", "/api/display/display-9/text", nil).
		Execute(muxFor(h)).
		AssertStatus(http.StatusOK).
		DecodeJSON(&st)

	if st.Mode != alerting.DisplayIdle {
		t.Errorf("expected IDLE for a fresh display, got %s", st.Mode)
	}

	// The poll is the heartbeat: the display shows up in the admin list.
	infos := engine.displays.Snapshot()
	testhelpers.AssertSliceLen(t, infos, 1, "fleet after first poll")
	if infos[0].AgeSeconds < 0 {
		t.Error("polled display should have a non-negative age")
	}
}

func TestDisplayHandler_TextDuringAlert(t *testing.T) {
	engine := newTestEngine()
	h := NewDisplayHandler(engine.displays)

	engine.dispatcher.Activate(alerting.ModeLive, alerting.ActionLockdown, "A-WING", "office")

	var st alerting.DisplayState
	testhelpers.NewHTTPTestContext(t, "GET", "/api/display/display-3/text", nil).
		Execute(muxFor(h)).
		AssertStatus(http.StatusOK).
		DecodeJSON(&st)

	if st.Mode != alerting.DisplayAlert || st.Text != "LIVE LOCKDOWN" {
		t.Errorf("unexpected display state: %+v", st)
	}
}

func TestDisplayHandler_MessageOverride(t *testing.T) {
	engine := newTestEngine()
	h := NewDisplayHandler(engine.displays)

	testhelpers.NewHTTPTestContext(t, "POST", "/api/display/display-2/message", nil).
		WithJSONBody(map[string]string{"message": "Early dismissal 1pm"}).
		Execute(muxFor(h)).
		AssertStatus(http.StatusOK)

	st := engine.displays.State("display-2")
	testhelpers.AssertEqual(t, alerting.DisplayMessage, st.Mode, "override mode")
	testhelpers.AssertEqual(t, "Early dismissal 1pm", st.Text, "override text")
}

func TestDisplayHandler_MessageRequiresBody(t *testing.T) {
	engine := newTestEngine()
	h := NewDisplayHandler(engine.displays)

	testhelpers.NewHTTPTestContext(t, "POST", "/api/display/display-2/message", nil).
		WithJSONBody(map[string]string{}).
		Execute(muxFor(h)).
		AssertStatus(http.StatusUnprocessableEntity)
}

func TestDisplayHandler_MessageRequiresAuth(t *testing.T) {
	engine := newTestEngine()
	h := NewDisplayHandler(engine.displays)

	hash, err := middleware.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	auth := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		JWTSecret:         "test-secret",
		JWTExpiryHours:    1,
		SkipPaths:         []string{"GET /api/display/*"},
	})
	wrapped := auth.Wrap(muxFor(h))

	// Device polls stay open.
	testhelpers.NewHTTPTestContext(t, "GET", "/api/display/display-1/text", nil).
		Execute(wrapped).
		AssertStatus(http.StatusOK)

	// A tokenless message post must not reach the registry.
	testhelpers.NewHTTPTestContext(t, "POST", "/api/display/display-1/message", nil).
		WithJSONBody(map[string]string{"message": "ALL CLEAR GO HOME"}).
		Execute(wrapped).
		AssertStatus(http.StatusUnauthorized)

	if st := engine.displays.State("display-1"); st.Mode == alerting.DisplayMessage {
		t.Errorf("unauthenticated post overwrote the display: %+v", st)
	}

	token, err := auth.GenerateToken("admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	testhelpers.NewHTTPTestContext(t, "POST", "/api/display/display-1/message", nil).
		WithJSONBody(map[string]string{"message": "Early dismissal 1pm"}).
		WithBearerToken(token).
		Execute(wrapped).
		AssertStatus(http.StatusOK)
}

func TestDisplayHandler_UnknownSubpath(t *testing.T) {
	engine := newTestEngine()
	h := NewDisplayHandler(engine.displays)

	testhelpers.NewHTTPTestContext(t, "GET", "/api/display/display-2/brightness", nil).
		Execute(muxFor(h)).
		AssertStatus(http.StatusNotFound)
}

func TestAckHandler_RecordAndSummary(t *testing.T) {
	engine := newTestEngine()
	h := NewAckHandler(engine.acks)

	engine.dispatcher.Activate(alerting.ModeLive, alerting.ActionHold, "ALL", "office")

	testhelpers.NewHTTPTestContext(t, "POST", "/api/acknowledge", nil).
		WithJSONBody(map[string]string{"station": "room-101"}).
		ExecuteFunc(h.handleAcknowledge).
		AssertStatus(http.StatusOK)

	var summary alerting.AckSummary
	testhelpers.NewHTTPTestContext(t, "GET", "/api/acknowledge/summary", nil).
		ExecuteFunc(h.handleSummary).
		AssertStatus(http.StatusOK).
		DecodeJSON(&summary)

	if summary.Count != 1 || summary.Acks[0].Station != "room-101" {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestAckHandler_IdleAckStillOK(t *testing.T) {
	engine := newTestEngine()
	h := NewAckHandler(engine.acks)

	// Empty body, nothing active. Firmware still expects 200.
	testhelpers.NewHTTPTestContext(t, "POST", "/api/acknowledge", nil).
		ExecuteFunc(h.handleAcknowledge).
		AssertStatus(http.StatusOK)

	if engine.acks.Count() != 0 {
		t.Error("idle ack must not be recorded")
	}
}

// muxFor routes through SetupRoutes so path parsing is exercised.
func muxFor(h interface{ SetupRoutes(*http.ServeMux) }) *http.ServeMux {
	mux := http.NewServeMux()
	h.SetupRoutes(mux)
	return mux
}
