package handlers

import (
	"net/http"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/database"
	"github.com/glenwood/beacon/internal/testhelpers"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&database.AlertRecord{},
		&database.ScheduledDrill{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newDrillHandler(t *testing.T) (*DrillHandler, *database.DrillStore) {
	store := database.NewDrillStore(setupTestDB(t))
	h := NewDrillHandler(store, alerting.DefaultActions)
	return h, store
}

func TestDrillHandler_CreateWithRFC3339(t *testing.T) {
	h, store := newDrillHandler(t)

	runAt := time.Now().Add(time.Hour).UTC()
	var created database.ScheduledDrill
	testhelpers.NewHTTPTestContext(t, "POST", "/api/drills", nil).
		WithJSONBody(map[string]interface{}{
			"label":  "Monthly lockdown drill",
			"action": "lockdown",
			"zone":   "a-wing",
			"run_at": runAt.Format(time.RFC3339),
		}).
		Execute(muxFor(h)).
		AssertStatus(http.StatusCreated).
		DecodeJSON(&created)

	if created.RunAt != runAt.Unix() {
		t.Errorf("expected run_at %d, got %d", runAt.Unix(), created.RunAt)
	}
	if created.Mode != "DRILL" {
		t.Errorf("missing mode should default to DRILL, got %s", created.Mode)
	}
	if created.Zone != "A-WING" {
		t.Errorf("expected normalized zone, got %s", created.Zone)
	}
	if !created.Enabled {
		t.Error("new drills should be enabled")
	}

	drills, _ := store.ListScheduledDrills()
	testhelpers.AssertSliceLen(t, drills, 1, "persisted drills")
}

func TestDrillHandler_CreateWithUnixSeconds(t *testing.T) {
	h, _ := newDrillHandler(t)

	var created database.ScheduledDrill
	testhelpers.NewHTTPTestContext(t, "POST", "/api/drills", nil).
		WithJSONBody(map[string]interface{}{
			"action": "hold",
			"run_at": 1900000000,
		}).
		Execute(muxFor(h)).
		AssertStatus(http.StatusCreated).
		DecodeJSON(&created)

	if created.RunAt != 1900000000 {
		t.Errorf("expected unix run_at, got %d", created.RunAt)
	}
}

func TestDrillHandler_CreateRejectsUnknownAction(t *testing.T) {
	h, store := newDrillHandler(t)

	testhelpers.NewHTTPTestContext(t, "POST", "/api/drills", nil).
		WithJSONBody(map[string]interface{}{
			"action": "FLOOD",
			"run_at": 1900000000,
		}).
		Execute(muxFor(h)).
		AssertStatus(http.StatusUnprocessableEntity)

	drills, _ := store.ListScheduledDrills()
	testhelpers.AssertSliceLen(t, drills, 0, "drills after rejected create")
}

func TestDrillHandler_CreateRejectsBadRunAt(t *testing.T) {
	h, _ := newDrillHandler(t)

	testhelpers.NewHTTPTestContext(t, "POST", "/api/drills", nil).
		WithJSONBody(map[string]interface{}{
			"action": "hold",
			"run_at": "next tuesday",
		}).
		Execute(muxFor(h)).
		AssertStatus(http.StatusUnprocessableEntity).
		AssertBodyContains("run_at")
}

func TestDrillHandler_ListAndDelete(t *testing.T) {
	h, store := newDrillHandler(t)

	drill := &database.ScheduledDrill{Action: "HOLD", Mode: "DRILL", Zone: "ALL", RunAt: 1900000000, Enabled: true}
	store.CreateScheduledDrill(drill)

	testhelpers.NewHTTPTestContext(t, "GET", "/api/drills", nil).
		Execute(muxFor(h)).
		AssertStatus(http.StatusOK).
		AssertBodyContains("HOLD")

	testhelpers.NewHTTPTestContext(t, "DELETE", "/api/drills/1", nil).
		Execute(muxFor(h)).
		AssertStatus(http.StatusNoContent)

	drills, _ := store.ListScheduledDrills()
	testhelpers.AssertSliceLen(t, drills, 0, "drills after delete")
}

func TestDrillHandler_DeleteBadID(t *testing.T) {
	h, _ := newDrillHandler(t)

	testhelpers.NewHTTPTestContext(t, "DELETE", "/api/drills/banana", nil).
		Execute(muxFor(h)).
		AssertStatus(http.StatusBadRequest)
}
