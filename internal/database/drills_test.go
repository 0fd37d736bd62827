package database

import (
	"testing"
)

func TestDrillStore_CreateAndList(t *testing.T) {
	store := NewDrillStore(setupTestDB(t))

	store.CreateScheduledDrill(&ScheduledDrill{Action: "HOLD", Mode: "DRILL", Zone: "ALL", RunAt: 1000, Enabled: true})
	store.CreateScheduledDrill(&ScheduledDrill{Action: "LOCKDOWN", Mode: "DRILL", Zone: "ALL", RunAt: 3000, Enabled: true})

	drills, err := store.ListScheduledDrills()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drills) != 2 {
		t.Fatalf("expected 2 drills, got %d", len(drills))
	}
	// Latest run time first.
	if drills[0].RunAt != 3000 {
		t.Errorf("expected run_at 3000 first, got %d", drills[0].RunAt)
	}
}

func TestDrillStore_Delete(t *testing.T) {
	store := NewDrillStore(setupTestDB(t))

	drill := &ScheduledDrill{Action: "HOLD", Mode: "DRILL", Zone: "ALL", RunAt: 1000, Enabled: true}
	store.CreateScheduledDrill(drill)

	if err := store.DeleteScheduledDrill(drill.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	drills, _ := store.ListScheduledDrills()
	if len(drills) != 0 {
		t.Errorf("expected 0 drills after delete, got %d", len(drills))
	}
}

func TestDrillStore_DueScheduledDrills(t *testing.T) {
	store := NewDrillStore(setupTestDB(t))

	fired := int64(950)
	store.CreateScheduledDrill(&ScheduledDrill{Action: "DUE", Mode: "DRILL", Zone: "ALL", RunAt: 900, Enabled: true})
	store.CreateScheduledDrill(&ScheduledDrill{Action: "FUTURE", Mode: "DRILL", Zone: "ALL", RunAt: 2000, Enabled: true})
	store.CreateScheduledDrill(&ScheduledDrill{Action: "DISABLED", Mode: "DRILL", Zone: "ALL", RunAt: 900, Enabled: false})
	store.CreateScheduledDrill(&ScheduledDrill{Action: "FIRED", Mode: "DRILL", Zone: "ALL", RunAt: 900, Enabled: true, LastRunAt: &fired})

	due, err := store.DueScheduledDrills(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected exactly 1 due drill, got %d", len(due))
	}
	if due[0].Action != "DUE" {
		t.Errorf("expected the DUE drill, got %s", due[0].Action)
	}
}

func TestDrillStore_MarkDrillFiredMakesItNotDue(t *testing.T) {
	store := NewDrillStore(setupTestDB(t))

	drill := &ScheduledDrill{Action: "HOLD", Mode: "DRILL", Zone: "ALL", RunAt: 900, Enabled: true}
	store.CreateScheduledDrill(drill)

	if err := store.MarkDrillFired(drill.ID, 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	due, _ := store.DueScheduledDrills(1100)
	if len(due) != 0 {
		t.Errorf("fired drill came due again: %d", len(due))
	}

	// A drill fires again only when rescheduled past its last firing.
	store.db.Model(&ScheduledDrill{}).Where("id = ?", drill.ID).Update("run_at", 1500)
	due, _ = store.DueScheduledDrills(1600)
	if len(due) != 1 {
		t.Errorf("rescheduled drill should be due again, got %d", len(due))
	}
}
