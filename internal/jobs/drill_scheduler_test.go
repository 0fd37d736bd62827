package jobs

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/database"
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

// fakeActivator records Activate calls.
type fakeActivator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeActivator) Activate(mode alerting.Mode, action alerting.Action, zone, actor string) (alerting.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(mode)+" "+string(action)+" "+zone+" "+actor)
	if f.err != nil {
		return alerting.Snapshot{}, f.err
	}
	return alerting.Snapshot{Mode: mode, Action: action, Zone: zone}, nil
}

func (f *fakeActivator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDrillScheduler_FiresDueDrill(t *testing.T) {
	db := setupTestDB(t)
	drills := database.NewDrillStore(db)
	activator := &fakeActivator{}

	drills.CreateScheduledDrill(&database.ScheduledDrill{
		Mode: "DRILL", Action: "LOCKDOWN", Zone: "A-WING", RunAt: 900, Enabled: true,
	})

	job := NewDrillSchedulerJob(drills, activator, time.Second)
	job.now = func() time.Time { return time.Unix(1000, 0) }

	fired, err := job.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected 1 drill fired, got %d", fired)
	}
	if activator.calls[0] != "DRILL LOCKDOWN A-WING SCHEDULER" {
		t.Errorf("unexpected activation: %s", activator.calls[0])
	}
}

func TestDrillScheduler_AtMostOncePerRunAt(t *testing.T) {
	db := setupTestDB(t)
	drills := database.NewDrillStore(db)
	activator := &fakeActivator{}

	drills.CreateScheduledDrill(&database.ScheduledDrill{
		Mode: "DRILL", Action: "HOLD", Zone: "ALL", RunAt: 900, Enabled: true,
	})

	job := NewDrillSchedulerJob(drills, activator, time.Second)
	job.now = func() time.Time { return time.Unix(1000, 0) }

	// Three ticks, one firing.
	for i := 0; i < 3; i++ {
		if _, err := job.Run(); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}

	if activator.callCount() != 1 {
		t.Errorf("expected exactly 1 activation over repeated ticks, got %d", activator.callCount())
	}
}

func TestDrillScheduler_StampsEvenWhenActivationFails(t *testing.T) {
	db := setupTestDB(t)
	drills := database.NewDrillStore(db)
	activator := &fakeActivator{err: errors.New("invalid action")}

	drills.CreateScheduledDrill(&database.ScheduledDrill{
		Mode: "DRILL", Action: "BOGUS", Zone: "ALL", RunAt: 900, Enabled: true,
	})

	job := NewDrillSchedulerJob(drills, activator, time.Second)
	job.now = func() time.Time { return time.Unix(1000, 0) }

	fired, err := job.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fired != 0 {
		t.Errorf("failed activation should not count as fired, got %d", fired)
	}

	// The broken drill must not retry-storm on the next tick.
	job.Run()
	if activator.callCount() != 1 {
		t.Errorf("expected 1 attempt total, got %d", activator.callCount())
	}
}

func TestDrillScheduler_SkipsDisabledAndFuture(t *testing.T) {
	db := setupTestDB(t)
	drills := database.NewDrillStore(db)
	activator := &fakeActivator{}

	drills.CreateScheduledDrill(&database.ScheduledDrill{
		Mode: "DRILL", Action: "HOLD", Zone: "ALL", RunAt: 900, Enabled: false,
	})
	drills.CreateScheduledDrill(&database.ScheduledDrill{
		Mode: "DRILL", Action: "SECURE", Zone: "ALL", RunAt: 5000, Enabled: true,
	})

	job := NewDrillSchedulerJob(drills, activator, time.Second)
	job.now = func() time.Time { return time.Unix(1000, 0) }

	fired, err := job.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fired != 0 || activator.callCount() != 0 {
		t.Errorf("expected no activations, got fired=%d calls=%d", fired, activator.callCount())
	}
}

func TestDrillScheduler_StopEndsLoop(t *testing.T) {
	db := setupTestDB(t)
	drills := database.NewDrillStore(db)
	activator := &fakeActivator{}

	job := NewDrillSchedulerJob(drills, activator, 10*time.Millisecond)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		job.Start(stop)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler loop did not stop")
	}
}
