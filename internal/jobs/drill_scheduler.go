// Package jobs contains the long-lived background loops.
package jobs

import (
	"log"
	"time"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/database"
	"github.com/glenwood/beacon/internal/metrics"
)

// Activator is the slice of the dispatcher the scheduler needs.
type Activator interface {
	Activate(mode alerting.Mode, action alerting.Action, zone, actor string) (alerting.Snapshot, error)
}

// DrillSchedulerJob polls the scheduled_drills table and fires due drills
// through the dispatch orchestrator.
type DrillSchedulerJob struct {
	drills     *database.DrillStore
	dispatcher Activator
	interval   time.Duration
	now        func() time.Time
}

// NewDrillSchedulerJob creates the scheduler with the given polling
// period; zero means 30 seconds.
func NewDrillSchedulerJob(drills *database.DrillStore, dispatcher Activator, interval time.Duration) *DrillSchedulerJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &DrillSchedulerJob{
		drills:     drills,
		dispatcher: dispatcher,
		interval:   interval,
		now:        time.Now,
	}
}

// Run executes one scheduler tick and returns the number of drills fired.
//
// Due drills are fired sequentially, never concurrently, so two drills in
// the same tick cannot race each other on the shared alert state. Each
// drill's last_run_at is stamped whether its firing succeeded or not;
// combined with the last_run_at < run_at guard in the due query, that
// gives at-most-once firing per run_at with no retry storms.
func (j *DrillSchedulerJob) Run() (int, error) {
	nowTS := j.now().Unix()
	due, err := j.drills.DueScheduledDrills(nowTS)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, drill := range due {
		log.Printf("DrillScheduler: firing drill id=%d %s %s zone=%s", drill.ID, drill.Mode, drill.Action, drill.Zone)

		_, err := j.dispatcher.Activate(
			alerting.NormalizeMode(drill.Mode),
			alerting.NormalizeAction(drill.Action),
			drill.Zone,
			alerting.ActorScheduler,
		)
		if err != nil {
			log.Printf("DrillScheduler: drill %d failed to fire: %v", drill.ID, err)
		} else {
			fired++
			metrics.DrillsFired.Inc()
		}

		if err := j.drills.MarkDrillFired(drill.ID, j.now().Unix()); err != nil {
			log.Printf("DrillScheduler: failed to stamp last_run_at for drill %d: %v", drill.ID, err)
		}
	}

	return fired, nil
}

// Start runs the polling loop until the stop channel closes. Errors are
// logged and the loop keeps its period; a bad tick delays a drill by at
// most one interval.
func (j *DrillSchedulerJob) Start(stop <-chan struct{}) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Printf("DrillScheduler: started (period %s)", j.interval)
	for {
		select {
		case <-ticker.C:
			fired, err := j.Run()
			if err != nil {
				log.Printf("DrillScheduler: tick error: %v", err)
			} else if fired > 0 {
				log.Printf("DrillScheduler: fired %d drills", fired)
			}
		case <-stop:
			log.Println("DrillScheduler: stopped")
			return
		}
	}
}
