package database

import "gorm.io/gorm"

// DrillStore persists scheduled drills. Like HistoryStore it takes an
// injected connection so tests can run against sqlite.
type DrillStore struct {
	db *gorm.DB
}

// NewDrillStore creates a DrillStore on the given connection.
func NewDrillStore(db *gorm.DB) *DrillStore {
	return &DrillStore{db: db}
}

// CreateScheduledDrill inserts a new drill.
func (s *DrillStore) CreateScheduledDrill(drill *ScheduledDrill) error {
	return s.db.Create(drill).Error
}

// DeleteScheduledDrill removes a drill by id.
func (s *DrillStore) DeleteScheduledDrill(id uint) error {
	return s.db.Delete(&ScheduledDrill{}, id).Error
}

// ListScheduledDrills returns all drills ordered by run time descending.
func (s *DrillStore) ListScheduledDrills() ([]ScheduledDrill, error) {
	var drills []ScheduledDrill
	if err := s.db.Order("run_at desc").Find(&drills).Error; err != nil {
		return nil, err
	}
	return drills, nil
}

// DueScheduledDrills returns drills that should fire now: enabled, due,
// and not yet fired for their current run_at. The last_run_at < run_at
// guard is what makes firing idempotent per scheduled time.
func (s *DrillStore) DueScheduledDrills(now int64) ([]ScheduledDrill, error) {
	var drills []ScheduledDrill
	err := s.db.
		Where("enabled = ? AND run_at <= ? AND (last_run_at IS NULL OR last_run_at < run_at)", true, now).
		Order("run_at asc").
		Find(&drills).Error
	if err != nil {
		return nil, err
	}
	return drills, nil
}

// MarkDrillFired stamps last_run_at. Called unconditionally after a fire
// attempt, success or failure, so a broken drill cannot retry-storm on
// every tick.
func (s *DrillStore) MarkDrillFired(id uint, firedAt int64) error {
	return s.db.Model(&ScheduledDrill{}).Where("id = ?", id).Update("last_run_at", firedAt).Error
}
