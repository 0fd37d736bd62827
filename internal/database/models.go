package database

import "time"

// AlertRecord is one row of the alert history: every activation ever
// fired, open or closed. StartedAt/ResolvedAt are unix seconds because
// they are the engine's activation identity, not audit columns.
type AlertRecord struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UUID       string `gorm:"uniqueIndex;not null" json:"uuid"`
	Mode       string `gorm:"type:varchar(16);not null" json:"mode"`
	Action     string `gorm:"type:varchar(32);not null;index" json:"action"`
	Text       string `gorm:"type:varchar(64)" json:"text"`
	Zone       string `gorm:"type:varchar(64);not null" json:"zone"`
	StartedAt   int64  `gorm:"not null;index" json:"started_at"`
	TriggeredBy string `gorm:"type:varchar(128)" json:"triggered_by"`
	ResolvedAt  *int64 `json:"resolved_at"`
	ResolvedBy string `gorm:"type:varchar(128)" json:"resolved_by"`
	// TotalAcks is frozen at resolve (or supersede) time; nil while open.
	TotalAcks *int `json:"total_acks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduledDrill is a future firing intent managed by the admin surface
// and consumed by the background scheduler.
type ScheduledDrill struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Label   string `gorm:"type:varchar(128)" json:"label"`
	Mode    string `gorm:"type:varchar(16);not null" json:"mode"`
	Action  string `gorm:"type:varchar(32);not null" json:"action"`
	Zone    string `gorm:"type:varchar(64);not null" json:"zone"`
	RunAt   int64  `gorm:"not null;index" json:"run_at"`
	// Enabled carries no column default: gorm would silently drop a
	// false value on insert. The create path always sets it.
	Enabled bool `json:"enabled"`
	// LastRunAt is written only by the scheduler loop. A drill fires at
	// most once per RunAt value: re-enabling alone never re-fires it.
	LastRunAt *int64 `json:"last_run_at"`

	CreatedBy string    `gorm:"type:varchar(128)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
