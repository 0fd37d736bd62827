package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glenwood/beacon/internal/alerting"
)

// HistoryStore persists alert instances. It accepts a db parameter
// (rather than using the global DB) to support dependency injection and
// sqlite-backed tests.
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore creates a HistoryStore on the given connection.
func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// CreateAlertRecord appends a new open history row for an activation and
// returns its id.
func (s *HistoryStore) CreateAlertRecord(snap alerting.Snapshot, actor string) (uint, error) {
	rec := &AlertRecord{
		UUID:        uuid.New().String(),
		Mode:        string(snap.Mode),
		Action:      string(snap.Action),
		Text:        snap.Text,
		Zone:        snap.Zone,
		StartedAt:   snap.Timestamp,
		TriggeredBy: actor,
	}
	if err := s.db.Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// ResolveAlertRecord closes a history row with the resolving actor and
// the frozen acknowledgment tally.
func (s *HistoryStore) ResolveAlertRecord(id uint, resolvedBy string, totalAcks int) error {
	now := time.Now().Unix()
	return s.db.Model(&AlertRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"resolved_at": now,
		"resolved_by": resolvedBy,
		"total_acks":  totalAcks,
	}).Error
}

// SetAlertRecordAcks freezes the ack tally on a row superseded without a
// resolve.
func (s *HistoryStore) SetAlertRecordAcks(id uint, totalAcks int) error {
	return s.db.Model(&AlertRecord{}).Where("id = ?", id).Update("total_acks", totalAcks).Error
}

// ListAlertRecords returns a page of history ordered by started_at
// descending, plus the total row count.
func (s *HistoryStore) ListAlertRecords(offset, limit int) ([]AlertRecord, int64, error) {
	var total int64
	if err := s.db.Model(&AlertRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []AlertRecord
	err := s.db.Order("started_at desc").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// AllAlertRecords returns the full history for exports, newest first.
func (s *HistoryStore) AllAlertRecords() ([]AlertRecord, error) {
	var records []AlertRecord
	if err := s.db.Order("started_at desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
