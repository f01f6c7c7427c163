// Package domain contains persistence models and matching rules for scan
// pairing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ScanEvent stores one submitted scan of a shared code. Pairing fields are
// set at most once and never cleared.
type ScanEvent struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	SubmitterID snowflake.ID  `gorm:"not null;index:idx_scan_events_submitter" json:"submitter_id"`
	Payload     string        `gorm:"type:text;not null;index:idx_scan_events_payload" json:"payload"`
	Latitude    float64       `gorm:"not null" json:"latitude"`
	Longitude   float64       `gorm:"not null" json:"longitude"`
	Accuracy    *float64      `gorm:"" json:"accuracy,omitempty"`
	ScannedAt   time.Time     `gorm:"not null" json:"scanned_at"`
	PairedAt    *time.Time    `gorm:"" json:"paired_at,omitempty"`
	PairedWith  *snowflake.ID `gorm:"" json:"paired_with,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ScanEvent) TableName() string { return "scan_events" }

// Paired reports whether the event is linked to a partner.
func (e *ScanEvent) Paired() bool {
	return e.PairedAt != nil && e.PairedWith != nil
}
