package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the append-only scan event store. Insertion order is the
// snowflake ID order and is the only tie-break the matcher uses.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *ScanEvent) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ScanEvent, error)
	// FindByPayload returns every event recorded for the payload in
	// insertion order.
	FindByPayload(ctx context.Context, db *gorm.DB, payload string) ([]ScanEvent, error)
	// FindRecentBySubmitter returns the most recently inserted events for a
	// submitter, newest first, capped at limit.
	FindRecentBySubmitter(ctx context.Context, db *gorm.DB, submitterID snowflake.ID, limit int) ([]ScanEvent, error)
	// MarkPaired conditionally sets the pairing fields. Retrying with the
	// same partner is a no-op; a different partner fails with
	// ErrPairingConflict.
	MarkPaired(ctx context.Context, db *gorm.DB, id, partnerID snowflake.ID, pairedAt time.Time) error
}
