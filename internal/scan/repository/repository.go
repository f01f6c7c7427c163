// Package repository implements the gorm-backed scan event store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pairlink/internal/scan/domain"
	"gorm.io/gorm"
)

type scanRepository struct{}

// Provide constructs the scan event repository.
func Provide() domain.Repository {
	return &scanRepository{}
}

func (r *scanRepository) Insert(ctx context.Context, db *gorm.DB, event *domain.ScanEvent) error {
	if event == nil {
		return errors.New("missing_scan_event")
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = now
	}
	return db.WithContext(ctx).Create(event).Error
}

func (r *scanRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ScanEvent, error) {
	var event domain.ScanEvent
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *scanRepository) FindByPayload(ctx context.Context, db *gorm.DB, payload string) ([]domain.ScanEvent, error) {
	var events []domain.ScanEvent
	err := db.WithContext(ctx).
		Where("payload = ?", payload).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *scanRepository) FindRecentBySubmitter(ctx context.Context, db *gorm.DB, submitterID snowflake.ID, limit int) ([]domain.ScanEvent, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	var events []domain.ScanEvent
	err := db.WithContext(ctx).
		Where("submitter_id = ?", submitterID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// MarkPaired sets the pairing fields only while the event is unpaired. A
// retry naming the existing partner succeeds as a no-op; a different partner
// is a conflict the matcher resolves.
func (r *scanRepository) MarkPaired(ctx context.Context, db *gorm.DB, id, partnerID snowflake.ID, pairedAt time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE scan_events
		 SET paired_with = ?, paired_at = ?, updated_at = ?
		 WHERE id = ? AND paired_with IS NULL`,
		partnerID,
		pairedAt,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	event, err := r.FindByID(ctx, db, id)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrEventNotFound
	}
	if event.PairedWith != nil && *event.PairedWith == partnerID {
		return nil
	}
	return domain.ErrPairingConflict
}
