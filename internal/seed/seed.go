// Package seed bootstraps demo submitters for non-production environments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pairlink/internal/identity"
	"gorm.io/gorm"
)

var demoSubmitters = []string{"Demo Household A", "Demo Household B"}

// EnsureDemoSubmitters inserts a pair of demo submitters when the table is
// empty, so a fresh development instance can record scans immediately.
func EnsureDemoSubmitters(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&identity.Submitter{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		now := time.Now().UTC()
		for _, name := range demoSubmitters {
			submitter := identity.Submitter{
				ID:          node.Generate(),
				DisplayName: name,
				CreatedAt:   now,
			}
			if err := tx.Create(&submitter).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
