// Package identity resolves submitter identities for scan submissions.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrUnknownSubmitter = errors.New("unknown_submitter")

// Submitter is a party allowed to record scans. Account management lives
// outside this service; rows are provisioned by the surrounding application.
type Submitter struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	DisplayName string       `gorm:"type:text;not null" json:"display_name"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Submitter) TableName() string { return "submitters" }

// Resolver maps a caller-supplied submitter identifier to a known identity.
type Resolver interface {
	Resolve(ctx context.Context, submitterID string) (snowflake.ID, error)
}
