package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// DefaultRecentLimit caps ListRecentScans when the caller does not ask for a
// specific page size.
const DefaultRecentLimit = 20

type RecordScanRequest struct {
	SubmitterID string
	Payload     string
	Latitude    float64
	Longitude   float64
	Accuracy    *float64
}

type ListRecentScansRequest struct {
	SubmitterID string
	Limit       int
}

// ScanResult is the outcome of one recorded scan. The proximity and offset
// fields are present only when a pairing occurred.
type ScanResult struct {
	EventID         snowflake.ID  `json:"event_id"`
	Paired          bool          `json:"paired"`
	PairedWith      *snowflake.ID `json:"paired_with,omitempty"`
	ProximityMeters *float64      `json:"proximity_meters,omitempty"`
	SecondsOffset   *float64      `json:"seconds_offset,omitempty"`
}

type Service interface {
	RecordScan(ctx context.Context, req RecordScanRequest) (*ScanResult, error)
	ListRecentScans(ctx context.Context, req ListRecentScansRequest) ([]ScanEvent, error)
}
