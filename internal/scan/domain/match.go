package domain

import (
	"time"

	"github.com/smallbiznis/pairlink/internal/geo"
)

const (
	DefaultMaxTimeDiff       = 120000 * time.Millisecond
	DefaultMaxDistanceMeters = 50.0
)

// MatchConfig carries the eligibility thresholds. The defaults are the
// product behavior; overrides exist for tests.
type MatchConfig struct {
	MaxTimeDiff       time.Duration
	MaxDistanceMeters float64
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MaxTimeDiff:       DefaultMaxTimeDiff,
		MaxDistanceMeters: DefaultMaxDistanceMeters,
	}
}

func (c MatchConfig) withDefaults() MatchConfig {
	defaults := DefaultMatchConfig()
	if c.MaxTimeDiff <= 0 {
		c.MaxTimeDiff = defaults.MaxTimeDiff
	}
	if c.MaxDistanceMeters <= 0 {
		c.MaxDistanceMeters = defaults.MaxDistanceMeters
	}
	return c
}

// Eligible reports whether candidate may pair with incoming. All conditions
// are conjunctive: different submitters, candidate still unpaired, scans
// within the time window (symmetric), and within the distance threshold.
func Eligible(candidate, incoming *ScanEvent, cfg MatchConfig) bool {
	cfg = cfg.withDefaults()
	if candidate == nil || incoming == nil {
		return false
	}
	if candidate.SubmitterID == incoming.SubmitterID {
		return false
	}
	if candidate.Paired() {
		return false
	}
	diff := incoming.ScannedAt.Sub(candidate.ScannedAt)
	if diff < 0 {
		diff = -diff
	}
	if diff > cfg.MaxTimeDiff {
		return false
	}
	return Distance(candidate, incoming) <= cfg.MaxDistanceMeters
}

// Distance returns the great-circle distance in meters between two events.
func Distance(a, b *ScanEvent) float64 {
	return geo.Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// SecondsOffset returns the absolute time offset between two events in
// seconds.
func SecondsOffset(a, b *ScanEvent) float64 {
	diff := a.ScannedAt.Sub(b.ScannedAt)
	if diff < 0 {
		diff = -diff
	}
	return diff.Seconds()
}
