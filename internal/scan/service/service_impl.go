// Package service implements the public scan pairing contract.
package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pairlink/internal/clock"
	"github.com/smallbiznis/pairlink/internal/events"
	"github.com/smallbiznis/pairlink/internal/identity"
	"github.com/smallbiznis/pairlink/internal/observability/metrics"
	scandomain "github.com/smallbiznis/pairlink/internal/scan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     scandomain.Repository
	Resolver identity.Resolver
	Outbox   *events.Outbox
	Config   scandomain.MatchConfig
	Metrics  *metrics.PairingMetrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     scandomain.Repository
	resolver identity.Resolver
	outbox   *events.Outbox
	cfg      scandomain.MatchConfig
	metrics  *metrics.PairingMetrics
}

func NewService(p ServiceParam) scandomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("scan.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		resolver: p.Resolver,
		outbox:   p.Outbox,
		cfg:      p.Config,
		metrics:  p.Metrics,
	}
}

// RecordScan validates the submission, appends exactly one scan event and
// then attempts to pair it with an earlier scan of the same payload. The
// append is durable even when the pairing step fails: a later scan can still
// discover and pair with the stored event.
func (s *Service) RecordScan(ctx context.Context, req scandomain.RecordScanRequest) (*scandomain.ScanResult, error) {
	payload := strings.TrimSpace(req.Payload)
	if payload == "" {
		return nil, scandomain.ErrInvalidPayload
	}
	if err := validateCoordinates(req); err != nil {
		return nil, err
	}

	submitterID, err := s.resolveSubmitter(ctx, req.SubmitterID)
	if err != nil {
		return nil, err
	}

	event := &scandomain.ScanEvent{
		ID:          s.genID.Generate(),
		SubmitterID: submitterID,
		Payload:     payload,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Accuracy:    req.Accuracy,
		ScannedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, event); err != nil {
		return nil, err
	}
	s.metrics.IncScanRecorded()

	partner, err := s.match(ctx, event)
	if err != nil {
		// The scan is recorded; a transient pairing failure leaves it
		// unpaired rather than losing it. A later scan can still match.
		s.log.Warn("pairing step failed, event stays unpaired",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return &scandomain.ScanResult{EventID: event.ID}, nil
	}

	result := &scandomain.ScanResult{EventID: event.ID}
	if partner != nil {
		distance := scandomain.Distance(event, partner)
		offset := scandomain.SecondsOffset(event, partner)
		result.Paired = true
		result.PairedWith = &partner.ID
		result.ProximityMeters = &distance
		result.SecondsOffset = &offset
	}
	return result, nil
}

// ListRecentScans returns the submitter's most recent scans, newest first.
// An unknown or malformed submitter yields an empty list, not an error: the
// dashboard view has nothing to show.
func (s *Service) ListRecentScans(ctx context.Context, req scandomain.ListRecentScansRequest) ([]scandomain.ScanEvent, error) {
	submitterID, err := s.resolver.Resolve(ctx, req.SubmitterID)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownSubmitter) {
			return []scandomain.ScanEvent{}, nil
		}
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = scandomain.DefaultRecentLimit
	}
	return s.repo.FindRecentBySubmitter(ctx, s.db, submitterID, limit)
}

func (s *Service) resolveSubmitter(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownSubmitter) {
			return 0, scandomain.ErrUnauthenticated
		}
		return 0, err
	}
	return id, nil
}

func validateCoordinates(req scandomain.RecordScanRequest) error {
	if !isFinite(req.Latitude) || !isFinite(req.Longitude) {
		return scandomain.ErrInvalidCoordinates
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return scandomain.ErrInvalidCoordinates
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return scandomain.ErrInvalidCoordinates
	}
	if req.Accuracy != nil && (!isFinite(*req.Accuracy) || *req.Accuracy < 0) {
		return scandomain.ErrInvalidAccuracy
	}
	return nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
