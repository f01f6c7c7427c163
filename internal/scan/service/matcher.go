package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/pairlink/internal/events"
	scandomain "github.com/smallbiznis/pairlink/internal/scan/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// match searches the incoming event's payload history for the first eligible
// candidate in insertion order and links the two. It returns the partner, or
// nil when the event stays unpaired.
//
// Concurrent writers are resolved through the store: a conditional MarkPaired
// either wins, turns out to be the same pairing (idempotent no-op), or loses
// with a conflict. A losing writer re-reads its own event, adopts the
// winner's pairing when it is the one referenced, and otherwise moves on to
// the next-oldest candidate.
func (s *Service) match(ctx context.Context, incoming *scandomain.ScanEvent) (*scandomain.ScanEvent, error) {
	candidates, err := s.repo.FindByPayload(ctx, s.db, incoming.Payload)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == incoming.ID {
			continue
		}
		if !scandomain.Eligible(candidate, incoming, s.cfg) {
			continue
		}

		linked, adopted, err := s.link(ctx, incoming, candidate)
		if err != nil {
			return nil, err
		}
		if linked {
			return candidate, nil
		}
		if adopted != nil {
			return adopted, nil
		}
		// The candidate was taken by a concurrent writer; keep scanning.
	}
	return nil, nil
}

// link marks both sides paired in one transaction, together with the outbox
// row describing the formed pair. Returns linked=true on success, or an
// adopted partner when a concurrent winner already paired the incoming event.
func (s *Service) link(ctx context.Context, incoming, candidate *scandomain.ScanEvent) (bool, *scandomain.ScanEvent, error) {
	pairedAt := s.clock.Now().UTC()
	distance := scandomain.Distance(incoming, candidate)
	offset := scandomain.SecondsOffset(incoming, candidate)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.MarkPaired(ctx, tx, candidate.ID, incoming.ID, pairedAt); err != nil {
			return err
		}
		if err := s.repo.MarkPaired(ctx, tx, incoming.ID, candidate.ID, pairedAt); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventPairFormed,
			Payload: events.PairFormedPayload{
				EventID:            incoming.ID.String(),
				PartnerEventID:     candidate.ID.String(),
				SubmitterID:        incoming.SubmitterID.String(),
				PartnerSubmitterID: candidate.SubmitterID.String(),
				Payload:            incoming.Payload,
				DistanceMeters:     distance,
				SecondsOffset:      offset,
			}.ToMap(),
			DedupeKey: events.PairDedupeKey(incoming.ID.String(), candidate.ID.String()),
		})
	})
	if err == nil {
		candidate.PairedAt = &pairedAt
		candidate.PairedWith = &incoming.ID
		incoming.PairedAt = &pairedAt
		incoming.PairedWith = &candidate.ID
		// Only the winning writer counts the pair; the adoption path below
		// reports one the concurrent winner already counted.
		s.metrics.ObservePairFormed(distance, offset)
		return true, nil, nil
	}
	if !errors.Is(err, scandomain.ErrPairingConflict) {
		return false, nil, err
	}

	s.metrics.IncPairingConflict()
	s.log.Debug("lost pairing race",
		zap.String("event_id", incoming.ID.String()),
		zap.String("candidate_id", candidate.ID.String()),
	)

	// The transaction rolled back. If the concurrent winner linked our own
	// event, adopt that pairing (keeping the winner's timestamps) instead of
	// continuing the search.
	current, ferr := s.repo.FindByID(ctx, s.db, incoming.ID)
	if ferr != nil {
		return false, nil, ferr
	}
	if current == nil || !current.Paired() {
		return false, nil, nil
	}
	partner, ferr := s.repo.FindByID(ctx, s.db, *current.PairedWith)
	if ferr != nil {
		return false, nil, ferr
	}
	if partner == nil {
		return false, nil, nil
	}
	*incoming = *current
	return false, partner, nil
}
