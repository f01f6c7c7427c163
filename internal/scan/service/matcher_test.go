package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/pairlink/internal/observability/metrics"
	scandomain "github.com/smallbiznis/pairlink/internal/scan/domain"
)

func appendEvent(t *testing.T, svc *Service, submitter int64, payload string, scannedAt time.Time) *scandomain.ScanEvent {
	t.Helper()
	event := &scandomain.ScanEvent{
		ID:          svc.genID.Generate(),
		SubmitterID: snowflake.ID(submitter),
		Payload:     payload,
		Latitude:    37.0,
		Longitude:   -122.0,
		ScannedAt:   scannedAt,
	}
	if err := svc.repo.Insert(context.Background(), svc.db, event); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return event
}

// A losing writer whose candidate was taken by a different pair keeps
// searching and, with no candidates left, ends unpaired.
func TestLinkConflictCandidateTaken(t *testing.T) {
	svc, mc, _ := newTestService(t)
	now := mc.Now()

	a := appendEvent(t, svc, 101, "abc", now)
	b := appendEvent(t, svc, 102, "abc", now)
	incoming := appendEvent(t, svc, 103, "abc", now)

	// A concurrent writer pairs a and b while we hold a stale unpaired copy
	// of a.
	stale := *a
	if err := svc.repo.MarkPaired(context.Background(), svc.db, a.ID, b.ID, now); err != nil {
		t.Fatalf("pre-pair a: %v", err)
	}
	if err := svc.repo.MarkPaired(context.Background(), svc.db, b.ID, a.ID, now); err != nil {
		t.Fatalf("pre-pair b: %v", err)
	}

	linked, adopted, err := svc.link(context.Background(), incoming, &stale)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked || adopted != nil {
		t.Fatal("expected conflict with no adoption")
	}
	if loadEvent(t, svc, incoming.ID).Paired() {
		t.Fatal("incoming event must stay unpaired")
	}
	if *loadEvent(t, svc, a.ID).PairedWith != b.ID {
		t.Fatal("existing pairing must be untouched")
	}
}

// A losing writer whose own event was linked by the winner adopts that
// pairing instead of forming a second one.
func TestLinkAdoptsWinnerPairing(t *testing.T) {
	svc, mc, _ := newTestService(t)
	now := mc.Now()

	candidate := appendEvent(t, svc, 101, "abc", now)
	winner := appendEvent(t, svc, 102, "abc", now)
	incoming := appendEvent(t, svc, 103, "abc", now)

	// The winner has already linked our incoming event with its own; our
	// copy of incoming is stale and still looks unpaired.
	winnerPairedAt := now.Add(time.Millisecond)
	if err := svc.repo.MarkPaired(context.Background(), svc.db, incoming.ID, winner.ID, winnerPairedAt); err != nil {
		t.Fatalf("pre-pair incoming: %v", err)
	}
	if err := svc.repo.MarkPaired(context.Background(), svc.db, winner.ID, incoming.ID, winnerPairedAt); err != nil {
		t.Fatalf("pre-pair winner: %v", err)
	}

	stale := *incoming
	linked, adopted, err := svc.link(context.Background(), &stale, candidate)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked {
		t.Fatal("expected the conditional update to lose")
	}
	if adopted == nil || adopted.ID != winner.ID {
		t.Fatalf("expected adoption of winner pairing, got %+v", adopted)
	}
	// The winner's timestamp is kept.
	if !stale.PairedAt.Equal(winnerPairedAt) {
		t.Fatalf("expected winner paired_at to be kept, got %v", stale.PairedAt)
	}

	// The rolled-back candidate update must not leak: the candidate stays
	// unpaired and available for a later scan.
	if loadEvent(t, svc, candidate.ID).Paired() {
		t.Fatal("candidate must remain unpaired after rollback")
	}
}

// The winning writer counts the formed pair exactly once.
func TestLinkCountsPairFormedOnce(t *testing.T) {
	svc, mc, _ := newTestService(t)
	reg := prometheus.NewRegistry()
	svc.metrics = metrics.NewPairing(reg, metrics.Config{})
	now := mc.Now()

	candidate := appendEvent(t, svc, 101, "abc", now)
	incoming := appendEvent(t, svc, 102, "abc", now)

	linked, _, err := svc.link(context.Background(), incoming, candidate)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if !linked {
		t.Fatal("expected link to win")
	}

	expected := `
# HELP pairlink_pairs_formed_total Total mutual pairings formed.
# TYPE pairlink_pairs_formed_total counter
pairlink_pairs_formed_total{env="unknown",service="pairlink"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "pairlink_pairs_formed_total"); err != nil {
		t.Fatalf("unexpected pairs_formed count: %v", err)
	}
}

// A losing writer that adopts the winner's pairing must not count the pair a
// second time; it records a conflict instead.
func TestLinkAdoptionNotCountedAsPairFormed(t *testing.T) {
	svc, mc, _ := newTestService(t)
	reg := prometheus.NewRegistry()
	svc.metrics = metrics.NewPairing(reg, metrics.Config{})
	now := mc.Now()

	candidate := appendEvent(t, svc, 101, "abc", now)
	winner := appendEvent(t, svc, 102, "abc", now)
	incoming := appendEvent(t, svc, 103, "abc", now)

	if err := svc.repo.MarkPaired(context.Background(), svc.db, incoming.ID, winner.ID, now); err != nil {
		t.Fatalf("pre-pair incoming: %v", err)
	}
	if err := svc.repo.MarkPaired(context.Background(), svc.db, winner.ID, incoming.ID, now); err != nil {
		t.Fatalf("pre-pair winner: %v", err)
	}

	stale := *incoming
	linked, adopted, err := svc.link(context.Background(), &stale, candidate)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked || adopted == nil {
		t.Fatal("expected adoption of the winner pairing")
	}

	expected := `
# HELP pairlink_pairing_conflicts_total Total pairing attempts lost to a concurrent writer and retried.
# TYPE pairlink_pairing_conflicts_total counter
pairlink_pairing_conflicts_total{env="unknown",service="pairlink"} 1
# HELP pairlink_pairs_formed_total Total mutual pairings formed.
# TYPE pairlink_pairs_formed_total counter
pairlink_pairs_formed_total{env="unknown",service="pairlink"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"pairlink_pairing_conflicts_total", "pairlink_pairs_formed_total"); err != nil {
		t.Fatalf("unexpected metric counts: %v", err)
	}
}

// The full match loop skips a taken candidate and links with the next
// eligible one in insertion order.
func TestMatchSkipsTakenCandidate(t *testing.T) {
	svc, mc, _ := newTestService(t)
	now := mc.Now()

	oldest := appendEvent(t, svc, 101, "abc", now)
	next := appendEvent(t, svc, 102, "abc", now)
	incoming := appendEvent(t, svc, 103, "abc", now)

	// Take the oldest candidate out from under the matcher, but leave its
	// partner outside this payload so `next` is still free.
	other := appendEvent(t, svc, 104, "other", now)
	if err := svc.repo.MarkPaired(context.Background(), svc.db, oldest.ID, other.ID, now); err != nil {
		t.Fatalf("pre-pair oldest: %v", err)
	}

	partner, err := svc.match(context.Background(), incoming)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if partner == nil || partner.ID != next.ID {
		t.Fatalf("expected match with next candidate %d, got %+v", next.ID, partner)
	}
}
