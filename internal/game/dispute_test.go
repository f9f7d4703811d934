package game

import (
	"errors"
	"testing"
	"time"
)

func TestNewDisputeRejectsEmptyReason(t *testing.T) {
	if _, err := NewDispute("g1", 1, "g1-atlas", 1, "", time.Now()); !errors.Is(err, ErrInvalidPrecondition) {
		t.Fatalf("expected ErrInvalidPrecondition, got %v", err)
	}
}

func TestDisputeResolveSuccessful(t *testing.T) {
	d, err := NewDispute("g1", 1, "g1-atlas", 1, "this was marked valid incorrectly", time.Now())
	if err != nil {
		t.Fatalf("NewDispute: %v", err)
	}
	points, err := d.Resolve(true, "dispute sustained", time.Now())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if points != PointsDisputeWon {
		t.Fatalf("expected %d, got %d", PointsDisputeWon, points)
	}
	if d.Status != DisputeSuccessful || d.ResolvedAt == nil {
		t.Fatalf("unexpected state: %+v", d)
	}
}

func TestDisputeResolveFailed(t *testing.T) {
	d, _ := NewDispute("g1", 1, "g1-atlas", 1, "reason", time.Now())
	points, err := d.Resolve(false, "dispute rejected", time.Now())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if points != PointsDisputeLost {
		t.Fatalf("expected %d, got %d", PointsDisputeLost, points)
	}
	if d.Status != DisputeFailed {
		t.Fatalf("expected DisputeFailed, got %s", d.Status)
	}
}

func TestDisputeResolveOnlyFromPending(t *testing.T) {
	d, _ := NewDispute("g1", 1, "g1-atlas", 1, "reason", time.Now())
	if _, err := d.Resolve(true, "v", time.Now()); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if _, err := d.Resolve(true, "v again", time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on re-resolve, got %v", err)
	}
}
