package game

import (
	"fmt"
	"time"
)

// Dispute is one agent's challenge against another agent's Valid finding.
type Dispute struct {
	ID              int64
	GameID          string
	FindingID       int64
	DisputerAgentID string
	Round           int
	Reason          string

	Status         DisputeStatus
	RefereeVerdict string
	PointsAwarded  int

	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// NewDispute constructs a fresh, Pending dispute. Cross-entity preconditions
// (finding.IsValid, disputer != finder, no prior dispute by this agent) are
// the SubmissionService's job, not the entity's — they require querying
// other rows.
func NewDispute(gameID string, findingID int64, disputerAgentID string, round int, reason string, now time.Time) (*Dispute, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: dispute reason required", ErrInvalidPrecondition)
	}
	return &Dispute{
		GameID:          gameID,
		FindingID:       findingID,
		DisputerAgentID: disputerAgentID,
		Round:           round,
		Reason:          reason,
		Status:          DisputePending,
		CreatedAt:       now,
	}, nil
}

// Resolve transitions Pending -> Successful|Failed, recording the referee's
// verdict text and the points it awards the disputer. Returns those points.
func (d *Dispute) Resolve(successful bool, verdict string, now time.Time) (int, error) {
	if d.Status != DisputePending {
		return 0, fmt.Errorf("%w: dispute %d is %s, not pending", ErrInvalidState, d.ID, d.Status)
	}
	d.RefereeVerdict = verdict
	d.ResolvedAt = &now

	if successful {
		d.Status = DisputeSuccessful
		d.PointsAwarded = PointsDisputeWon
		return PointsDisputeWon, nil
	}
	d.Status = DisputeFailed
	d.PointsAwarded = PointsDisputeLost
	return PointsDisputeLost, nil
}
