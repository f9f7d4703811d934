package game

import (
	"fmt"
	"time"
)

// Agent is one competing reviewer within a game.
type Agent struct {
	ID        string
	GameID    string
	ShortName string

	Score int

	FindingsSubmitted int
	FindingsValid     int
	FindingsFalse     int
	FindingsDuplicate int
	DisputesWon       int
	DisputesLost      int

	HuntDoneRound   int
	ReviewDoneRound int

	Status        AgentStatus
	LastHeartbeat *time.Time
}

// AgentID composes an agent's `{gameId}-{shortName}` identity string.
func AgentID(gameID, shortName string) string {
	return gameID + "-" + shortName
}

// NewAgent constructs a fresh, active agent for gameID with the given short
// name, drawn from the per-game shuffled name pool.
func NewAgent(gameID, shortName string) *Agent {
	return &Agent{
		ID:        AgentID(gameID, shortName),
		GameID:    gameID,
		ShortName: shortName,
		Status:    AgentActive,
	}
}

// HasFinishedHunt reports whether the agent has signalled done for round r
// (or any earlier round it was marked done in — huntDoneRound only ever
// advances, so >= is the correct comparison).
func (a *Agent) HasFinishedHunt(round int) bool {
	return a.HuntDoneRound >= round
}

// HasFinishedReview reports the review-phase analogue of HasFinishedHunt.
func (a *Agent) HasFinishedReview(round int) bool {
	return a.ReviewDoneRound >= round
}

// MarkHuntDone records that the agent has finished hunting for round.
func (a *Agent) MarkHuntDone(round int) {
	if round > a.HuntDoneRound {
		a.HuntDoneRound = round
	}
}

// MarkReviewDone records that the agent has finished reviewing for round.
func (a *Agent) MarkReviewDone(round int) {
	if round > a.ReviewDoneRound {
		a.ReviewDoneRound = round
	}
}

// Heartbeat stamps the agent's last-seen time.
func (a *Agent) Heartbeat(now time.Time) {
	a.LastHeartbeat = &now
}

// AddScore applies a signed point delta, positive or negative.
func (a *Agent) AddScore(delta int) {
	a.Score += delta
}

// IncrementSubmitted bumps the submitted-findings counter.
func (a *Agent) IncrementSubmitted() {
	a.FindingsSubmitted++
}

// IncrementValid bumps the valid-findings counter.
func (a *Agent) IncrementValid() {
	a.FindingsValid++
}

// IncrementFalse bumps the false-flag counter.
func (a *Agent) IncrementFalse() {
	a.FindingsFalse++
}

// IncrementDuplicate bumps the duplicate-findings counter.
func (a *Agent) IncrementDuplicate() {
	a.FindingsDuplicate++
}

// IncrementDisputesWon bumps the disputes-won counter.
func (a *Agent) IncrementDisputesWon() {
	a.DisputesWon++
}

// IncrementDisputesLost bumps the disputes-lost counter.
func (a *Agent) IncrementDisputesLost() {
	a.DisputesLost++
}

// RevertValidToFalse reclassifies one previously-valid finding as false,
// for use when a successful dispute revokes a finding whose stats were
// already recorded. It fails if findingsValid is already zero — that would
// indicate the bookkeeping lost track of which finding this reverts.
func (a *Agent) RevertValidToFalse() error {
	if a.FindingsValid == 0 {
		return fmt.Errorf("%w: agent %s has no valid findings to revert", ErrInvariantViolation, a.ID)
	}
	a.FindingsValid--
	a.FindingsFalse++
	return nil
}

// MarkWinner sets terminal winner status.
func (a *Agent) MarkWinner() {
	a.Status = AgentWinner
}

// MarkEliminated sets terminal eliminated status.
func (a *Agent) MarkEliminated() {
	a.Status = AgentEliminated
}
