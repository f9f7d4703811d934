// Package submission implements the agent-facing write operations —
// submitting findings and disputes, recording referee and verifier
// decisions, and signalling per-round completion — each gated by its own
// phase and eligibility preconditions.
package submission

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/repo"
	"github.com/bones-game/bones/internal/scorer"
	"github.com/bones-game/bones/internal/store"
)

// Service implements the agent-facing operations that mutate game state
// outside of a phase transition.
type Service struct {
	store    *store.Store
	games    *repo.GameRepo
	agents   *repo.AgentRepo
	findings *repo.FindingRepo
	disputes *repo.DisputeRepo
	scorer   *scorer.Scorer
	now      func() time.Time
}

// New constructs a Service.
func New(st *store.Store, games *repo.GameRepo, agents *repo.AgentRepo, findings *repo.FindingRepo, disputes *repo.DisputeRepo, sc *scorer.Scorer) *Service {
	return &Service{store: st, games: games, agents: agents, findings: findings, disputes: disputes, scorer: sc, now: time.Now}
}

// WithClock overrides the service's time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitFindingInput bundles one hunt-phase finding report.
type SubmitFindingInput struct {
	GameID      string
	AgentID     string
	FilePath    string
	LineStart   int
	LineEnd     int
	Description string
	Evidence    string
	CodeSnippet string
}

// SubmitFinding creates a finding for an agent currently in the Hunt phase.
// It enforces the doc-drift snippet requirement and rejects an agent that
// has already signalled hunt done for the round (MarkAgentDone); before
// that, an agent may submit multiple findings per round.
func (s *Service) SubmitFinding(in SubmitFindingInput) (*game.Finding, error) {
	var created *game.Finding

	err := s.store.Transaction(func(tx *sql.Tx) error {
		g, err := s.games.FindByID(tx, in.GameID)
		if err != nil {
			return err
		}
		if g.Phase != game.PhaseHunt {
			return game.NewPhaseError(g.Phase, "hunt")
		}

		agent, err := s.agents.FindByID(tx, in.AgentID)
		if err != nil {
			return err
		}
		if agent.GameID != in.GameID {
			return fmt.Errorf("%w: agent %s does not belong to game %s", game.ErrInvalidPrecondition, in.AgentID, in.GameID)
		}
		if agent.HasFinishedHunt(g.Round) {
			return fmt.Errorf("%w: agent %s already signalled hunt done for round %d", game.ErrInvalidPrecondition, in.AgentID, g.Round)
		}

		if g.Config.Category == game.CategoryDocDrift && in.CodeSnippet == "" {
			return fmt.Errorf("%w: documentation-drift findings require a codeSnippet in DOC/CODE/CONTRADICTION format", game.ErrInvalidPrecondition)
		}

		finding, err := game.NewFinding(in.GameID, in.AgentID, g.Round, in.FilePath, in.LineStart, in.LineEnd, in.Description, in.Evidence, s.now())
		if err != nil {
			return err
		}
		finding.PatternHash = scorer.PatternHash(finding.FilePath, finding.LineStart, finding.LineEnd, finding.Description)

		if err := s.findings.Create(tx, finding); err != nil {
			return err
		}
		agent.IncrementSubmitted()
		if err := s.agents.Update(tx, agent); err != nil {
			return err
		}

		created = finding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SubmitDisputeInput bundles one review-phase dispute filing.
type SubmitDisputeInput struct {
	GameID          string
	DisputerAgentID string
	FindingID       int64
	Reason          string
}

// SubmitDispute creates a dispute for an agent currently in the Review
// phase, enforcing every precondition: finding exists in-game and is
// Valid, the disputer is not the finder, and the disputer has not already
// disputed this finding.
func (s *Service) SubmitDispute(in SubmitDisputeInput) (*game.Dispute, error) {
	var created *game.Dispute

	err := s.store.Transaction(func(tx *sql.Tx) error {
		g, err := s.games.FindByID(tx, in.GameID)
		if err != nil {
			return err
		}
		if g.Phase != game.PhaseReview {
			return game.NewPhaseError(g.Phase, "review")
		}

		disputer, err := s.agents.FindByID(tx, in.DisputerAgentID)
		if err != nil {
			return err
		}
		if disputer.HasFinishedReview(g.Round) {
			return fmt.Errorf("%w: agent %s already signalled review done for round %d", game.ErrInvalidPrecondition, in.DisputerAgentID, g.Round)
		}

		finding, err := s.findings.FindByID(tx, in.GameID, in.FindingID)
		if err != nil {
			return err
		}
		if !finding.IsValid() {
			return fmt.Errorf("%w: finding %d is %s, not valid", game.ErrInvalidPrecondition, finding.ID, finding.Status)
		}
		if finding.AgentID == in.DisputerAgentID {
			return fmt.Errorf("%w: agent %s cannot dispute its own finding", game.ErrInvalidPrecondition, in.DisputerAgentID)
		}

		already, err := s.disputes.HasAgentDisputed(tx, finding.ID, in.DisputerAgentID)
		if err != nil {
			return err
		}
		if already {
			return fmt.Errorf("%w: agent %s has already disputed finding %d", game.ErrInvalidPrecondition, in.DisputerAgentID, finding.ID)
		}

		dispute, err := game.NewDispute(in.GameID, finding.ID, in.DisputerAgentID, g.Round, in.Reason, s.now())
		if err != nil {
			return err
		}
		if err := s.disputes.Create(tx, dispute); err != nil {
			return err
		}

		created = dispute
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ValidateFinding looks up finding by id within gameID and delegates to the
// Scorer, which performs the TOCTOU-safe duplicate re-check.
func (s *Service) ValidateFinding(gameID string, findingID int64, verdict game.Verdict, explanation string, confidence game.Confidence, confidenceScore *int, duplicateOfID *int64, issueType, impactTier string, needsVerification bool) (*scorer.ValidationResult, error) {
	if _, err := s.games.FindByID(s.store.Conn(), gameID); err != nil {
		return nil, err
	}
	return s.scorer.ApplyFindingValidation(scorer.ValidationInput{
		FindingID:         findingID,
		GameID:            gameID,
		Verdict:           verdict,
		Explanation:       explanation,
		Confidence:        confidence,
		ConfidenceScore:   confidenceScore,
		DuplicateOfID:     duplicateOfID,
		IssueType:         issueType,
		ImpactTier:        impactTier,
		NeedsVerification: needsVerification,
	})
}

// VerifyFinding resolves a Pending verification via the Scorer.
func (s *Service) VerifyFinding(gameID string, findingID int64, confirmed bool, explanation, overriddenType, rejectionReason string) (*game.Finding, error) {
	finding, err := s.findings.FindByID(s.store.Conn(), gameID, findingID)
	if err != nil {
		return nil, err
	}
	if finding.VerificationStatus != game.VerificationPending {
		return nil, fmt.Errorf("%w: finding %d verification status is %s, not pending", game.ErrInvalidPrecondition, findingID, finding.VerificationStatus)
	}
	return s.scorer.ApplyVerification(gameID, findingID, confirmed, explanation, overriddenType, rejectionReason)
}

// ResolveDispute looks up dispute and delegates to the Scorer.
func (s *Service) ResolveDispute(gameID string, disputeID int64, successful bool, explanation string) (*game.Dispute, *game.Finding, error) {
	if _, err := s.disputes.FindByID(s.store.Conn(), gameID, disputeID); err != nil {
		return nil, nil, err
	}
	return s.scorer.ApplyDisputeResolution(gameID, disputeID, successful, explanation)
}

// MarkAgentDone signals that agentID has finished its part of phase for the
// game's current round.
func (s *Service) MarkAgentDone(gameID, agentID string, phase game.Phase) error {
	return s.store.Transaction(func(tx *sql.Tx) error {
		g, err := s.games.FindByID(tx, gameID)
		if err != nil {
			return err
		}
		if g.Phase != phase {
			return game.NewPhaseError(g.Phase, string(phase))
		}

		agent, err := s.agents.FindByID(tx, agentID)
		if err != nil {
			return err
		}

		switch phase {
		case game.PhaseHunt:
			agent.MarkHuntDone(g.Round)
		case game.PhaseReview:
			agent.MarkReviewDone(g.Round)
		default:
			return fmt.Errorf("%w: done is only meaningful for hunt or review, got %s", game.ErrInvalidPrecondition, phase)
		}

		return s.agents.Update(tx, agent)
	})
}
