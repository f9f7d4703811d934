// Package scorer applies referee and verifier verdicts to findings and
// disputes as single atomic store transactions, including the in-transaction
// pattern-hash re-check that makes duplicate detection TOCTOU-free.
package scorer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/repo"
	"github.com/bones-game/bones/internal/store"
)

// Scorer owns the transactional scoring operations. It holds no per-call
// state; every method opens its own store.Transaction.
type Scorer struct {
	store    *store.Store
	games    *repo.GameRepo
	agents   *repo.AgentRepo
	findings *repo.FindingRepo
	disputes *repo.DisputeRepo
	now      func() time.Time
}

// New constructs a Scorer. now defaults to time.Now; tests may override it
// for deterministic timestamps.
func New(st *store.Store, games *repo.GameRepo, agents *repo.AgentRepo, findings *repo.FindingRepo, disputes *repo.DisputeRepo) *Scorer {
	return &Scorer{store: st, games: games, agents: agents, findings: findings, disputes: disputes, now: time.Now}
}

// ValidationResult summarizes what applyFindingValidation actually did,
// which may differ from what the caller asked for (VALID can be overridden
// to DUPLICATE by the in-transaction re-check).
type ValidationResult struct {
	Finding        *game.Finding
	FinalVerdict   game.Verdict
	DuplicateOfID  int64
	PointsAwarded  int
}

// ValidationInput bundles the referee's decision for one finding.
type ValidationInput struct {
	FindingID         int64
	GameID            string
	Verdict           game.Verdict
	Explanation       string
	Confidence        game.Confidence
	ConfidenceScore   *int
	DuplicateOfID     *int64 // referee's own pick, used only if no in-transaction match is found
	IssueType         string
	ImpactTier        string
	NeedsVerification bool
}

// ApplyFindingValidation applies the referee's verdict to a finding inside
// a single transaction, re-checking for a pattern-hash duplicate among
// currently-Valid findings before committing a VALID verdict. This re-check
// is what makes two referees validating colliding findings concurrently
// resolve to at most one Valid outcome.
func (s *Scorer) ApplyFindingValidation(in ValidationInput) (*ValidationResult, error) {
	var result ValidationResult

	err := s.store.Transaction(func(tx *sql.Tx) error {
		finding, err := s.findings.FindByID(tx, in.GameID, in.FindingID)
		if err != nil {
			return err
		}
		agent, err := s.agents.FindByID(tx, finding.AgentID)
		if err != nil {
			return fmt.Errorf("load submitting agent %s: %w", finding.AgentID, err)
		}

		verdict := in.Verdict
		duplicateOfID := in.DuplicateOfID
		needsVerification := in.NeedsVerification

		if verdict == game.VerdictValid {
			matches, err := s.findings.FindByPatternHash(tx, in.GameID, finding.PatternHash, true)
			if err != nil {
				return fmt.Errorf("pattern-hash re-check: %w", err)
			}
			for _, m := range matches {
				if m.ID != finding.ID {
					verdict = game.VerdictDuplicate
					id := m.ID
					duplicateOfID = &id
					needsVerification = false
					break
				}
			}
		}

		var points int
		switch verdict {
		case game.VerdictValid:
			points, err = finding.Validate(in.Explanation, in.Confidence, in.ConfidenceScore, in.IssueType, in.ImpactTier, needsVerification)
		case game.VerdictFalse:
			points, err = finding.MarkFalse(in.Explanation)
		case game.VerdictDuplicate:
			if duplicateOfID == nil {
				return fmt.Errorf("%w: duplicate verdict requires a duplicate-of finding id", game.ErrInvalidPrecondition)
			}
			points, err = finding.MarkDuplicate(in.Explanation, *duplicateOfID)
		default:
			return fmt.Errorf("%w: unknown verdict %q", game.ErrInvalidPrecondition, verdict)
		}
		if err != nil {
			return err
		}

		if finding.VerificationStatus != game.VerificationPending {
			agent.AddScore(points)
			switch finding.Status {
			case game.FindingValid:
				agent.IncrementValid()
			case game.FindingFalse:
				agent.IncrementFalse()
			case game.FindingDuplicate:
				agent.IncrementDuplicate()
			}
		}

		if err := s.findings.Update(tx, finding); err != nil {
			return err
		}
		if err := s.agents.Update(tx, agent); err != nil {
			return err
		}

		result = ValidationResult{Finding: finding, FinalVerdict: verdict, PointsAwarded: points}
		if duplicateOfID != nil {
			result.DuplicateOfID = *duplicateOfID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ApplyVerification resolves a Pending verification, awarding the resulting
// points and bumping the correct stat counter.
func (s *Scorer) ApplyVerification(gameID string, findingID int64, confirmed bool, explanation, overriddenType, rejectionReason string) (*game.Finding, error) {
	var out *game.Finding

	err := s.store.Transaction(func(tx *sql.Tx) error {
		finding, err := s.findings.FindByID(tx, gameID, findingID)
		if err != nil {
			return err
		}
		agent, err := s.agents.FindByID(tx, finding.AgentID)
		if err != nil {
			return fmt.Errorf("load submitting agent %s: %w", finding.AgentID, err)
		}

		points, err := finding.ApplyVerification(confirmed, explanation, overriddenType, rejectionReason)
		if err != nil {
			return err
		}

		agent.AddScore(points)
		if confirmed {
			agent.IncrementValid()
		} else {
			agent.IncrementFalse()
		}

		if err := s.findings.Update(tx, finding); err != nil {
			return err
		}
		if err := s.agents.Update(tx, agent); err != nil {
			return err
		}
		out = finding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyDisputeResolution resolves a dispute inside a single transaction,
// awarding the disputer and — on a successful dispute against a finding
// that has not already been revoked by some other concurrent dispute —
// revoking the finding and rolling its points back off the finder.
func (s *Scorer) ApplyDisputeResolution(gameID string, disputeID int64, successful bool, explanation string) (*game.Dispute, *game.Finding, error) {
	var (
		outDispute *game.Dispute
		outFinding *game.Finding
	)

	err := s.store.Transaction(func(tx *sql.Tx) error {
		dispute, err := s.disputes.FindByID(tx, gameID, disputeID)
		if err != nil {
			return err
		}
		finding, err := s.findings.FindByID(tx, gameID, dispute.FindingID)
		if err != nil {
			return err
		}
		disputer, err := s.agents.FindByID(tx, dispute.DisputerAgentID)
		if err != nil {
			return fmt.Errorf("load disputer %s: %w", dispute.DisputerAgentID, err)
		}

		now := s.now()
		disputerPoints, err := dispute.Resolve(successful, explanation, now)
		if err != nil {
			return err
		}
		disputer.AddScore(disputerPoints)

		if successful {
			disputer.IncrementDisputesWon()

			if finding.IsValid() {
				verificationWasPending := finding.VerificationStatus == game.VerificationPending
				finder, err := s.agents.FindByID(tx, finding.AgentID)
				if err != nil {
					return fmt.Errorf("load finder %s: %w", finding.AgentID, err)
				}

				finder.AddScore(-finding.PointsAwarded)
				if err := finding.RevokeValidation(explanation); err != nil {
					return err
				}
				finder.AddScore(finding.PointsAwarded)

				if verificationWasPending {
					finder.IncrementFalse()
				} else {
					if err := finder.RevertValidToFalse(); err != nil {
						return err
					}
				}

				if err := s.agents.Update(tx, finder); err != nil {
					return err
				}
			}
			// If the finding was already revoked by an earlier concurrent
			// dispute, the disputer still earns the reward and the finder
			// is left untouched — there is nothing left to revoke twice.
		} else {
			disputer.IncrementDisputesLost()
		}

		if err := s.disputes.Update(tx, dispute); err != nil {
			return err
		}
		if err := s.findings.Update(tx, finding); err != nil {
			return err
		}
		if err := s.agents.Update(tx, disputer); err != nil {
			return err
		}

		outDispute, outFinding = dispute, finding
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outDispute, outFinding, nil
}

// CheckForDuplicate is the pure, non-transactional pattern-hash lookup
// callers can use to pre-detect a duplicate before invoking referee
// validation. It is a convenience, not a guarantee: the canonical check
// that actually prevents two Valid findings from coexisting happens inside
// ApplyFindingValidation.
func (s *Scorer) CheckForDuplicate(gameID, patternHash string) (*game.Finding, error) {
	matches, err := s.findings.FindByPatternHash(s.store.Conn(), gameID, patternHash, true)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}
