package repo

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bones-game/bones/internal/game"
)

// FindingRepo persists game.Finding rows.
type FindingRepo struct{}

// NewFindingRepo constructs a FindingRepo.
func NewFindingRepo() *FindingRepo { return &FindingRepo{} }

// Create inserts a fresh finding and assigns its autoincrement id onto f.
// Composing this with the submitting agent's findings_submitted increment
// atomically is the SubmissionService's job — it calls Create and
// AgentRepo.Update inside the same store.Transaction.
func (r *FindingRepo) Create(ex Execer, f *game.Finding) error {
	res, err := ex.Exec(`
		INSERT INTO findings (
			game_id, agent_id, round, file_path, line_start, line_end, description,
			evidence, pattern_hash, status, duplicate_of, referee_verdict, confidence,
			confidence_score, points_awarded, verification_status, verifier_explanation,
			issue_type, impact_tier, rejection_reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.GameID, f.AgentID, f.Round, f.FilePath, f.LineStart, f.LineEnd, f.Description,
		f.Evidence, f.PatternHash, string(f.Status), nullInt64Ptr(f.DuplicateOf), f.RefereeVerdict,
		string(f.Confidence), nullIntPtr(f.ConfidenceScore), f.PointsAwarded, string(f.VerificationStatus),
		f.VerifierExplanation, f.IssueType, f.ImpactTier, f.RejectionReason, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert finding for agent %s: %w", f.AgentID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("finding insert id: %w", err)
	}
	f.ID = id
	return nil
}

// Update persists every mutable field of f.
func (r *FindingRepo) Update(ex Execer, f *game.Finding) error {
	_, err := ex.Exec(`
		UPDATE findings SET
			status = ?, duplicate_of = ?, referee_verdict = ?, confidence = ?,
			confidence_score = ?, points_awarded = ?, verification_status = ?,
			verifier_explanation = ?, issue_type = ?, impact_tier = ?, rejection_reason = ?
		WHERE id = ?
	`,
		string(f.Status), nullInt64Ptr(f.DuplicateOf), f.RefereeVerdict, string(f.Confidence),
		nullIntPtr(f.ConfidenceScore), f.PointsAwarded, string(f.VerificationStatus),
		f.VerifierExplanation, f.IssueType, f.ImpactTier, f.RejectionReason, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update finding %d: %w", f.ID, err)
	}
	return nil
}

const findingColumns = `
	id, game_id, agent_id, round, file_path, line_start, line_end, description,
	evidence, pattern_hash, status, duplicate_of, referee_verdict, confidence,
	confidence_score, points_awarded, verification_status, verifier_explanation,
	issue_type, impact_tier, rejection_reason, created_at
`

// FindByID loads a finding by id within gameID.
func (r *FindingRepo) FindByID(ex Execer, gameID string, id int64) (*game.Finding, error) {
	row := ex.QueryRow(`SELECT `+findingColumns+` FROM findings WHERE id = ? AND game_id = ?`, id, gameID)
	f, err := scanFinding(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("finding %d: %w", id, game.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load finding %d: %w", id, err)
	}
	return f, nil
}

// FindPendingByRound lists Pending findings submitted in round.
func (r *FindingRepo) FindPendingByRound(ex Execer, gameID string, round int) ([]*game.Finding, error) {
	rows, err := ex.Query(`
		SELECT `+findingColumns+` FROM findings
		WHERE game_id = ? AND round = ? AND status = ?
		ORDER BY id
	`, gameID, round, string(game.FindingPending))
	if err != nil {
		return nil, fmt.Errorf("pending findings for game %s round %d: %w", gameID, round, err)
	}
	defer rows.Close()
	return scanFindings(rows)
}

// FindAllByGame lists every finding in the game regardless of status,
// earliest first — the backing query for the findings CLI command's
// unfiltered listing.
func (r *FindingRepo) FindAllByGame(ex Execer, gameID string) ([]*game.Finding, error) {
	rows, err := ex.Query(`
		SELECT `+findingColumns+` FROM findings
		WHERE game_id = ?
		ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("all findings for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanFindings(rows)
}

// FindValid lists every Valid finding in the game, earliest first.
func (r *FindingRepo) FindValid(ex Execer, gameID string) ([]*game.Finding, error) {
	rows, err := ex.Query(`
		SELECT `+findingColumns+` FROM findings
		WHERE game_id = ? AND status = ?
		ORDER BY id
	`, gameID, string(game.FindingValid))
	if err != nil {
		return nil, fmt.Errorf("valid findings for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanFindings(rows)
}

// FindPendingVerificationByRound lists Valid findings awaiting a verifier
// pass that were submitted in round.
func (r *FindingRepo) FindPendingVerificationByRound(ex Execer, gameID string, round int) ([]*game.Finding, error) {
	rows, err := ex.Query(`
		SELECT `+findingColumns+` FROM findings
		WHERE game_id = ? AND round = ? AND verification_status = ?
		ORDER BY id
	`, gameID, round, string(game.VerificationPending))
	if err != nil {
		return nil, fmt.Errorf("pending-verification findings for game %s round %d: %w", gameID, round, err)
	}
	defer rows.Close()
	return scanFindings(rows)
}

// FindByPatternHash looks up findings sharing hash within gameID. When
// validOnly is true only Valid findings match (used by both the pure
// pre-check helper and the in-transaction TOCTOU re-check in
// ApplyFindingValidation); when false, Valid and Pending findings both match.
func (r *FindingRepo) FindByPatternHash(ex Execer, gameID, hash string, validOnly bool) ([]*game.Finding, error) {
	query := `SELECT ` + findingColumns + ` FROM findings WHERE game_id = ? AND pattern_hash = ?`
	args := []any{gameID, hash}
	if validOnly {
		query += ` AND status = ?`
		args = append(args, string(game.FindingValid))
	} else {
		query += ` AND status IN (?, ?)`
		args = append(args, string(game.FindingValid), string(game.FindingPending))
	}
	query += ` ORDER BY id`

	rows, err := ex.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("pattern-hash lookup for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanFindings(rows)
}

// FindReviewableForAgent lists every Valid finding in the game not owned by
// excludeAgentID — the candidate set a review agent may dispute.
func (r *FindingRepo) FindReviewableForAgent(ex Execer, gameID, excludeAgentID string) ([]*game.Finding, error) {
	rows, err := ex.Query(`
		SELECT `+findingColumns+` FROM findings
		WHERE game_id = ? AND status = ? AND agent_id != ?
		ORDER BY id
	`, gameID, string(game.FindingValid), excludeAgentID)
	if err != nil {
		return nil, fmt.Errorf("reviewable findings for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanFindings(rows)
}

// CountByStatus returns how many findings in gameID hold status.
func (r *FindingRepo) CountByStatus(ex Execer, gameID string, status game.FindingStatus) (int, error) {
	var n int
	err := ex.QueryRow(`SELECT COUNT(*) FROM findings WHERE game_id = ? AND status = ?`, gameID, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count findings %s for game %s: %w", status, gameID, err)
	}
	return n, nil
}

// CountByAgent returns how many findings agentID submitted in gameID.
func (r *FindingRepo) CountByAgent(ex Execer, gameID, agentID string) (int, error) {
	var n int
	err := ex.QueryRow(`SELECT COUNT(*) FROM findings WHERE game_id = ? AND agent_id = ?`, gameID, agentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count findings for agent %s: %w", agentID, err)
	}
	return n, nil
}

func scanFinding(row rowScanner) (*game.Finding, error) {
	var (
		id                                              int64
		gameID, agentID, filePath, description, evidence string
		patternHash, status, refereeVerdict, confidence string
		verificationStatus, verifierExplanation         string
		issueType, impactTier, rejectionReason          string
		round, lineStart, lineEnd, pointsAwarded         int
		duplicateOf                                     sql.NullInt64
		confidenceScore                                 sql.NullInt64
		createdAt                                       time.Time
	)
	if err := row.Scan(
		&id, &gameID, &agentID, &round, &filePath, &lineStart, &lineEnd, &description,
		&evidence, &patternHash, &status, &duplicateOf, &refereeVerdict, &confidence,
		&confidenceScore, &pointsAwarded, &verificationStatus, &verifierExplanation,
		&issueType, &impactTier, &rejectionReason, &createdAt,
	); err != nil {
		return nil, err
	}

	f := &game.Finding{
		ID: id, GameID: gameID, AgentID: agentID, Round: round,
		FilePath: filePath, LineStart: lineStart, LineEnd: lineEnd,
		Description: description, Evidence: evidence, PatternHash: patternHash,
		Status: game.FindingStatus(status), RefereeVerdict: refereeVerdict,
		Confidence: game.Confidence(confidence), PointsAwarded: pointsAwarded,
		VerificationStatus: game.VerificationStatus(verificationStatus), VerifierExplanation: verifierExplanation,
		IssueType: issueType, ImpactTier: impactTier, RejectionReason: rejectionReason,
		CreatedAt: createdAt,
	}
	if duplicateOf.Valid {
		v := duplicateOf.Int64
		f.DuplicateOf = &v
	}
	if confidenceScore.Valid {
		v := int(confidenceScore.Int64)
		f.ConfidenceScore = &v
	}
	return f, nil
}

func scanFindings(rows *sql.Rows) ([]*game.Finding, error) {
	var out []*game.Finding
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func nullInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
