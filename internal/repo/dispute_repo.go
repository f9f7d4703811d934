package repo

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bones-game/bones/internal/game"
)

// DisputeRepo persists game.Dispute rows.
type DisputeRepo struct{}

// NewDisputeRepo constructs a DisputeRepo.
func NewDisputeRepo() *DisputeRepo { return &DisputeRepo{} }

// Create inserts a fresh dispute and assigns its autoincrement id onto d.
func (r *DisputeRepo) Create(ex Execer, d *game.Dispute) error {
	res, err := ex.Exec(`
		INSERT INTO disputes (
			game_id, finding_id, disputer_agent_id, round, reason, status,
			referee_verdict, points_awarded, created_at, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.GameID, d.FindingID, d.DisputerAgentID, d.Round, d.Reason, string(d.Status),
		d.RefereeVerdict, d.PointsAwarded, d.CreatedAt, nullTime(d.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("insert dispute on finding %d: %w", d.FindingID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("dispute insert id: %w", err)
	}
	d.ID = id
	return nil
}

// Update persists every mutable field of d.
func (r *DisputeRepo) Update(ex Execer, d *game.Dispute) error {
	_, err := ex.Exec(`
		UPDATE disputes SET status = ?, referee_verdict = ?, points_awarded = ?, resolved_at = ?
		WHERE id = ?
	`, string(d.Status), d.RefereeVerdict, d.PointsAwarded, nullTime(d.ResolvedAt), d.ID)
	if err != nil {
		return fmt.Errorf("update dispute %d: %w", d.ID, err)
	}
	return nil
}

const disputeColumns = `
	id, game_id, finding_id, disputer_agent_id, round, reason, status,
	referee_verdict, points_awarded, created_at, resolved_at
`

// FindByID loads a dispute by id within gameID.
func (r *DisputeRepo) FindByID(ex Execer, gameID string, id int64) (*game.Dispute, error) {
	row := ex.QueryRow(`SELECT `+disputeColumns+` FROM disputes WHERE id = ? AND game_id = ?`, id, gameID)
	d, err := scanDispute(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dispute %d: %w", id, game.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load dispute %d: %w", id, err)
	}
	return d, nil
}

// FindPendingByRound lists Pending disputes filed in round.
func (r *DisputeRepo) FindPendingByRound(ex Execer, gameID string, round int) ([]*game.Dispute, error) {
	rows, err := ex.Query(`
		SELECT `+disputeColumns+` FROM disputes
		WHERE game_id = ? AND round = ? AND status = ?
		ORDER BY id
	`, gameID, round, string(game.DisputePending))
	if err != nil {
		return nil, fmt.Errorf("pending disputes for game %s round %d: %w", gameID, round, err)
	}
	defer rows.Close()
	return scanDisputes(rows)
}

// FindAllByGame lists every dispute filed in gameID regardless of round or
// status, earliest first — the backing query for the disputes CLI
// command's unfiltered listing.
func (r *DisputeRepo) FindAllByGame(ex Execer, gameID string) ([]*game.Dispute, error) {
	rows, err := ex.Query(`
		SELECT `+disputeColumns+` FROM disputes
		WHERE game_id = ?
		ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("all disputes for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanDisputes(rows)
}

// HasAgentDisputed reports whether agentID already has a dispute (pending or
// resolved) filed against findingID — enforces at most one dispute per
// (finding, disputer) pair.
func (r *DisputeRepo) HasAgentDisputed(ex Execer, findingID int64, agentID string) (bool, error) {
	var n int
	err := ex.QueryRow(`SELECT COUNT(*) FROM disputes WHERE finding_id = ? AND disputer_agent_id = ?`, findingID, agentID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check existing dispute on finding %d by %s: %w", findingID, agentID, err)
	}
	return n > 0, nil
}

func scanDispute(row rowScanner) (*game.Dispute, error) {
	var (
		id, findingID                            int64
		gameID, disputerAgentID, reason           string
		status, refereeVerdict                    string
		round, pointsAwarded                      int
		createdAt                                 time.Time
		resolvedAt                                sql.NullTime
	)
	if err := row.Scan(
		&id, &gameID, &findingID, &disputerAgentID, &round, &reason, &status,
		&refereeVerdict, &pointsAwarded, &createdAt, &resolvedAt,
	); err != nil {
		return nil, err
	}
	return &game.Dispute{
		ID: id, GameID: gameID, FindingID: findingID, DisputerAgentID: disputerAgentID,
		Round: round, Reason: reason, Status: game.DisputeStatus(status),
		RefereeVerdict: refereeVerdict, PointsAwarded: pointsAwarded,
		CreatedAt: createdAt, ResolvedAt: optTime(resolvedAt),
	}, nil
}

func scanDisputes(rows *sql.Rows) ([]*game.Dispute, error) {
	var out []*game.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
