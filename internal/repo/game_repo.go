package repo

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bones-game/bones/internal/game"
)

// GameRepo persists game.Game rows.
type GameRepo struct{}

// NewGameRepo constructs a GameRepo. It holds no state; all methods take an
// Execer explicitly so callers control whether a write runs standalone or
// inside a transaction.
func NewGameRepo() *GameRepo { return &GameRepo{} }

// Create inserts a fresh game row.
func (r *GameRepo) Create(ex Execer, g *game.Game) error {
	_, err := ex.Exec(`
		INSERT INTO games (
			id, project, category, focus_prompt, target_score, hunt_duration_seconds,
			review_duration_seconds, num_agents, max_rounds, phase, round,
			phase_deadline, winner_agent_id, created_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.ID, g.Config.Project, string(g.Config.Category), g.Config.FocusPrompt, g.Config.TargetScore,
		int(g.Config.HuntDuration.Seconds()), int(g.Config.ReviewDuration.Seconds()), g.Config.NumAgents,
		g.Config.MaxRounds, string(g.Phase), g.Round, nullTime(g.PhaseDeadline), g.WinnerAgentID,
		g.CreatedAt, nullTime(g.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

// Update persists every mutable field of g.
func (r *GameRepo) Update(ex Execer, g *game.Game) error {
	_, err := ex.Exec(`
		UPDATE games SET phase = ?, round = ?, phase_deadline = ?, winner_agent_id = ?, completed_at = ?
		WHERE id = ?
	`, string(g.Phase), g.Round, nullTime(g.PhaseDeadline), g.WinnerAgentID, nullTime(g.CompletedAt), g.ID)
	if err != nil {
		return fmt.Errorf("update game %s: %w", g.ID, err)
	}
	return nil
}

// FindByID loads a game by id, returning game.ErrNotFound if absent.
func (r *GameRepo) FindByID(ex Execer, id string) (*game.Game, error) {
	row := ex.QueryRow(`
		SELECT id, project, category, focus_prompt, target_score, hunt_duration_seconds,
		       review_duration_seconds, num_agents, max_rounds, phase, round,
		       phase_deadline, winner_agent_id, created_at, completed_at
		FROM games WHERE id = ?
	`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game %s: %w", id, game.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return g, nil
}

// FindAll lists every game, newest first.
func (r *GameRepo) FindAll(ex Execer) ([]*game.Game, error) {
	rows, err := ex.Query(`
		SELECT id, project, category, focus_prompt, target_score, hunt_duration_seconds,
		       review_duration_seconds, num_agents, max_rounds, phase, round,
		       phase_deadline, winner_agent_id, created_at, completed_at
		FROM games ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// FindActiveByProject lists games for project whose phase is not Complete,
// newest first.
func (r *GameRepo) FindActiveByProject(ex Execer, project string) ([]*game.Game, error) {
	rows, err := ex.Query(`
		SELECT id, project, category, focus_prompt, target_score, hunt_duration_seconds,
		       review_duration_seconds, num_agents, max_rounds, phase, round,
		       phase_deadline, winner_agent_id, created_at, completed_at
		FROM games WHERE project = ? AND phase != ? ORDER BY created_at DESC
	`, project, string(game.PhaseComplete))
	if err != nil {
		return nil, fmt.Errorf("list active games for %s: %w", project, err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// Delete removes a game and, via ON DELETE CASCADE, its agents, findings,
// and disputes.
func (r *GameRepo) Delete(ex Execer, id string) error {
	_, err := ex.Exec(`DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*game.Game, error) {
	var (
		id, project, category, focusPrompt, phase, winnerAgentID string
		targetScore, huntSeconds, reviewSeconds, numAgents       int
		maxRounds, round                                         int
		phaseDeadline, completedAt                               sql.NullTime
		createdAt                                                time.Time
	)
	if err := row.Scan(
		&id, &project, &category, &focusPrompt, &targetScore, &huntSeconds,
		&reviewSeconds, &numAgents, &maxRounds, &phase, &round,
		&phaseDeadline, &winnerAgentID, &createdAt, &completedAt,
	); err != nil {
		return nil, err
	}

	cfg := game.GameConfig{
		Project:        project,
		Category:       game.Category(category),
		FocusPrompt:    focusPrompt,
		TargetScore:    targetScore,
		HuntDuration:   time.Duration(huntSeconds) * time.Second,
		ReviewDuration: time.Duration(reviewSeconds) * time.Second,
		NumAgents:      numAgents,
		MaxRounds:      maxRounds,
	}

	return game.Rehydrate(id, cfg, game.Phase(phase), round, optTime(phaseDeadline), winnerAgentID, createdAt, optTime(completedAt)), nil
}

func scanGames(rows *sql.Rows) ([]*game.Game, error) {
	var out []*game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func optTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
