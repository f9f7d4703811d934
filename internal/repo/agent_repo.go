package repo

import (
	"database/sql"
	"fmt"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/names"
)

// AgentRepo persists game.Agent rows.
type AgentRepo struct{}

// NewAgentRepo constructs an AgentRepo.
func NewAgentRepo() *AgentRepo { return &AgentRepo{} }

// Create inserts a fresh agent row.
func (r *AgentRepo) Create(ex Execer, a *game.Agent) error {
	_, err := ex.Exec(`
		INSERT INTO agents (
			id, game_id, short_name, score, findings_submitted, findings_valid,
			findings_false, findings_duplicate, disputes_won, disputes_lost,
			hunt_done_round, review_done_round, status, last_heartbeat
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.GameID, a.ShortName, a.Score, a.FindingsSubmitted, a.FindingsValid,
		a.FindingsFalse, a.FindingsDuplicate, a.DisputesWon, a.DisputesLost,
		a.HuntDoneRound, a.ReviewDoneRound, string(a.Status), nullTime(a.LastHeartbeat),
	)
	if err != nil {
		return fmt.Errorf("insert agent %s: %w", a.ID, err)
	}
	return nil
}

// CreateMany draws n unique short names from the fixed pool, constructs n
// fresh agents for gameID, and inserts them all within ex.
func (r *AgentRepo) CreateMany(ex Execer, gameID string, n int) ([]*game.Agent, error) {
	drawn, err := names.Draw(n)
	if err != nil {
		return nil, err
	}

	agents := make([]*game.Agent, 0, n)
	for _, name := range drawn {
		a := game.NewAgent(gameID, name)
		if err := r.Create(ex, a); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, nil
}

// Update persists every mutable field of a.
func (r *AgentRepo) Update(ex Execer, a *game.Agent) error {
	_, err := ex.Exec(`
		UPDATE agents SET
			score = ?, findings_submitted = ?, findings_valid = ?, findings_false = ?,
			findings_duplicate = ?, disputes_won = ?, disputes_lost = ?,
			hunt_done_round = ?, review_done_round = ?, status = ?, last_heartbeat = ?
		WHERE id = ?
	`,
		a.Score, a.FindingsSubmitted, a.FindingsValid, a.FindingsFalse,
		a.FindingsDuplicate, a.DisputesWon, a.DisputesLost,
		a.HuntDoneRound, a.ReviewDoneRound, string(a.Status), nullTime(a.LastHeartbeat), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update agent %s: %w", a.ID, err)
	}
	return nil
}

const agentColumns = `
	id, game_id, short_name, score, findings_submitted, findings_valid,
	findings_false, findings_duplicate, disputes_won, disputes_lost,
	hunt_done_round, review_done_round, status, last_heartbeat
`

// FindByID loads an agent by id.
func (r *AgentRepo) FindByID(ex Execer, id string) (*game.Agent, error) {
	row := ex.QueryRow(`SELECT `+agentColumns+` FROM agents WHERE id = ?`, id)
	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("agent %s: %w", id, game.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load agent %s: %w", id, err)
	}
	return a, nil
}

// FindByGameID lists every agent in gameID.
func (r *AgentRepo) FindByGameID(ex Execer, gameID string) ([]*game.Agent, error) {
	rows, err := ex.Query(`SELECT `+agentColumns+` FROM agents WHERE game_id = ? ORDER BY short_name`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list agents for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

// FindActive lists agents in gameID whose status is Active.
func (r *AgentRepo) FindActive(ex Execer, gameID string) ([]*game.Agent, error) {
	rows, err := ex.Query(`SELECT `+agentColumns+` FROM agents WHERE game_id = ? AND status = ? ORDER BY short_name`, gameID, string(game.AgentActive))
	if err != nil {
		return nil, fmt.Errorf("list active agents for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

// Scoreboard lists agents ordered by score desc, then findings_valid desc —
// the ranking CheckWinner and the status CLI command both read.
func (r *AgentRepo) Scoreboard(ex Execer, gameID string) ([]*game.Agent, error) {
	rows, err := ex.Query(`
		SELECT `+agentColumns+` FROM agents
		WHERE game_id = ?
		ORDER BY score DESC, findings_valid DESC, short_name ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("scoreboard for game %s: %w", gameID, err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

// GetPendingHuntAgents lists active agents that have not yet signalled
// hunt-done for round.
func (r *AgentRepo) GetPendingHuntAgents(ex Execer, gameID string, round int) ([]*game.Agent, error) {
	rows, err := ex.Query(`
		SELECT `+agentColumns+` FROM agents
		WHERE game_id = ? AND status = ? AND hunt_done_round < ?
		ORDER BY short_name
	`, gameID, string(game.AgentActive), round)
	if err != nil {
		return nil, fmt.Errorf("pending hunt agents for game %s round %d: %w", gameID, round, err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

// GetPendingReviewAgents lists active agents that have not yet signalled
// review-done for round.
func (r *AgentRepo) GetPendingReviewAgents(ex Execer, gameID string, round int) ([]*game.Agent, error) {
	rows, err := ex.Query(`
		SELECT `+agentColumns+` FROM agents
		WHERE game_id = ? AND status = ? AND review_done_round < ?
		ORDER BY short_name
	`, gameID, string(game.AgentActive), round)
	if err != nil {
		return nil, fmt.Errorf("pending review agents for game %s round %d: %w", gameID, round, err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

func scanAgent(row rowScanner) (*game.Agent, error) {
	var (
		id, gameID, shortName, status                                      string
		score, submitted, valid, falseN, dup, won, lost, huntDone, revDone int
		lastHeartbeat                                                      sql.NullTime
	)
	if err := row.Scan(
		&id, &gameID, &shortName, &score, &submitted, &valid, &falseN, &dup,
		&won, &lost, &huntDone, &revDone, &status, &lastHeartbeat,
	); err != nil {
		return nil, err
	}
	return &game.Agent{
		ID: id, GameID: gameID, ShortName: shortName,
		Score: score, FindingsSubmitted: submitted, FindingsValid: valid,
		FindingsFalse: falseN, FindingsDuplicate: dup, DisputesWon: won, DisputesLost: lost,
		HuntDoneRound: huntDone, ReviewDoneRound: revDone,
		Status: game.AgentStatus(status), LastHeartbeat: optTime(lastHeartbeat),
	}, nil
}

func scanAgents(rows *sql.Rows) ([]*game.Agent, error) {
	var out []*game.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
