// Package orchestrator is the public façade: it owns the store's lifecycle
// and composes the repositories, Scorer, PhaseCoordinator, and
// SubmissionService into the operations the CLI and GameRunner call.
package orchestrator

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/phase"
	"github.com/bones-game/bones/internal/repo"
	"github.com/bones-game/bones/internal/scorer"
	"github.com/bones-game/bones/internal/store"
	"github.com/bones-game/bones/internal/submission"
	"github.com/google/uuid"
)

// Orchestrator composes the engine's components and owns the store for the
// lifetime of one CLI invocation or one GameRunner run.
type Orchestrator struct {
	Store       *store.Store
	Games       *repo.GameRepo
	Agents      *repo.AgentRepo
	Findings    *repo.FindingRepo
	Disputes    *repo.DisputeRepo
	Scorer      *scorer.Scorer
	Phase       *phase.Coordinator
	Submission  *submission.Service

	now func() time.Time
}

// Open opens the store under dataDir and wires every component on top of
// it. Callers must call Close when done.
func Open(dataDir string) (*Orchestrator, error) {
	st, err := store.Open(dataDir)
	if err != nil {
		return nil, err
	}

	games := repo.NewGameRepo()
	agents := repo.NewAgentRepo()
	findings := repo.NewFindingRepo()
	disputes := repo.NewDisputeRepo()

	sc := scorer.New(st, games, agents, findings, disputes)
	pc := phase.New(st, games, agents)
	sub := submission.New(st, games, agents, findings, disputes, sc)

	return &Orchestrator{
		Store: st, Games: games, Agents: agents, Findings: findings, Disputes: disputes,
		Scorer: sc, Phase: pc, Submission: sub, now: time.Now,
	}, nil
}

// Close releases the underlying store.
func (o *Orchestrator) Close() error {
	return o.Store.Close()
}

// NewGameInput bundles the parameters the setup CLI command collects.
type NewGameInput struct {
	Project        string
	Category       game.Category
	FocusPrompt    string
	TargetScore    int
	HuntDuration   time.Duration
	ReviewDuration time.Duration
	NumAgents      int
	MaxRounds      int
}

// NewGameResult is what CreateGame returns — the game plus its freshly
// drawn agent roster, ready for the setup command's JSON payload.
type NewGameResult struct {
	Game   *game.Game
	Agents []*game.Agent
}

// CreateGame creates a fresh game in Setup along with its agent roster,
// all in one transaction.
func (o *Orchestrator) CreateGame(in NewGameInput) (*NewGameResult, error) {
	cfg := game.GameConfig{
		Project:        in.Project,
		Category:       in.Category,
		FocusPrompt:    in.FocusPrompt,
		TargetScore:    in.TargetScore,
		HuntDuration:   in.HuntDuration,
		ReviewDuration: in.ReviewDuration,
		NumAgents:      in.NumAgents,
		MaxRounds:      in.MaxRounds,
	}

	var result *NewGameResult
	err := o.Store.Transaction(func(tx *sql.Tx) error {
		id := uuid.NewString()
		g, err := game.NewGame(id, cfg, o.now())
		if err != nil {
			return err
		}
		if err := o.Games.Create(tx, g); err != nil {
			return err
		}
		created, err := o.Agents.CreateMany(tx, g.ID, in.NumAgents)
		if err != nil {
			return err
		}
		result = &NewGameResult{Game: g, Agents: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GameStatus is the payload the status CLI command reports.
type GameStatus struct {
	Game       *game.Game
	Scoreboard []*game.Agent
}

// Status loads a game and its current scoreboard.
func (o *Orchestrator) Status(gameID string) (*GameStatus, error) {
	conn := o.Store.Conn()
	g, err := o.Games.FindByID(conn, gameID)
	if err != nil {
		return nil, err
	}
	board, err := o.Agents.Scoreboard(conn, gameID)
	if err != nil {
		return nil, err
	}
	return &GameStatus{Game: g, Scoreboard: board}, nil
}

// FindingFilter narrows the findings CLI command's listing by round, status,
// and agent.
type FindingFilter struct {
	Round   *int
	Status  game.FindingStatus
	AgentID string
}

// ListFindings lists findings recorded for gameID, filtered in-memory by
// any non-zero field of filter.
func (o *Orchestrator) ListFindings(gameID string, filter FindingFilter) ([]*game.Finding, error) {
	conn := o.Store.Conn()
	if _, err := o.Games.FindByID(conn, gameID); err != nil {
		return nil, err
	}
	all, err := o.Findings.FindAllByGame(conn, gameID)
	if err != nil {
		return nil, fmt.Errorf("list findings for game %s: %w", gameID, err)
	}

	out := make([]*game.Finding, 0, len(all))
	for _, f := range all {
		if filter.Round != nil && f.Round != *filter.Round {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.AgentID != "" && f.AgentID != filter.AgentID {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// DisputeFilter narrows the disputes CLI command's listing.
type DisputeFilter struct {
	Round   *int
	Status  game.DisputeStatus
	AgentID string
}

// ListDisputes lists disputes recorded for gameID, filtered in-memory by
// any non-zero field of filter.
func (o *Orchestrator) ListDisputes(gameID string, filter DisputeFilter) ([]*game.Dispute, error) {
	conn := o.Store.Conn()
	if _, err := o.Games.FindByID(conn, gameID); err != nil {
		return nil, err
	}
	all, err := o.Disputes.FindAllByGame(conn, gameID)
	if err != nil {
		return nil, fmt.Errorf("list disputes for game %s: %w", gameID, err)
	}

	out := make([]*game.Dispute, 0, len(all))
	for _, d := range all {
		if filter.Round != nil && d.Round != *filter.Round {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.AgentID != "" && d.DisputerAgentID != filter.AgentID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
