// Package phase implements the game's phase state machine: legal
// transitions, deadline-driven "check" queries, and winner determination.
package phase

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/repo"
	"github.com/bones-game/bones/internal/store"
)

// ScoreEntry is one row of a reported scoreboard.
type ScoreEntry struct {
	AgentID       string
	ShortName     string
	Score         int
	FindingsValid int
}

// WinnerResult is the result of CheckWinner, returned regardless of which
// branch of the winner-determination algorithm was taken.
type WinnerResult struct {
	Action      game.WinnerAction
	WinnerID    string
	Reason      string
	FinalScores []ScoreEntry
}

// CheckResult is the non-mutating "check" tuple: compares wall-clock to the
// phase deadline and the pending-agent set, without mutating anything.
type CheckResult struct {
	Round             int
	TimeExpired       bool
	RemainingSeconds  int
	AllAgentsFinished bool
	ReadyForScoring   bool
	Pending           []string
}

// Coordinator drives legal phase transitions and persists the result.
type Coordinator struct {
	store    *store.Store
	games    *repo.GameRepo
	agents   *repo.AgentRepo
	now      func() time.Time
	randIntn func(n int) (int, error)
}

// New constructs a Coordinator. now and randIntn default to time.Now and a
// crypto/rand-backed uniform pick; tests may override both for determinism.
func New(st *store.Store, games *repo.GameRepo, agents *repo.AgentRepo) *Coordinator {
	return &Coordinator{store: st, games: games, agents: agents, now: time.Now, randIntn: cryptoRandIntn}
}

// WithClock overrides the coordinator's time source.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// WithRand overrides the coordinator's tiebreak RNG. Test suites must mock
// this to make the max-rounds tiebreaker deterministic.
func (c *Coordinator) WithRand(randIntn func(n int) (int, error)) *Coordinator {
	c.randIntn = randIntn
	return c
}

func cryptoRandIntn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: randIntn requires n > 0, got %d", game.ErrInvalidPrecondition, n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("draw random tiebreak index: %w", err)
	}
	return int(v.Int64()), nil
}

// StartHunt transitions Setup|ReviewScoring -> Hunt and persists the game.
func (c *Coordinator) StartHunt(gameID string) (*game.Game, error) {
	return c.transition(gameID, func(g *game.Game) error { return g.StartHunt(c.now()) })
}

// StartHuntScoring transitions Hunt -> HuntScoring and persists the game.
func (c *Coordinator) StartHuntScoring(gameID string) (*game.Game, error) {
	return c.transition(gameID, func(g *game.Game) error { return g.StartHuntScoring() })
}

// StartReview transitions HuntScoring -> Review and persists the game.
func (c *Coordinator) StartReview(gameID string) (*game.Game, error) {
	return c.transition(gameID, func(g *game.Game) error { return g.StartReview(c.now()) })
}

// StartReviewScoring transitions Review -> ReviewScoring and persists the
// game.
func (c *Coordinator) StartReviewScoring(gameID string) (*game.Game, error) {
	return c.transition(gameID, func(g *game.Game) error { return g.StartReviewScoring() })
}

func (c *Coordinator) transition(gameID string, apply func(g *game.Game) error) (*game.Game, error) {
	var result *game.Game
	err := c.store.Transaction(func(tx *sql.Tx) error {
		g, err := c.games.FindByID(tx, gameID)
		if err != nil {
			return err
		}
		if err := apply(g); err != nil {
			return err
		}
		if err := c.games.Update(tx, g); err != nil {
			return err
		}
		result = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CheckHunt reports the non-mutating Hunt-phase check tuple.
func (c *Coordinator) CheckHunt(gameID string) (*CheckResult, error) {
	return c.check(gameID, game.PhaseHunt, c.agents.GetPendingHuntAgents)
}

// CheckReview reports the non-mutating Review-phase check tuple.
func (c *Coordinator) CheckReview(gameID string) (*CheckResult, error) {
	return c.check(gameID, game.PhaseReview, c.agents.GetPendingReviewAgents)
}

func (c *Coordinator) check(gameID string, want game.Phase, pendingFn func(ex repo.Execer, gameID string, round int) ([]*game.Agent, error)) (*CheckResult, error) {
	conn := c.store.Conn()
	g, err := c.games.FindByID(conn, gameID)
	if err != nil {
		return nil, err
	}
	if g.Phase != want {
		return nil, game.NewPhaseError(g.Phase, string(want))
	}

	pending, err := pendingFn(conn, gameID, g.Round)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pending))
	for _, a := range pending {
		names = append(names, a.ShortName)
	}

	now := c.now()
	timeExpired := g.DeadlineExpired(now)
	allDone := len(pending) == 0

	return &CheckResult{
		Round:             g.Round,
		TimeExpired:       timeExpired,
		RemainingSeconds:  g.RemainingSeconds(now),
		AllAgentsFinished: allDone,
		ReadyForScoring:   allDone || timeExpired,
		Pending:           names,
	}, nil
}

// CheckWinner implements the winner-determination algorithm. On
// GAME_COMPLETE it marks the winning agent and completes the game as part
// of the same transaction.
func (c *Coordinator) CheckWinner(gameID string) (*WinnerResult, error) {
	var result *WinnerResult

	err := c.store.Transaction(func(tx *sql.Tx) error {
		g, err := c.games.FindByID(tx, gameID)
		if err != nil {
			return err
		}
		if g.Phase != game.PhaseReviewScoring {
			return game.NewPhaseError(g.Phase, "review_scoring")
		}

		board, err := c.agents.Scoreboard(tx, gameID)
		if err != nil {
			return err
		}
		scores := toScoreEntries(board)

		var winners []*game.Agent
		for _, a := range board {
			if a.Score >= g.Config.TargetScore {
				winners = append(winners, a)
			}
		}

		switch {
		case len(winners) == 1:
			winner := winners[0]
			if err := c.completeGame(tx, g, winner); err != nil {
				return err
			}
			result = &WinnerResult{Action: game.ActionGameComplete, WinnerID: winner.ID, Reason: fmt.Sprintf("%s reached target score %d", winner.ShortName, g.Config.TargetScore), FinalScores: scores}
			return nil

		case len(winners) > 1:
			result = &WinnerResult{Action: game.ActionTieBreaker, Reason: fmt.Sprintf("%d agents reached target score %d simultaneously", len(winners), g.Config.TargetScore), FinalScores: scores}
			return nil

		case g.Config.MaxRounds != game.NoRoundLimit && g.Round >= g.Config.MaxRounds:
			leader := board[0]
			var tied []*game.Agent
			for _, a := range board {
				if a.Score == leader.Score {
					tied = append(tied, a)
				}
			}
			chosen := leader
			reason := fmt.Sprintf("%s led at round cap %d with score %d", leader.ShortName, g.Config.MaxRounds, leader.Score)
			if len(tied) > 1 {
				idx, err := c.randIntn(len(tied))
				if err != nil {
					return err
				}
				chosen = tied[idx]
				names := make([]string, 0, len(tied))
				for _, a := range tied {
					names = append(names, a.ShortName)
				}
				reason = fmt.Sprintf("round cap %d reached with a tie among %v at score %d; %s chosen by random tiebreaker", g.Config.MaxRounds, names, leader.Score, chosen.ShortName)
			}
			if err := c.completeGame(tx, g, chosen); err != nil {
				return err
			}
			result = &WinnerResult{Action: game.ActionGameComplete, WinnerID: chosen.ID, Reason: reason, FinalScores: scores}
			return nil

		default:
			result = &WinnerResult{Action: game.ActionContinue, Reason: "no agent has reached the target score and the round cap has not been hit", FinalScores: scores}
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Coordinator) completeGame(tx *sql.Tx, g *game.Game, winner *game.Agent) error {
	now := c.now()
	if err := g.Complete(now, winner.ID); err != nil {
		return err
	}
	if err := c.games.Update(tx, g); err != nil {
		return err
	}
	winner.MarkWinner()
	return c.agents.Update(tx, winner)
}

func toScoreEntries(agents []*game.Agent) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(agents))
	for _, a := range agents {
		out = append(out, ScoreEntry{AgentID: a.ID, ShortName: a.ShortName, Score: a.Score, FindingsValid: a.FindingsValid})
	}
	return out
}
