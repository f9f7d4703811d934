package game

import (
	"fmt"
	"time"
)

// DefaultMaxRounds is the round cap applied when setup is given no
// max-rounds value. NewGame does not substitute it: a MaxRounds of 0
// (NoRoundLimit) means unlimited rounds.
const DefaultMaxRounds = 3

// NoRoundLimit is the max-rounds sentinel meaning "no cap".
const NoRoundLimit = 0

// Game is the aggregate root: a single tournament run against one project
// reference. Config fields are immutable after NewGame; everything else is
// mutated exclusively through the methods below.
type Game struct {
	ID     string
	Config GameConfig

	Phase         Phase
	Round         int
	PhaseDeadline *time.Time
	WinnerAgentID string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// GameConfig holds the immutable-after-creation configuration of a game.
type GameConfig struct {
	Project             string
	Category            Category
	FocusPrompt         string
	TargetScore         int
	HuntDuration        time.Duration
	ReviewDuration      time.Duration
	NumAgents           int
	MaxRounds           int
}

// NewGame validates config and constructs a fresh game in PhaseSetup.
func NewGame(id string, cfg GameConfig, now time.Time) (*Game, error) {
	if cfg.TargetScore < 1 {
		return nil, fmt.Errorf("%w: target score must be >= 1", ErrInvalidPrecondition)
	}
	if cfg.NumAgents < 1 {
		return nil, fmt.Errorf("%w: number of agents must be >= 1", ErrInvalidPrecondition)
	}
	if !ValidCategory(cfg.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidPrecondition, cfg.Category)
	}
	if cfg.MaxRounds < 0 {
		return nil, fmt.Errorf("%w: max rounds must be >= 0", ErrInvalidPrecondition)
	}
	if cfg.HuntDuration <= 0 || cfg.ReviewDuration <= 0 {
		return nil, fmt.Errorf("%w: hunt and review durations must be positive", ErrInvalidPrecondition)
	}

	return &Game{
		ID:        id,
		Config:    cfg,
		Phase:     PhaseSetup,
		Round:     0,
		CreatedAt: now,
	}, nil
}

// Rehydrate reconstructs a Game from persisted fields without re-validating
// config (the row was valid when written). Used exclusively by repo.Game.
func Rehydrate(id string, cfg GameConfig, phase Phase, round int, deadline *time.Time, winnerAgentID string, createdAt time.Time, completedAt *time.Time) *Game {
	return &Game{
		ID:            id,
		Config:        cfg,
		Phase:         phase,
		Round:         round,
		PhaseDeadline: deadline,
		WinnerAgentID: winnerAgentID,
		CreatedAt:     createdAt,
		CompletedAt:   completedAt,
	}
}

// StartHunt transitions Setup|ReviewScoring -> Hunt, incrementing the round
// counter and arming the phase deadline.
func (g *Game) StartHunt(now time.Time) error {
	if g.Phase != PhaseSetup && g.Phase != PhaseReviewScoring {
		return NewPhaseError(g.Phase, "setup or review_scoring")
	}
	g.Round++
	deadline := now.Add(g.Config.HuntDuration)
	g.Phase = PhaseHunt
	g.PhaseDeadline = &deadline
	return nil
}

// StartHuntScoring transitions Hunt -> HuntScoring and clears the deadline.
// It is legal regardless of whether every agent has signalled done — a
// timeout counts as completion.
func (g *Game) StartHuntScoring() error {
	if g.Phase != PhaseHunt {
		return NewPhaseError(g.Phase, "hunt")
	}
	g.Phase = PhaseHuntScoring
	g.PhaseDeadline = nil
	return nil
}

// StartReview transitions HuntScoring -> Review and arms the review deadline.
func (g *Game) StartReview(now time.Time) error {
	if g.Phase != PhaseHuntScoring {
		return NewPhaseError(g.Phase, "hunt_scoring")
	}
	deadline := now.Add(g.Config.ReviewDuration)
	g.Phase = PhaseReview
	g.PhaseDeadline = &deadline
	return nil
}

// StartReviewScoring transitions Review -> ReviewScoring and clears the
// deadline.
func (g *Game) StartReviewScoring() error {
	if g.Phase != PhaseReview {
		return NewPhaseError(g.Phase, "review")
	}
	g.Phase = PhaseReviewScoring
	g.PhaseDeadline = nil
	return nil
}

// Complete transitions ReviewScoring -> Complete (terminal), recording the
// winner and completion time. Only legal from ReviewScoring, and only ever
// called when CheckWinner decided GAME_COMPLETE.
func (g *Game) Complete(now time.Time, winnerAgentID string) error {
	if g.Phase != PhaseReviewScoring {
		return NewPhaseError(g.Phase, "review_scoring")
	}
	g.Phase = PhaseComplete
	g.WinnerAgentID = winnerAgentID
	g.CompletedAt = &now
	return nil
}

// DeadlineExpired reports whether now is at or past the current phase
// deadline. A game with no deadline (untimed phase) never expires.
func (g *Game) DeadlineExpired(now time.Time) bool {
	if g.PhaseDeadline == nil {
		return false
	}
	return !now.Before(*g.PhaseDeadline)
}

// RemainingSeconds returns the whole seconds left before the phase
// deadline, clamped to zero once it has passed. Zero for untimed phases.
func (g *Game) RemainingSeconds(now time.Time) int {
	if g.PhaseDeadline == nil {
		return 0
	}
	remaining := g.PhaseDeadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}

// RoundCapReached reports whether the configured max-rounds has been hit.
// MaxRounds == NoRoundLimit means the cap path is never taken.
func (g *Game) RoundCapReached() bool {
	return g.Config.MaxRounds != NoRoundLimit && g.Round >= g.Config.MaxRounds
}
