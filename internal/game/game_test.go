package game

import (
	"errors"
	"testing"
	"time"
)

func validConfig() GameConfig {
	return GameConfig{
		Project:        "example/repo",
		Category:       CategoryBugs,
		TargetScore:    10,
		HuntDuration:   time.Minute,
		ReviewDuration: time.Minute,
		NumAgents:      4,
		MaxRounds:      DefaultMaxRounds,
	}
}

func TestNewGameRejectsBadConfig(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		mut  func(c GameConfig) GameConfig
	}{
		{"zero target", func(c GameConfig) GameConfig { c.TargetScore = 0; return c }},
		{"zero agents", func(c GameConfig) GameConfig { c.NumAgents = 0; return c }},
		{"bad category", func(c GameConfig) GameConfig { c.Category = "nonsense"; return c }},
		{"negative max rounds", func(c GameConfig) GameConfig { c.MaxRounds = -1; return c }},
		{"zero hunt duration", func(c GameConfig) GameConfig { c.HuntDuration = 0; return c }},
		{"zero review duration", func(c GameConfig) GameConfig { c.ReviewDuration = 0; return c }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewGame("g1", tc.mut(validConfig()), now); !errors.Is(err, ErrInvalidPrecondition) {
				t.Fatalf("expected ErrInvalidPrecondition, got %v", err)
			}
		})
	}
}

func TestGamePhaseTransitions(t *testing.T) {
	now := time.Now()
	g, err := NewGame("g1", validConfig(), now)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	if err := g.StartHunt(now); err != nil {
		t.Fatalf("StartHunt: %v", err)
	}
	if g.Phase != PhaseHunt || g.Round != 1 {
		t.Fatalf("expected hunt round 1, got phase=%s round=%d", g.Phase, g.Round)
	}
	if g.PhaseDeadline == nil {
		t.Fatal("expected phase deadline to be armed")
	}

	if err := g.StartHuntScoring(); err != nil {
		t.Fatalf("StartHuntScoring: %v", err)
	}
	if g.Phase != PhaseHuntScoring || g.PhaseDeadline != nil {
		t.Fatalf("expected hunt_scoring with cleared deadline, got phase=%s deadline=%v", g.Phase, g.PhaseDeadline)
	}

	if err := g.StartReview(now); err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	if g.Phase != PhaseReview {
		t.Fatalf("expected review, got %s", g.Phase)
	}

	if err := g.StartReviewScoring(); err != nil {
		t.Fatalf("StartReviewScoring: %v", err)
	}
	if g.Phase != PhaseReviewScoring {
		t.Fatalf("expected review_scoring, got %s", g.Phase)
	}

	if err := g.Complete(now, "g1-atlas"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if g.Phase != PhaseComplete || g.WinnerAgentID != "g1-atlas" || g.CompletedAt == nil {
		t.Fatalf("expected complete game with winner, got %+v", g)
	}
}

func TestGamePhaseTransitionsRejectWrongPhase(t *testing.T) {
	now := time.Now()
	g, _ := NewGame("g1", validConfig(), now)

	var perr *PhaseError
	if err := g.StartHuntScoring(); !errors.As(err, &perr) {
		t.Fatalf("expected PhaseError, got %v", err)
	}
	if err := g.StartReview(now); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	if err := g.StartReviewScoring(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	if err := g.Complete(now, "g1-atlas"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
}

func TestGameRoundAdvancesAcrossLoop(t *testing.T) {
	now := time.Now()
	g, _ := NewGame("g1", validConfig(), now)

	_ = g.StartHunt(now)
	_ = g.StartHuntScoring()
	_ = g.StartReview(now)
	_ = g.StartReviewScoring()
	if err := g.StartHunt(now); err != nil {
		t.Fatalf("expected review_scoring -> hunt to be legal, got %v", err)
	}
	if g.Round != 2 {
		t.Fatalf("expected round 2, got %d", g.Round)
	}
}

func TestDeadlineExpired(t *testing.T) {
	now := time.Now()
	g, _ := NewGame("g1", validConfig(), now)

	if g.DeadlineExpired(now) {
		t.Fatal("untimed phase should never expire")
	}

	_ = g.StartHunt(now)
	if g.DeadlineExpired(now) {
		t.Fatal("deadline should not be expired immediately")
	}
	if !g.DeadlineExpired(now.Add(2 * time.Minute)) {
		t.Fatal("deadline should be expired after hunt duration elapses")
	}
}

func TestRemainingSecondsClampsAtZero(t *testing.T) {
	now := time.Now()
	g, _ := NewGame("g1", validConfig(), now)
	_ = g.StartHunt(now)

	if got := g.RemainingSeconds(now.Add(5 * time.Minute)); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := g.RemainingSeconds(now); got <= 0 {
		t.Fatalf("expected positive remaining seconds, got %d", got)
	}
}

func TestRoundCapReached(t *testing.T) {
	cfg := validConfig()
	cfg.MaxRounds = NoRoundLimit
	g, _ := NewGame("g1", cfg, time.Now())
	g.Round = 1000
	if g.RoundCapReached() {
		t.Fatal("MaxRounds == NoRoundLimit must never report the cap as reached")
	}

	cfg.MaxRounds = 3
	g2, _ := NewGame("g2", cfg, time.Now())
	g2.Round = 2
	if g2.RoundCapReached() {
		t.Fatal("round 2 of 3 should not be at cap")
	}
	g2.Round = 3
	if !g2.RoundCapReached() {
		t.Fatal("round 3 of 3 should be at cap")
	}
}
