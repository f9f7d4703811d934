package scorer

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/repo"
	"github.com/bones-game/bones/internal/store"
)

type harness struct {
	store    *store.Store
	games    *repo.GameRepo
	agents   *repo.AgentRepo
	findings *repo.FindingRepo
	disputes *repo.DisputeRepo
	scorer   *Scorer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	h := &harness{
		store:    st,
		games:    repo.NewGameRepo(),
		agents:   repo.NewAgentRepo(),
		findings: repo.NewFindingRepo(),
		disputes: repo.NewDisputeRepo(),
	}
	h.scorer = New(st, h.games, h.agents, h.findings, h.disputes)
	return h
}

// seedGame creates a game in PhaseHunt round 1 with two active agents, and
// returns the game plus both agent ids.
func (h *harness) seedGame(t *testing.T) (*game.Game, string, string) {
	t.Helper()
	cfg := game.GameConfig{
		Project:        "example/repo",
		Category:       game.CategoryBugs,
		TargetScore:    10,
		HuntDuration:   time.Minute,
		ReviewDuration: time.Minute,
		NumAgents:      2,
		MaxRounds:      game.DefaultMaxRounds,
	}
	g, err := game.NewGame("g1", cfg, time.Now())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := g.StartHunt(time.Now()); err != nil {
		t.Fatalf("StartHunt: %v", err)
	}

	var agentIDs []string
	err = h.store.Transaction(func(tx *sql.Tx) error {
		if err := h.games.Create(tx, g); err != nil {
			return err
		}
		agents, err := h.agents.CreateMany(tx, g.ID, 2)
		if err != nil {
			return err
		}
		for _, a := range agents {
			agentIDs = append(agentIDs, a.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return g, agentIDs[0], agentIDs[1]
}

func (h *harness) submitFinding(t *testing.T, g *game.Game, agentID, filePath string, lineStart, lineEnd int, description string) *game.Finding {
	t.Helper()
	f, err := game.NewFinding(g.ID, agentID, g.Round, filePath, lineStart, lineEnd, description, "evidence", time.Now())
	if err != nil {
		t.Fatalf("NewFinding: %v", err)
	}
	f.PatternHash = PatternHash(f.FilePath, f.LineStart, f.LineEnd, f.Description)

	err = h.store.Transaction(func(tx *sql.Tx) error {
		return h.findings.Create(tx, f)
	})
	if err != nil {
		t.Fatalf("create finding: %v", err)
	}
	return f
}

func (h *harness) loadAgent(t *testing.T, agentID string) *game.Agent {
	t.Helper()
	a, err := h.agents.FindByID(h.store.Conn(), agentID)
	if err != nil {
		t.Fatalf("FindByID agent: %v", err)
	}
	return a
}

func TestApplyFindingValidationValid(t *testing.T) {
	h := newHarness(t)
	g, agentA, _ := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "nil pointer dereference on config")

	result, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID:   f.ID,
		GameID:      g.ID,
		Verdict:     game.VerdictValid,
		Explanation: "confirmed",
		Confidence:  game.ConfidenceHigh,
	})
	if err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}
	if result.FinalVerdict != game.VerdictValid || result.PointsAwarded != game.PointsValidFinding {
		t.Fatalf("expected valid verdict with %d points, got %+v", game.PointsValidFinding, result)
	}

	agent := h.loadAgent(t, agentA)
	if agent.Score != game.PointsValidFinding || agent.FindingsValid != 1 {
		t.Fatalf("expected agent score=%d validCount=1, got %+v", game.PointsValidFinding, agent)
	}
}

func TestApplyFindingValidationFalse(t *testing.T) {
	h := newHarness(t)
	g, agentA, _ := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "not actually a bug")

	result, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID:   f.ID,
		GameID:      g.ID,
		Verdict:     game.VerdictFalse,
		Explanation: "works as intended",
	})
	if err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}
	if result.PointsAwarded != game.PointsFalseFlag {
		t.Fatalf("expected %d points, got %d", game.PointsFalseFlag, result.PointsAwarded)
	}

	agent := h.loadAgent(t, agentA)
	if agent.Score != game.PointsFalseFlag || agent.FindingsFalse != 1 {
		t.Fatalf("expected agent score=%d falseCount=1, got %+v", game.PointsFalseFlag, agent)
	}
}

func TestApplyFindingValidationDuplicateReCheck(t *testing.T) {
	h := newHarness(t)
	g, agentA, agentB := h.seedGame(t)

	first := h.submitFinding(t, g, agentA, "main.go", 10, 12, "nil pointer dereference on config load")
	second := h.submitFinding(t, g, agentB, "main.go", 10, 12, "nil pointer dereference on config load")

	// The first referee validates agentA's finding as Valid.
	if _, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID:   first.ID,
		GameID:      g.ID,
		Verdict:     game.VerdictValid,
		Explanation: "confirmed",
	}); err != nil {
		t.Fatalf("validate first: %v", err)
	}

	// A second referee tries to validate agentB's colliding finding as Valid
	// too — the in-transaction pattern-hash re-check must downgrade it to a
	// duplicate instead of awarding a second Valid.
	result, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID:   second.ID,
		GameID:      g.ID,
		Verdict:     game.VerdictValid,
		Explanation: "confirmed",
	})
	if err != nil {
		t.Fatalf("validate second: %v", err)
	}
	if result.FinalVerdict != game.VerdictDuplicate {
		t.Fatalf("expected the second validation to be downgraded to duplicate, got %s", result.FinalVerdict)
	}
	if result.DuplicateOfID != first.ID {
		t.Fatalf("expected duplicate-of %d, got %d", first.ID, result.DuplicateOfID)
	}
	if result.PointsAwarded != game.PointsDuplicate {
		t.Fatalf("expected %d points, got %d", game.PointsDuplicate, result.PointsAwarded)
	}

	agentBLoaded := h.loadAgent(t, agentB)
	if agentBLoaded.FindingsDuplicate != 1 || agentBLoaded.FindingsValid != 0 {
		t.Fatalf("expected agentB to be recorded as a duplicate, not valid, got %+v", agentBLoaded)
	}
}

func TestApplyFindingValidationWithheldUntilVerified(t *testing.T) {
	h := newHarness(t)
	g, agentA, _ := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "subtle race condition")

	result, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID:         f.ID,
		GameID:            g.ID,
		Verdict:           game.VerdictValid,
		Explanation:       "plausible but needs a second look",
		NeedsVerification: true,
	})
	if err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}
	if result.PointsAwarded != 0 {
		t.Fatalf("expected points withheld, got %d", result.PointsAwarded)
	}

	agent := h.loadAgent(t, agentA)
	if agent.Score != 0 || agent.FindingsValid != 0 {
		t.Fatalf("expected no stats recorded while verification is pending, got %+v", agent)
	}
}

func TestApplyVerificationConfirmAwardsWithheldPoints(t *testing.T) {
	h := newHarness(t)
	g, agentA, _ := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "subtle race condition")

	if _, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID: f.ID, GameID: g.ID, Verdict: game.VerdictValid,
		Explanation: "needs verification", NeedsVerification: true,
	}); err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}

	verified, err := h.scorer.ApplyVerification(g.ID, f.ID, true, "confirmed independently", "", "")
	if err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}
	if verified.VerificationStatus != game.VerificationConfirmed {
		t.Fatalf("expected confirmed, got %s", verified.VerificationStatus)
	}

	agent := h.loadAgent(t, agentA)
	if agent.Score != game.PointsValidFinding || agent.FindingsValid != 1 {
		t.Fatalf("expected withheld points now awarded, got %+v", agent)
	}
}

func TestApplyVerificationRejectPenalizes(t *testing.T) {
	h := newHarness(t)
	g, agentA, _ := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "subtle race condition")

	if _, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID: f.ID, GameID: g.ID, Verdict: game.VerdictValid,
		Explanation: "needs verification", NeedsVerification: true,
	}); err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}

	if _, err := h.scorer.ApplyVerification(g.ID, f.ID, false, "not reproducible", "not_a_bug", "works as intended"); err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}

	agent := h.loadAgent(t, agentA)
	if agent.Score != game.PointsFalseFlag || agent.FindingsFalse != 1 {
		t.Fatalf("expected false-flag penalty, got %+v", agent)
	}
}

func TestApplyDisputeResolutionSuccessfulRevertsFinder(t *testing.T) {
	h := newHarness(t)
	g, agentA, agentB := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "nil pointer dereference")

	if _, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID: f.ID, GameID: g.ID, Verdict: game.VerdictValid, Explanation: "confirmed",
	}); err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}

	d, err := game.NewDispute(g.ID, f.ID, agentB, g.Round, "this is not actually broken", time.Now())
	if err != nil {
		t.Fatalf("NewDispute: %v", err)
	}
	if err := h.store.Transaction(func(tx *sql.Tx) error { return h.disputes.Create(tx, d) }); err != nil {
		t.Fatalf("create dispute: %v", err)
	}

	dispute, finding, err := h.scorer.ApplyDisputeResolution(g.ID, d.ID, true, "dispute sustained")
	if err != nil {
		t.Fatalf("ApplyDisputeResolution: %v", err)
	}
	if dispute.Status != game.DisputeSuccessful {
		t.Fatalf("expected successful dispute, got %s", dispute.Status)
	}
	if finding.Status != game.FindingFalse {
		t.Fatalf("expected finding revoked to false, got %s", finding.Status)
	}

	finder := h.loadAgent(t, agentA)
	if finder.Score != game.PointsFalseFlag || finder.FindingsValid != 0 || finder.FindingsFalse != 1 {
		t.Fatalf("expected finder's valid finding reverted to false, got %+v", finder)
	}

	disputer := h.loadAgent(t, agentB)
	if disputer.Score != game.PointsDisputeWon || disputer.DisputesWon != 1 {
		t.Fatalf("expected disputer awarded dispute-won points, got %+v", disputer)
	}
}

func TestApplyDisputeResolutionFailedLeavesFindingValid(t *testing.T) {
	h := newHarness(t)
	g, agentA, agentB := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "nil pointer dereference")

	if _, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID: f.ID, GameID: g.ID, Verdict: game.VerdictValid, Explanation: "confirmed",
	}); err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}

	d, _ := game.NewDispute(g.ID, f.ID, agentB, g.Round, "disagree", time.Now())
	if err := h.store.Transaction(func(tx *sql.Tx) error { return h.disputes.Create(tx, d) }); err != nil {
		t.Fatalf("create dispute: %v", err)
	}

	dispute, finding, err := h.scorer.ApplyDisputeResolution(g.ID, d.ID, false, "dispute rejected")
	if err != nil {
		t.Fatalf("ApplyDisputeResolution: %v", err)
	}
	if dispute.Status != game.DisputeFailed {
		t.Fatalf("expected failed dispute, got %s", dispute.Status)
	}
	if finding.Status != game.FindingValid {
		t.Fatalf("expected finding to remain valid, got %s", finding.Status)
	}

	disputer := h.loadAgent(t, agentB)
	if disputer.Score != game.PointsDisputeLost || disputer.DisputesLost != 1 {
		t.Fatalf("expected disputer penalized, got %+v", disputer)
	}
}

func TestCheckForDuplicate(t *testing.T) {
	h := newHarness(t)
	g, agentA, _ := h.seedGame(t)
	f := h.submitFinding(t, g, agentA, "main.go", 10, 12, "nil pointer dereference on config")

	if _, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID: f.ID, GameID: g.ID, Verdict: game.VerdictValid, Explanation: "confirmed",
	}); err != nil {
		t.Fatalf("ApplyFindingValidation: %v", err)
	}

	match, err := h.scorer.CheckForDuplicate(g.ID, f.PatternHash)
	if err != nil {
		t.Fatalf("CheckForDuplicate: %v", err)
	}
	if match == nil || match.ID != f.ID {
		t.Fatalf("expected to find the now-valid finding, got %v", match)
	}

	noMatch, err := h.scorer.CheckForDuplicate(g.ID, "nonexistent-hash")
	if err != nil {
		t.Fatalf("CheckForDuplicate: %v", err)
	}
	if noMatch != nil {
		t.Fatalf("expected no match, got %+v", noMatch)
	}
}

func TestApplyFindingValidationUnknownFinding(t *testing.T) {
	h := newHarness(t)
	g, _, _ := h.seedGame(t)

	_, err := h.scorer.ApplyFindingValidation(ValidationInput{
		FindingID: 9999, GameID: g.ID, Verdict: game.VerdictValid, Explanation: "x",
	})
	if !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
