// Package runner implements GameRunner, the autonomous driver that takes a
// game from Setup to Complete: parallel hunt/review agent fan-out bounded
// by phase deadlines, sequential referee/verifier passes bounded by
// per-operation timeouts, and progress-event emission.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bones-game/bones/internal/events"
	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/llmagent"
	"github.com/bones-game/bones/internal/orchestrator"
)

// Timeouts for the sequential scoring passes.
const (
	RefereeFindingTimeout  = 120 * time.Second
	VerifierFindingTimeout = 90 * time.Second
	RefereeDisputeTimeout  = 90 * time.Second
)

// Runner drives one game end-to-end, emitting progress events as it goes.
type Runner struct {
	orch     *orchestrator.Orchestrator
	driver   llmagent.Driver
	renderer llmagent.Renderer
	bus      *events.Bus

	mu         sync.Mutex
	totalUsage events.Usage
}

// New constructs a Runner wired to an already-open Orchestrator and the
// external LLM driver and prompt renderer.
func New(orch *orchestrator.Orchestrator, driver llmagent.Driver, renderer llmagent.Renderer, bus *events.Bus) *Runner {
	return &Runner{orch: orch, driver: driver, renderer: renderer, bus: bus}
}

// TotalUsage returns the accumulated token/cost usage across every agent
// invocation made so far.
func (r *Runner) TotalUsage() events.Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalUsage
}

func (r *Runner) addUsage(u events.Usage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalUsage.InputTokens += u.InputTokens
	r.totalUsage.OutputTokens += u.OutputTokens
	r.totalUsage.CostUSD += u.CostUSD
}

func (r *Runner) publish(evt events.Event) {
	if r.bus == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	r.bus.Publish(evt)
}

// RunToCompletion drives gameID through successive rounds until
// CheckWinner reports GAME_COMPLETE, emitting the full progress-event
// sequence as it goes.
func (r *Runner) RunToCompletion(ctx context.Context, gameID string) error {
	for {
		status, err := r.orch.Status(gameID)
		if err != nil {
			return err
		}
		g := status.Game

		r.publish(events.Event{Kind: events.RoundStart, GameID: gameID, Round: g.Round + 1})

		if err := r.runHuntPhase(ctx, gameID); err != nil {
			return err
		}
		if err := r.runHuntScoringPhase(ctx, gameID); err != nil {
			return err
		}
		if err := r.runReviewPhase(ctx, gameID); err != nil {
			return err
		}
		if err := r.runReviewScoringPhase(ctx, gameID); err != nil {
			return err
		}

		result, err := r.orch.Phase.CheckWinner(gameID)
		if err != nil {
			return err
		}
		r.publish(events.Event{Kind: events.RoundComplete, GameID: gameID, Reason: result.Reason})

		if result.Action == game.ActionGameComplete {
			r.publish(events.Event{Kind: events.GameComplete, GameID: gameID, AgentID: result.WinnerID, Reason: result.Reason})
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (r *Runner) runHuntPhase(ctx context.Context, gameID string) error {
	g, err := r.orch.Phase.StartHunt(gameID)
	if err != nil {
		return err
	}
	r.publish(events.Event{Kind: events.HuntStart, GameID: gameID, Round: g.Round})

	roster, err := r.orch.Agents.FindActive(r.orch.Store.Conn(), gameID)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(g.Config.HuntDuration)
	phaseCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	r.fanOutAgents(phaseCtx, gameID, g, roster, llmagent.RoleHunter, events.HuntAgentDone, r.renderer.RenderHuntPrompt)

	r.publish(events.Event{Kind: events.HuntEnd, GameID: gameID, Round: g.Round})
	return nil
}

func (r *Runner) runReviewPhase(ctx context.Context, gameID string) error {
	g, err := r.orch.Phase.StartReview(gameID)
	if err != nil {
		return err
	}
	r.publish(events.Event{Kind: events.ReviewStart, GameID: gameID, Round: g.Round})

	roster, err := r.orch.Agents.FindActive(r.orch.Store.Conn(), gameID)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(g.Config.ReviewDuration)
	phaseCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	reviewable, err := r.orch.Findings.FindValid(r.orch.Store.Conn(), gameID)
	if err != nil {
		return err
	}

	render := func(g *game.Game, a *game.Agent) (string, error) {
		own := make([]*game.Finding, 0, len(reviewable))
		for _, f := range reviewable {
			if f.AgentID != a.ID {
				own = append(own, f)
			}
		}
		return r.renderer.RenderReviewPrompt(g, a, own)
	}

	r.fanOutAgents(phaseCtx, gameID, g, roster, llmagent.RoleReviewer, events.ReviewAgentDone, render)

	r.publish(events.Event{Kind: events.ReviewEnd, GameID: gameID, Round: g.Round})
	return nil
}

// fanOutAgents launches one invocation per roster member in parallel,
// sharing phaseCtx's deadline. One agent's error never cancels the others —
// errgroup's context is used purely to propagate the shared deadline, each
// goroutine always returns nil to the group so a sibling failure cannot
// trigger errgroup's own cancellation.
func (r *Runner) fanOutAgents(phaseCtx context.Context, gameID string, g *game.Game, roster []*game.Agent, role llmagent.Role, doneKind events.Kind, render func(*game.Game, *game.Agent) (string, error)) {
	eg, egCtx := errgroup.WithContext(phaseCtx)

	for _, a := range roster {
		agent := a
		eg.Go(func() error {
			prompt, err := render(g, agent)
			if err != nil {
				return nil
			}

			inv := llmagent.Invocation{
				ToolCallID: uuid.New(),
				Role:       role,
				GameID:     gameID,
				AgentID:    agent.ID,
				Round:      g.Round,
				Prompt:     prompt,
				Timeout:    0,
			}

			result, err := r.driver.Invoke(egCtx, inv)
			if err != nil {
				r.publish(events.Event{Kind: doneKind, GameID: gameID, Round: g.Round, AgentID: agent.ID, Reason: err.Error()})
				return nil
			}
			r.addUsage(result.Usage)
			r.publish(events.Event{Kind: doneKind, GameID: gameID, Round: g.Round, AgentID: agent.ID, Usage: result.Usage, Reason: result.AbortedReason})
			return nil
		})
	}

	_ = eg.Wait()
}

func (r *Runner) runHuntScoringPhase(ctx context.Context, gameID string) error {
	g, err := r.orch.Phase.StartHuntScoring(gameID)
	if err != nil {
		return err
	}
	r.publish(events.Event{Kind: events.ScoringStart, GameID: gameID, Round: g.Round})

	pending, err := r.orch.Findings.FindPendingByRound(r.orch.Store.Conn(), gameID, g.Round)
	if err != nil {
		return err
	}
	for _, f := range pending {
		if err := r.runRefereeOnFinding(ctx, gameID, g, f); err != nil {
			return err
		}
	}

	r.publish(events.Event{Kind: events.ScoringEnd, GameID: gameID, Round: g.Round})

	r.publish(events.Event{Kind: events.VerificationStart, GameID: gameID, Round: g.Round})
	pendingVerification, err := r.orch.Findings.FindPendingVerificationByRound(r.orch.Store.Conn(), gameID, g.Round)
	if err != nil {
		return err
	}
	for _, f := range pendingVerification {
		if err := r.runVerifierOnFinding(ctx, gameID, g, f); err != nil {
			return err
		}
	}
	r.publish(events.Event{Kind: events.VerificationEnd, GameID: gameID, Round: g.Round})

	return nil
}

func (r *Runner) runRefereeOnFinding(ctx context.Context, gameID string, g *game.Game, f *game.Finding) error {
	prompt, err := r.renderer.RenderRefereePrompt(g, f)
	if err != nil {
		return fmt.Errorf("render referee prompt for finding %d: %w", f.ID, err)
	}

	opCtx, cancel := context.WithTimeout(ctx, RefereeFindingTimeout)
	defer cancel()

	inv := llmagent.Invocation{ToolCallID: uuid.New(), Role: llmagent.RoleReferee, GameID: gameID, AgentID: f.AgentID, Round: g.Round, Prompt: prompt, Timeout: RefereeFindingTimeout}
	result, err := r.driver.Invoke(opCtx, inv)
	if err != nil {
		return fmt.Errorf("referee invocation for finding %d: %w", f.ID, err)
	}
	r.addUsage(result.Usage)
	r.publish(events.Event{Kind: events.FindingValidated, GameID: gameID, Round: g.Round, FindingID: f.ID, Usage: result.Usage})
	return nil
}

func (r *Runner) runVerifierOnFinding(ctx context.Context, gameID string, g *game.Game, f *game.Finding) error {
	prompt, err := r.renderer.RenderVerifierPrompt(g, f)
	if err != nil {
		return fmt.Errorf("render verifier prompt for finding %d: %w", f.ID, err)
	}

	opCtx, cancel := context.WithTimeout(ctx, VerifierFindingTimeout)
	defer cancel()

	inv := llmagent.Invocation{ToolCallID: uuid.New(), Role: llmagent.RoleVerifier, GameID: gameID, AgentID: f.AgentID, Round: g.Round, Prompt: prompt, Timeout: VerifierFindingTimeout}
	result, err := r.driver.Invoke(opCtx, inv)
	if err != nil {
		return fmt.Errorf("verifier invocation for finding %d: %w", f.ID, err)
	}
	r.addUsage(result.Usage)
	r.publish(events.Event{Kind: events.FindingVerified, GameID: gameID, Round: g.Round, FindingID: f.ID, Usage: result.Usage})
	return nil
}

func (r *Runner) runReviewScoringPhase(ctx context.Context, gameID string) error {
	g, err := r.orch.Phase.StartReviewScoring(gameID)
	if err != nil {
		return err
	}
	r.publish(events.Event{Kind: events.DisputeScoringStart, GameID: gameID, Round: g.Round})

	pending, err := r.orch.Disputes.FindPendingByRound(r.orch.Store.Conn(), gameID, g.Round)
	if err != nil {
		return err
	}
	for _, d := range pending {
		if err := r.runRefereeOnDispute(ctx, gameID, g, d); err != nil {
			return err
		}
	}

	r.publish(events.Event{Kind: events.DisputeScoringEnd, GameID: gameID, Round: g.Round})
	return nil
}

func (r *Runner) runRefereeOnDispute(ctx context.Context, gameID string, g *game.Game, d *game.Dispute) error {
	f, err := r.orch.Findings.FindByID(r.orch.Store.Conn(), gameID, d.FindingID)
	if err != nil {
		return err
	}
	prompt, err := r.renderer.RenderDisputeRefereePrompt(g, d, f)
	if err != nil {
		return fmt.Errorf("render dispute referee prompt for dispute %d: %w", d.ID, err)
	}

	opCtx, cancel := context.WithTimeout(ctx, RefereeDisputeTimeout)
	defer cancel()

	inv := llmagent.Invocation{ToolCallID: uuid.New(), Role: llmagent.RoleReferee, GameID: gameID, AgentID: d.DisputerAgentID, Round: g.Round, Prompt: prompt, Timeout: RefereeDisputeTimeout}
	result, err := r.driver.Invoke(opCtx, inv)
	if err != nil {
		return fmt.Errorf("referee invocation for dispute %d: %w", d.ID, err)
	}
	r.addUsage(result.Usage)
	r.publish(events.Event{Kind: events.DisputeResolved, GameID: gameID, Round: g.Round, DisputeID: d.ID, Usage: result.Usage})
	return nil
}
