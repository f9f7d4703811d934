// Package llmagent names, by interface only, the external collaborators
// GameRunner drives but does not implement: the LLM driver that actually
// talks to a model and reports usage, and the prompt renderer that turns
// engine state into the markdown an agent is shown. The package also
// provides TemplateRenderer, a concrete Renderer; it implements no Driver
// and handles no credentials.
package llmagent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bones-game/bones/internal/events"
	"github.com/bones-game/bones/internal/game"
)

// Role is the capacity an agent invocation runs in.
type Role string

const (
	RoleHunter   Role = "hunter"
	RoleReviewer Role = "reviewer"
	RoleReferee  Role = "referee"
	RoleVerifier Role = "verifier"
)

// Invocation bundles the rendered prompt and bookkeeping identifiers for
// one agent call. ToolCallID correlates retries and log lines across an
// otherwise stateless driver call.
type Invocation struct {
	ToolCallID uuid.UUID
	Role       Role
	GameID     string
	AgentID    string
	Round      int
	Prompt     string
	Timeout    time.Duration
}

// Result is what a Driver call reports back once the model (and whatever
// tool calls it made against the SubmissionService) finishes, aborts, or
// times out.
type Result struct {
	ToolCallID uuid.UUID
	Aborted    bool
	AbortedReason string
	Usage      events.Usage
}

// Driver consumes a rendered prompt, lets the model act (including making
// tool calls against the SubmissionService through whatever bridge the
// caller wires up), and reports usage. Cancellation of ctx must abort the
// underlying call; an aborted invocation still returns a Result with
// Aborted=true rather than an error, since an aborted agent counts as
// "done" for phase completion.
type Driver interface {
	Invoke(ctx context.Context, inv Invocation) (Result, error)
}

// Renderer is the pure state-to-markdown function that turns a game's
// current state into the prompt text for one role. It never mutates state
// and never performs I/O.
type Renderer interface {
	RenderHuntPrompt(g *game.Game, a *game.Agent) (string, error)
	RenderRefereePrompt(g *game.Game, f *game.Finding) (string, error)
	RenderVerifierPrompt(g *game.Game, f *game.Finding) (string, error)
	RenderReviewPrompt(g *game.Game, a *game.Agent, reviewable []*game.Finding) (string, error)
	RenderDisputeRefereePrompt(g *game.Game, d *game.Dispute, f *game.Finding) (string, error)
}
