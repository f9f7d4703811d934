package llmagent

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/bones-game/bones/internal/game"
)

// TemplateRenderer is the default Renderer: fixed text/template bodies per
// role, filled in from engine state. It has no network dependency and no
// model-specific formatting, so it is the renderer `bones status --prompt`
// uses to preview what an agent would see without actually invoking one.
type TemplateRenderer struct{}

var (
	huntTmpl = template.Must(template.New("hunt").Parse(
		`# Hunt — round {{.Game.Round}}

You are {{.Agent.ShortName}}, competing in a {{.Game.Config.Category}} hunt against {{.Game.Config.NumAgents}} agents on **{{.Game.Config.Project}}**.

{{if .Game.Config.FocusPrompt}}Focus: {{.Game.Config.FocusPrompt}}{{end}}

Submit every genuine issue you find via the submit tool. First-valid wins the
pattern-hash race on duplicates, so submit as soon as you are confident.
`))

	refereeTmpl = template.Must(template.New("referee").Parse(
		`# Validate finding {{.Finding.ID}}

File: {{.Finding.FilePath}}:{{.Finding.LineStart}}-{{.Finding.LineEnd}}
Reported by: {{.Finding.AgentID}}

> {{.Finding.Description}}

Decide VALID, FALSE, or DUPLICATE and explain your reasoning.
`))

	verifierTmpl = template.Must(template.New("verifier").Parse(
		`# Verify finding {{.Finding.ID}}

A referee marked this finding VALID pending a second-pass check.

File: {{.Finding.FilePath}}:{{.Finding.LineStart}}-{{.Finding.LineEnd}}

> {{.Finding.Description}}

Confirm or reject the finding, with explanation.
`))

	reviewTmpl = template.Must(template.New("review").Parse(
		`# Review — round {{.Game.Round}}

You are {{.Agent.ShortName}}. Below are the valid findings filed by your
opponents this game. Dispute any you believe are wrong; disputing your own
finding is not possible.

{{range .Findings}}- #{{.ID}} {{.FilePath}}:{{.LineStart}}-{{.LineEnd}} ({{.AgentID}}): {{.Description}}
{{end}}`))

	disputeRefereeTmpl = template.Must(template.New("dispute-referee").Parse(
		`# Resolve dispute {{.Dispute.ID}}

Disputer: {{.Dispute.DisputerAgentID}}
Finding: #{{.Finding.ID}} {{.Finding.FilePath}}:{{.Finding.LineStart}}-{{.Finding.LineEnd}}

> Finding: {{.Finding.Description}}
> Dispute reason: {{.Dispute.Reason}}

Decide SUCCESSFUL or FAILED and explain your reasoning.
`))
)

func (TemplateRenderer) RenderHuntPrompt(g *game.Game, a *game.Agent) (string, error) {
	return render(huntTmpl, struct {
		Game  *game.Game
		Agent *game.Agent
	}{g, a})
}

func (TemplateRenderer) RenderRefereePrompt(g *game.Game, f *game.Finding) (string, error) {
	return render(refereeTmpl, struct {
		Game    *game.Game
		Finding *game.Finding
	}{g, f})
}

func (TemplateRenderer) RenderVerifierPrompt(g *game.Game, f *game.Finding) (string, error) {
	return render(verifierTmpl, struct {
		Game    *game.Game
		Finding *game.Finding
	}{g, f})
}

func (TemplateRenderer) RenderReviewPrompt(g *game.Game, a *game.Agent, reviewable []*game.Finding) (string, error) {
	return render(reviewTmpl, struct {
		Game     *game.Game
		Agent    *game.Agent
		Findings []*game.Finding
	}{g, a, reviewable})
}

func (TemplateRenderer) RenderDisputeRefereePrompt(g *game.Game, d *game.Dispute, f *game.Finding) (string, error) {
	return render(disputeRefereeTmpl, struct {
		Game    *game.Game
		Dispute *game.Dispute
		Finding *game.Finding
	}{g, d, f})
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
