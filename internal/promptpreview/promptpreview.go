// Package promptpreview renders the hunt/review prompts an LLM agent would
// actually receive, as human-readable markdown, for `bones status --prompt`.
// It is the one place glamour touches the codebase, the same library used
// elsewhere in this corpus to render Markdown issue bodies to a terminal.
package promptpreview

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/llmagent"
)

const (
	defaultWidth = 80
	minWidth     = 20
)

// TerminalWidth returns the current terminal width or a fallback when it
// cannot be determined (piped output, non-tty stdout).
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultWidth
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// Render renders markdown with Glamour at the current terminal width.
func Render(markdown string) (string, error) {
	return RenderWithWidth(markdown, TerminalWidth(defaultWidth))
}

// RenderWithWidth renders markdown with Glamour at an explicit width.
func RenderWithWidth(markdown string, width int) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	if width < minWidth {
		width = minWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n"), nil
}

// HuntPrompt renders the prompt a hunt-phase agent would receive.
func HuntPrompt(r llmagent.Renderer, g *game.Game, a *game.Agent) (string, error) {
	prompt, err := r.RenderHuntPrompt(g, a)
	if err != nil {
		return "", err
	}
	return Render(prompt)
}

// ReviewPrompt renders the prompt a review-phase agent would receive.
func ReviewPrompt(r llmagent.Renderer, g *game.Game, a *game.Agent, candidates []*game.Finding) (string, error) {
	prompt, err := r.RenderReviewPrompt(g, a, candidates)
	if err != nil {
		return "", err
	}
	return Render(prompt)
}
