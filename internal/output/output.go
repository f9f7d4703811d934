// Package output renders Bones's CLI results: JSON for every command's
// machine-readable contract, plus a small set of lipgloss-styled helpers
// for the human-facing scoreboard view.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bones-game/bones/internal/game"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	negStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	phaseStyles = map[game.Phase]lipgloss.Style{
		game.PhaseSetup:         lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		game.PhaseHunt:          lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		game.PhaseHuntScoring:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		game.PhaseReview:        lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		game.PhaseReviewScoring: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		game.PhaseComplete:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

// JSON marshals v as indented JSON and writes it to stdout — the payload
// shape every successful CLI command reports.
func JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// JSONError writes {"error": "..."} to stdout — the single-line failure
// payload every CLI command reports on exit 1.
func JSONError(message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	fmt.Println(string(data))
}

// FormatPhase renders a phase name with its status color.
func FormatPhase(p game.Phase) string {
	style, ok := phaseStyles[p]
	if !ok {
		return string(p)
	}
	return style.Render(string(p))
}

// FormatScore renders a signed score with color by sign.
func FormatScore(score int) string {
	switch {
	case score > 0:
		return scoreStyle.Render(fmt.Sprintf("%+d", score))
	case score < 0:
		return negStyle.Render(fmt.Sprintf("%d", score))
	default:
		return "0"
	}
}

// Scoreboard renders a human-readable scoreboard table, ranked the same
// way AgentRepo.Scoreboard orders its rows.
func Scoreboard(agents []*game.Agent) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("SCOREBOARD"))
	sb.WriteString("\n")
	for i, a := range agents {
		sb.WriteString(fmt.Sprintf("%2d. %-14s %8s  %s\n",
			i+1, a.ShortName, FormatScore(a.Score),
			subtleStyle.Render(fmt.Sprintf("valid=%d false=%d dup=%d disputes=%d-%d",
				a.FindingsValid, a.FindingsFalse, a.FindingsDuplicate, a.DisputesWon, a.DisputesLost)),
		))
	}
	return sb.String()
}

// GameSummary renders a one-line human-readable game status.
func GameSummary(g *game.Game) string {
	return fmt.Sprintf("%s  round %d  %s", titleStyle.Render(g.ID), g.Round, FormatPhase(g.Phase))
}
