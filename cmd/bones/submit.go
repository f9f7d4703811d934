package bones

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
	"github.com/bones-game/bones/internal/submission"
)

var submitCmd = &cobra.Command{
	Use:     "submit <gameId> <agentId> <filePath> <lineStart> <lineEnd> <description>",
	Short:   "File a hunt-phase finding on behalf of an agent",
	Args:    cobra.ExactArgs(6),
	GroupID: "agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			lineStart, err := parseLine(args[3], "lineStart")
			if err != nil {
				return err
			}
			lineEnd, err := parseLine(args[4], "lineEnd")
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			evidence, _ := flags.GetString("evidence")
			snippet, _ := flags.GetString("snippet")

			finding, err := o.Submission.SubmitFinding(submission.SubmitFindingInput{
				GameID:      args[0],
				AgentID:     args[1],
				FilePath:    args[2],
				LineStart:   lineStart,
				LineEnd:     lineEnd,
				Description: args[5],
				Evidence:    evidence,
				CodeSnippet: snippet,
			})
			if err != nil {
				return err
			}
			return output.JSON(finding)
		})
	},
}

func parseLine(s, name string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", game.ErrInvalidPrecondition, name, s)
	}
	return n, nil
}

func init() {
	flags := submitCmd.Flags()
	flags.String("evidence", "", "supporting evidence text")
	flags.String("snippet", "", "code snippet, required in DOC/CODE/CONTRADICTION format for doc-drift hunts")
	rootCmd.AddCommand(submitCmd)
}
