package bones

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var resolveCmd = &cobra.Command{
	Use:     "resolve <gameId> <disputeId> <SUCCESSFUL|FAILED> <explanation>",
	Short:   "Record a referee's adjudication of a review-phase dispute",
	Args:    cobra.ExactArgs(4),
	GroupID: "agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			disputeID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: disputeId must be an integer", game.ErrInvalidPrecondition)
			}

			successful, err := parseSuccessfulFailed(args[2])
			if err != nil {
				return err
			}

			dispute, finding, err := o.Submission.ResolveDispute(args[0], disputeID, successful, args[3])
			if err != nil {
				return err
			}
			return output.JSON(map[string]any{
				"dispute": dispute,
				"finding": finding,
			})
		})
	},
}

func parseSuccessfulFailed(s string) (bool, error) {
	switch s {
	case "SUCCESSFUL", "successful":
		return true, nil
	case "FAILED", "failed":
		return false, nil
	default:
		return false, fmt.Errorf("%w: verdict must be SUCCESSFUL or FAILED, got %q", game.ErrInvalidPrecondition, s)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
