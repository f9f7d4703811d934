package bones

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
	"github.com/bones-game/bones/internal/submission"
)

var disputeCmd = &cobra.Command{
	Use:     "dispute <gameId> <agentId> <findingId> <reason>",
	Short:   "File a review-phase dispute against another agent's valid finding",
	Args:    cobra.ExactArgs(4),
	GroupID: "agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			findingID, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: findingId must be an integer", game.ErrInvalidPrecondition)
			}

			dispute, err := o.Submission.SubmitDispute(submission.SubmitDisputeInput{
				GameID:          args[0],
				DisputerAgentID: args[1],
				FindingID:       findingID,
				Reason:          args[3],
			})
			if err != nil {
				return err
			}
			return output.JSON(dispute)
		})
	},
}

func init() {
	rootCmd.AddCommand(disputeCmd)
}
