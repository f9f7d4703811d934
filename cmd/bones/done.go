package bones

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var doneCmd = &cobra.Command{
	Use:     "done <gameId> <agentId> <hunt|review>",
	Short:   "Signal that an agent has finished its work for the current round's phase",
	Args:    cobra.ExactArgs(3),
	GroupID: "agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			var phase game.Phase
			switch args[2] {
			case "hunt":
				phase = game.PhaseHunt
			case "review":
				phase = game.PhaseReview
			default:
				return fmt.Errorf("%w: phase must be \"hunt\" or \"review\", got %q", game.ErrInvalidPrecondition, args[2])
			}

			if err := o.Submission.MarkAgentDone(args[0], args[1], phase); err != nil {
				return err
			}
			return output.JSON(map[string]string{"gameId": args[0], "agentId": args[1], "phase": args[2]})
		})
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
}
