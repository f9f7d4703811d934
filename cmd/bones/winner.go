package bones

import (
	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var checkWinnerCmd = &cobra.Command{
	Use:     "check-winner <gameId>",
	Short:   "Check whether the current round has produced a winner",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			result, err := o.Phase.CheckWinner(args[0])
			if err != nil {
				return err
			}
			return output.JSON(result)
		})
	},
}

func init() {
	rootCmd.AddCommand(checkWinnerCmd)
}
