package bones

import (
	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var disputesCmd = &cobra.Command{
	Use:     "disputes <gameId>",
	Short:   "List disputes filed for a game, optionally filtered",
	Args:    cobra.ExactArgs(1),
	GroupID: "query",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			flags := cmd.Flags()
			filter := orchestrator.DisputeFilter{}
			if flags.Changed("round") {
				round, _ := flags.GetInt("round")
				filter.Round = &round
			}
			if status, _ := flags.GetString("status"); status != "" {
				filter.Status = game.DisputeStatus(status)
			}
			filter.AgentID, _ = flags.GetString("agent")

			found, err := o.ListDisputes(args[0], filter)
			if err != nil {
				return err
			}
			return output.JSON(found)
		})
	},
}

func init() {
	flags := disputesCmd.Flags()
	flags.Int("round", 0, "filter to a single round")
	flags.String("status", "", "filter by status: pending, successful, failed")
	flags.String("agent", "", "filter to disputes filed by one agent")
	rootCmd.AddCommand(disputesCmd)
}
