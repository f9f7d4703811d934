package bones

import (
	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var findingsCmd = &cobra.Command{
	Use:     "findings <gameId>",
	Short:   "List findings recorded for a game, optionally filtered",
	Args:    cobra.ExactArgs(1),
	GroupID: "query",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			flags := cmd.Flags()
			filter := orchestrator.FindingFilter{}
			if flags.Changed("round") {
				round, _ := flags.GetInt("round")
				filter.Round = &round
			}
			if status, _ := flags.GetString("status"); status != "" {
				filter.Status = game.FindingStatus(status)
			}
			filter.AgentID, _ = flags.GetString("agent")

			found, err := o.ListFindings(args[0], filter)
			if err != nil {
				return err
			}
			return output.JSON(found)
		})
	},
}

func init() {
	flags := findingsCmd.Flags()
	flags.Int("round", 0, "filter to a single round")
	flags.String("status", "", "filter by status: pending, valid, false_flag, duplicate")
	flags.String("agent", "", "filter to findings submitted by one agent")
	rootCmd.AddCommand(findingsCmd)
}
