package bones

import (
	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var startHuntCmd = &cobra.Command{
	Use:     "start-hunt <gameId>",
	Short:   "Transition a game from Setup (or ReviewScoring) into Hunt",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			g, err := o.Phase.StartHunt(args[0])
			if err != nil {
				return err
			}
			return output.JSON(g)
		})
	},
}

var checkHuntCmd = &cobra.Command{
	Use:     "check-hunt <gameId>",
	Short:   "Report whether the Hunt phase is ready to move to scoring",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			result, err := o.Phase.CheckHunt(args[0])
			if err != nil {
				return err
			}
			return output.JSON(result)
		})
	},
}

var startHuntScoringCmd = &cobra.Command{
	Use:     "start-hunt-scoring <gameId>",
	Short:   "Transition a game from Hunt into HuntScoring",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			g, err := o.Phase.StartHuntScoring(args[0])
			if err != nil {
				return err
			}
			return output.JSON(g)
		})
	},
}

func init() {
	rootCmd.AddCommand(startHuntCmd, checkHuntCmd, startHuntScoringCmd)
}
