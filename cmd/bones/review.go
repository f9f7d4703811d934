package bones

import (
	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var startReviewCmd = &cobra.Command{
	Use:     "start-review <gameId>",
	Short:   "Transition a game from HuntScoring into Review",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			g, err := o.Phase.StartReview(args[0])
			if err != nil {
				return err
			}
			return output.JSON(g)
		})
	},
}

var checkReviewCmd = &cobra.Command{
	Use:     "check-review <gameId>",
	Short:   "Report whether the Review phase is ready to move to scoring",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			result, err := o.Phase.CheckReview(args[0])
			if err != nil {
				return err
			}
			return output.JSON(result)
		})
	},
}

var startReviewScoringCmd = &cobra.Command{
	Use:     "start-review-scoring <gameId>",
	Short:   "Transition a game from Review into ReviewScoring",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			g, err := o.Phase.StartReviewScoring(args[0])
			if err != nil {
				return err
			}
			return output.JSON(g)
		})
	},
}

func init() {
	rootCmd.AddCommand(startReviewCmd, checkReviewCmd, startReviewScoringCmd)
}
