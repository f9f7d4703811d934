package bones

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var verifyCmd = &cobra.Command{
	Use:     "verify <gameId> <findingId> <CONFIRM|REJECT> <explanation>",
	Short:   "Record a verifier's second-pass adjudication of a pending-verification finding",
	Args:    cobra.ExactArgs(4),
	GroupID: "agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			findingID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: findingId must be an integer", game.ErrInvalidPrecondition)
			}

			confirmed, err := parseConfirmReject(args[2])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			overriddenType, _ := flags.GetString("overridden-type")
			rejectionReason, _ := flags.GetString("rejection-reason")

			finding, err := o.Submission.VerifyFinding(args[0], findingID, confirmed, args[3], overriddenType, rejectionReason)
			if err != nil {
				return err
			}
			return output.JSON(finding)
		})
	},
}

func parseConfirmReject(s string) (bool, error) {
	switch s {
	case "CONFIRM", "confirm":
		return true, nil
	case "REJECT", "reject":
		return false, nil
	default:
		return false, fmt.Errorf("%w: verdict must be CONFIRM or REJECT, got %q", game.ErrInvalidPrecondition, s)
	}
}

func init() {
	flags := verifyCmd.Flags()
	flags.String("overridden-type", "", "replacement issue type when the verifier reclassifies the finding")
	flags.String("rejection-reason", "", "reason text when the verifier rejects the finding")
	rootCmd.AddCommand(verifyCmd)
}
