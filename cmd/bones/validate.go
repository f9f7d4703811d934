package bones

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
)

var validateCmd = &cobra.Command{
	Use:     "validate <gameId> <findingId> <VALID|FALSE|DUPLICATE> <explanation>",
	Short:   "Record a referee's adjudication of a hunt-phase finding",
	Args:    cobra.ExactArgs(4),
	GroupID: "agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			findingID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: findingId must be an integer", game.ErrInvalidPrecondition)
			}
			verdict := game.Verdict(strings.ToLower(args[2]))

			flags := cmd.Flags()
			confidence, _ := flags.GetString("confidence")
			confidenceScore, _ := flags.GetInt("confidence-score")
			duplicateOf, _ := flags.GetInt64("duplicate-of")
			issueType, _ := flags.GetString("issue-type")
			impactTier, _ := flags.GetString("impact-tier")
			needsVerification, _ := flags.GetBool("needs-verification")

			var confScorePtr *int
			if flags.Changed("confidence-score") {
				confScorePtr = &confidenceScore
			}
			var dupOfPtr *int64
			if flags.Changed("duplicate-of") {
				dupOfPtr = &duplicateOf
			}

			result, err := o.Submission.ValidateFinding(
				args[0], findingID, verdict, args[3],
				game.Confidence(confidence), confScorePtr, dupOfPtr,
				issueType, impactTier, needsVerification,
			)
			if err != nil {
				return err
			}
			return output.JSON(result)
		})
	},
}

func init() {
	flags := validateCmd.Flags()
	flags.String("confidence", string(game.ConfidenceMedium), "referee confidence: high, medium, low")
	flags.Int("confidence-score", 0, "numeric confidence score, if the referee reports one")
	flags.Int64("duplicate-of", 0, "finding id this one duplicates, when verdict=DUPLICATE")
	flags.String("issue-type", "", "referee-assigned issue type")
	flags.String("impact-tier", "", "referee-assigned impact tier")
	flags.Bool("needs-verification", false, "route a VALID verdict through a second-pass verifier before awarding points")
	rootCmd.AddCommand(validateCmd)
}
