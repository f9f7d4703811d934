package bones

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/config"
	"github.com/bones-game/bones/internal/game"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
	"github.com/bones-game/bones/internal/workdir"
)

var setupCmd = &cobra.Command{
	Use:     "setup <project>",
	Short:   "Create a game and draw its agent roster",
	Args:    cobra.ExactArgs(1),
	GroupID: "phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workdir.ResolveDataDir()
		if err != nil {
			output.JSONError(err.Error())
			return err
		}

		flags := cmd.Flags()
		updates := config.Config{}
		if v, _ := flags.GetString("category"); flags.Changed("category") {
			updates.Category = game.Category(v)
		}
		if v, _ := flags.GetInt("target"); flags.Changed("target") {
			updates.TargetScore = v
		}
		if v, _ := flags.GetDuration("hunt-duration"); flags.Changed("hunt-duration") {
			updates.HuntDurationSec = int(v.Seconds())
		}
		if v, _ := flags.GetDuration("review-duration"); flags.Changed("review-duration") {
			updates.ReviewDurationSec = int(v.Seconds())
		}
		if v, _ := flags.GetInt("agents"); flags.Changed("agents") {
			updates.NumAgents = v
		}
		if v, _ := flags.GetInt("max-rounds"); flags.Changed("max-rounds") {
			updates.MaxRounds = &v
		}
		focus, _ := flags.GetString("focus")

		if err := config.SetDefaults(dir, updates); err != nil {
			output.JSONError(err.Error())
			return err
		}
		merged, err := config.Load(dir)
		if err != nil {
			output.JSONError(err.Error())
			return err
		}
		merged = ptr(merged.WithDefaults())

		o, err := orchestrator.Open(dir)
		if err != nil {
			output.JSONError(err.Error())
			return err
		}
		defer o.Close()

		maxRounds := config.DefaultMaxRounds
		if merged.MaxRounds != nil {
			maxRounds = *merged.MaxRounds
		}

		result, err := o.CreateGame(orchestrator.NewGameInput{
			Project:        args[0],
			Category:       merged.Category,
			FocusPrompt:    focus,
			TargetScore:    merged.TargetScore,
			HuntDuration:   time.Duration(merged.HuntDurationSec) * time.Second,
			ReviewDuration: time.Duration(merged.ReviewDurationSec) * time.Second,
			NumAgents:      merged.NumAgents,
			MaxRounds:      maxRounds,
		})
		if err != nil {
			output.JSONError(err.Error())
			return err
		}

		agentIDs := make([]string, len(result.Agents))
		for i, a := range result.Agents {
			agentIDs[i] = a.ID
		}

		return output.JSON(map[string]any{
			"gameId": result.Game.ID,
			"agents": agentIDs,
			"config": result.Game.Config,
			"next":   "start-hunt",
		})
	},
}

func ptr[T any](v T) *T { return &v }

func init() {
	flags := setupCmd.Flags()
	flags.String("category", "", "hunt category (bugs, doc_drift, security, test_coverage, tech_debt, custom)")
	flags.String("focus", "", "freeform focus prompt for the hunt phase")
	flags.Int("target", 0, "target score a single agent must reach to win")
	flags.Duration("hunt-duration", 0, "hunt-phase deadline")
	flags.Duration("review-duration", 0, "review-phase deadline")
	flags.Int("agents", 0, "number of agents to draw")
	flags.Int("max-rounds", 0, "round cap before a forced tiebreak (0 = unlimited)")
	rootCmd.AddCommand(setupCmd)
}
