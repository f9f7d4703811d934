package bones

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/llmagent"
	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
	"github.com/bones-game/bones/internal/promptpreview"
)

var statusCmd = &cobra.Command{
	Use:     "status <gameId>",
	Short:   "Report a game's current phase and scoreboard",
	Args:    cobra.ExactArgs(1),
	GroupID: "query",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(o *orchestrator.Orchestrator) error {
			status, err := o.Status(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if promptAgentID, _ := flags.GetString("prompt"); promptAgentID != "" {
				agent, err := o.Agents.FindByID(o.Store.Conn(), promptAgentID)
				if err != nil {
					return err
				}
				rendered, err := promptpreview.HuntPrompt(llmagent.TemplateRenderer{}, status.Game, agent)
				if err != nil {
					return err
				}
				fmt.Println(rendered)
				return nil
			}

			human, _ := flags.GetBool("human")
			if human {
				fmt.Println(output.GameSummary(status.Game))
				fmt.Println(output.Scoreboard(status.Scoreboard))
				return nil
			}
			return output.JSON(status)
		})
	},
}

func init() {
	flags := statusCmd.Flags()
	flags.Bool("human", false, "render a styled terminal summary instead of JSON")
	flags.String("prompt", "", "preview the hunt prompt for this agent id instead of JSON")
	rootCmd.AddCommand(statusCmd)
}
