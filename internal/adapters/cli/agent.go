package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacetraders-automation/internal/application/player"
)

// NewAgentCommand creates the agent command
func NewAgentCommand() *cobra.Command {
	var withShips bool

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Show the agent behind the configured token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, "")
				defer cancel()

				resp, err := a.mediator.Send(ctx, &player.GetAgentQuery{IncludeShips: withShips})
				if err != nil {
					return fmt.Errorf("failed to get agent: %w", err)
				}
				r := resp.(*player.GetAgentResponse)

				fmt.Printf("Agent %s\n", r.Agent.Symbol)
				fmt.Printf("  Headquarters:     %s\n", r.Agent.Headquarters)
				fmt.Printf("  Faction:          %s\n", r.Agent.StartingFaction)
				fmt.Printf("  Credits:          %d\n", r.Agent.Credits)
				fmt.Printf("  Ships:            %d\n", r.Agent.ShipCount)

				for _, s := range r.Ships {
					fmt.Println()
					printShip(s)
					fmt.Printf("  Role:             %s\n", s.Role())
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withShips, "ships", false, "List the fleet too")

	return cmd
}
