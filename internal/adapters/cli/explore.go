package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacetraders-automation/internal/application/exploration"
)

// NewExploreCommand creates the explore command group
func NewExploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Chart systems with scout ships",
	}

	cmd.AddCommand(newExploreRunCommand())
	cmd.AddCommand(newExploreReleaseCommand())
	cmd.AddCommand(newExploreStatusCommand())

	return cmd
}

func newExploreRunCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Claim and chart the ship's current system",
		Long: `Claim and chart the ship's current system.

A system is charted by exactly one ship. If another ship holds the claim the
command does nothing. A ship resumes its own incomplete claim.

Examples:
  spacetraders explore run --ship SCOUT-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("ship", shipSymbol); err != nil {
				return err
			}

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, shipSymbol)
				defer cancel()

				if _, err := a.mediator.Send(ctx, &exploration.RunExplorationCommand{ShipSymbol: shipSymbol}); err != nil {
					return fmt.Errorf("exploration failed: %w", err)
				}
				fmt.Println("✓ Exploration step complete")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Scout ship symbol (required)")

	return cmd
}

func newExploreReleaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release <system>",
		Short: "Release the claim on an incomplete system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			systemSymbol := strings.ToUpper(args[0])

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, "")
				defer cancel()

				if _, err := a.mediator.Send(ctx, &exploration.ReleaseClaimCommand{SystemSymbol: systemSymbol}); err != nil {
					return fmt.Errorf("release failed: %w", err)
				}
				fmt.Printf("✓ Claim on %s released\n", systemSymbol)
				return nil
			})
		},
	}

	return cmd
}

func newExploreStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <system>",
		Short: "Show the mapping state of a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			systemSymbol := strings.ToUpper(args[0])

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, "")
				defer cancel()

				resp, err := a.mediator.Send(ctx, &exploration.MappingStatusQuery{SystemSymbol: systemSymbol})
				if err != nil {
					return fmt.Errorf("status failed: %w", err)
				}
				status := resp.(*exploration.Status)

				fmt.Printf("System %s\n", systemSymbol)
				fmt.Printf("  State:            %s\n", status.State)
				if status.Claim != nil {
					fmt.Printf("  Claimed by:       %s at %s\n", status.Claim.ShipSymbol, status.Claim.ClaimedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Printf("  Unmapped:         %d waypoints\n", len(status.Unmapped))
				for _, wp := range status.Unmapped {
					fmt.Printf("    - %s\n", wp)
				}
				if len(status.History) > 0 {
					fmt.Println("  History:")
					for _, h := range status.History {
						fmt.Printf("    %s  %-10s %s\n", h.ClaimedAt.Format("2006-01-02 15:04:05"), h.State, h.ShipSymbol)
					}
				}
				return nil
			})
		},
	}

	return cmd
}
