package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
)

// NewSurveyCommand creates the survey command group
func NewSurveyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Survey asteroids and manage stored surveys",
	}

	cmd.AddCommand(newSurveyLoopCommand())
	cmd.AddCommand(newSurveyPruneCommand())

	return cmd
}

func newSurveyLoopCommand() *cobra.Command {
	var (
		shipSymbol  string
		destination string
		rounds      int
		keepExpired bool
	)

	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Fly to a waypoint and keep surveying it",
		Long: `Fly to a waypoint and survey it until interrupted or --rounds surveys were taken.

Surveys are stored for the mining ships working the same waypoint.

Examples:
  spacetraders survey loop --ship SURVEYOR-1 --destination X1-GZ7-B1
  spacetraders survey loop --ship SURVEYOR-1 --destination X1-GZ7-B1 --rounds 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("ship", shipSymbol); err != nil {
				return err
			}
			if err := requireFlag("destination", destination); err != nil {
				return err
			}

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, shipSymbol)
				defer cancel()

				_, err := a.mediator.Send(ctx, &mining.SurveyLoopCommand{
					ShipSymbol:  shipSymbol,
					Destination: destination,
					Options: mining.SurveyOptions{
						PruneExpired: !keepExpired,
						Rounds:       rounds,
					},
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("survey loop failed: %w", err)
				}

				fmt.Println("✓ Survey loop stopped")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship with a surveyor mount (required)")
	cmd.Flags().StringVar(&destination, "destination", "", "Waypoint to survey (required)")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Stop after this many surveys (0 = until interrupted)")
	cmd.Flags().BoolVar(&keepExpired, "keep-expired", false, "Do not prune expired surveys before surveying")

	return cmd
}

func newSurveyPruneCommand() *cobra.Command {
	var waypoint string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired surveys of a waypoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("waypoint", waypoint); err != nil {
				return err
			}

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, "")
				defer cancel()

				resp, err := a.mediator.Send(ctx, &mining.PruneSurveysCommand{WaypointSymbol: waypoint})
				if err != nil {
					return fmt.Errorf("prune failed: %w", err)
				}

				fmt.Printf("✓ Deleted %d expired surveys at %s\n", resp.(*mining.PruneSurveysResponse).Deleted, waypoint)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&waypoint, "waypoint", "", "Waypoint symbol (required)")

	return cmd
}
