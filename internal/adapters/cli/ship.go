package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
)

// NewNavigateCommand creates the navigate command
func NewNavigateCommand() *cobra.Command {
	var (
		shipSymbol  string
		destination string
		noDock      bool
	)

	cmd := &cobra.Command{
		Use:   "navigate",
		Short: "Navigate a ship to a waypoint in its current system",
		Long: `Navigate a ship to a waypoint in its current system.

The ship is put into orbit if docked, flies to the destination, waits for
arrival and then docks and refuels unless --no-dock is given.

Examples:
  spacetraders navigate --ship AGENT-1 --destination X1-GZ7-B1
  spacetraders navigate --ship SCOUT-2 --destination X1-GZ7-A1 --no-dock`,
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

				opts := ship.DefaultNavigateOptions()
				if noDock {
					opts = ship.NavigateOptions{}
				}
				resp, err := a.mediator.Send(ctx, &ship.NavigateShipCommand{
					ShipSymbol:  shipSymbol,
					Destination: destination,
					Options:     opts,
				})
				if err != nil {
					return fmt.Errorf("navigation failed: %w", err)
				}

				fmt.Println("✓ Navigation complete")
				printShip(resp.(*ship.NavigateShipResponse).Ship)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol to navigate (required)")
	cmd.Flags().StringVar(&destination, "destination", "", "Destination waypoint symbol (required)")
	cmd.Flags().BoolVar(&noDock, "no-dock", false, "Stay in orbit on arrival")

	return cmd
}

// NewMineCommand creates the mine command
func NewMineCommand() *cobra.Command {
	var (
		shipSymbol string
		site       string
		market     string
		exclude    []string
		noSurveys  bool
	)

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine until the cargo hold is full",
		Long: `Mine until the cargo hold is full.

Without --site the ship mines where it is. With --site the command runs one
full cycle: fly to the site, mine, fly to --market (default: the site) and sell
everything not excluded.

Examples:
  spacetraders mine --ship AGENT-1
  spacetraders mine --ship AGENT-1 --site X1-GZ7-B1 --market X1-GZ7-A1 --exclude ICE_WATER`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("ship", shipSymbol); err != nil {
				return err
			}

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, shipSymbol)
				defer cancel()

				mineOpts := mining.MineOptions{UseSurveys: a.cfg.Automation.UseSurveys && !noSurveys}

				if site == "" {
					resp, err := a.mediator.Send(ctx, &mining.MineCommand{ShipSymbol: shipSymbol, Options: mineOpts})
					if err != nil {
						return fmt.Errorf("mining failed: %w", err)
					}
					r := resp.(*mining.MineResponse)
					fmt.Println("✓ Cargo hold full")
					fmt.Printf("  Extractions:      %d\n", r.Yield.Extractions())
					printMap("Mined:", r.Yield.Yields())
					printShip(r.Ship)
					return nil
				}

				resp, err := a.mediator.Send(ctx, &mining.MiningCycleCommand{
					ShipSymbol: shipSymbol,
					Options: mining.CycleOptions{
						MiningSite: site,
						Market:     market,
						Exclude:    splitSymbols(exclude),
						Mine:       mineOpts,
					},
				})
				if err != nil {
					return fmt.Errorf("mining cycle failed: %w", err)
				}
				r := resp.(*mining.MiningCycleResponse)
				fmt.Println("✓ Mining cycle complete")
				fmt.Printf("  Extractions:      %d\n", r.Report.Yield.Extractions())
				printMap("Mined:", r.Report.Yield.Yields())
				printProceeds(r.Report.Proceeds)
				printShip(r.Ship)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Mining ship symbol (required)")
	cmd.Flags().StringVar(&site, "site", "", "Asteroid to mine; runs a full mine and sell cycle")
	cmd.Flags().StringVar(&market, "market", "", "Market to sell at after a cycle (default: the site)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Goods to keep in cargo")
	cmd.Flags().BoolVar(&noSurveys, "no-surveys", false, "Extract without stored surveys")

	return cmd
}

// NewSellCommand creates the sell command
func NewSellCommand() *cobra.Command {
	var (
		shipSymbol string
		market     string
		exclude    []string
	)

	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell cargo at the current or a given market",
		Long: `Sell every cargo good that is not excluded.

With --market the ship flies there and docks first.

Examples:
  spacetraders sell --ship AGENT-1
  spacetraders sell --ship AGENT-1 --market X1-GZ7-A1 --exclude IRON_ORE,COPPER_ORE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("ship", shipSymbol); err != nil {
				return err
			}

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, shipSymbol)
				defer cancel()

				var request interface{} = &ship.SellCargoCommand{ShipSymbol: shipSymbol, Exclude: splitSymbols(exclude)}
				if market != "" {
					request = &mining.MarketSellCommand{ShipSymbol: shipSymbol, Market: market, Exclude: splitSymbols(exclude)}
				}

				resp, err := a.mediator.Send(ctx, request)
				if err != nil {
					return fmt.Errorf("selling failed: %w", err)
				}
				r := resp.(*ship.SellCargoResponse)
				fmt.Println("✓ Cargo sold")
				printProceeds(r.Report)
				printShip(r.Ship)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (required)")
	cmd.Flags().StringVar(&market, "market", "", "Market waypoint to fly to before selling")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Goods to keep in cargo")

	return cmd
}

func printShip(s *navigation.Ship) {
	if s == nil {
		return
	}
	fmt.Printf("  Ship:             %s\n", s.ShipSymbol())
	fmt.Printf("  Location:         %s (%s)\n", s.CurrentLocation(), s.NavStatus())
	if fuel := s.Fuel(); fuel != nil && fuel.Capacity > 0 {
		fmt.Printf("  Fuel:             %d/%d\n", fuel.Current, fuel.Capacity)
	}
	if cargo := s.Cargo(); cargo != nil {
		fmt.Printf("  Cargo:            %d/%d\n", cargo.Units, cargo.Capacity)
	}
	if mounts := s.Mounts(); len(mounts) > 0 {
		fmt.Printf("  Mounts:           %s\n", strings.Join(mounts, ", "))
	}
	for _, module := range s.Modules() {
		if module.IsJumpDrive() {
			fmt.Printf("  Jump drive:       %s\n", module)
		}
	}
}
