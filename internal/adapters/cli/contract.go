package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/spacetraders-automation/internal/application/contract"
)

// NewContractCommand creates the contract command group
func NewContractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Work procurement contracts with a mining ship",
	}

	cmd.AddCommand(newContractRunCommand())
	cmd.AddCommand(newContractFulfillCommand())

	return cmd
}

func newContractRunCommand() *cobra.Command {
	var (
		shipSymbol string
		contractID string
		site       string
		market     string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mine and deliver until the contract's delivery goal is met",
		Long: `Mine and deliver until the contract's delivery goal is met.

Each step either delivers the contract good, when the ship holds more than the
configured share of its capacity, or mines another hold at --site and sells the
rest. The contract is accepted first if needed and fulfilled at the end when
automation.auto_fulfill is set.

Examples:
  spacetraders contract run --ship AGENT-1 --contract clx0abc --site X1-GZ7-B1
  spacetraders contract run --ship AGENT-1 --contract clx0abc --site X1-GZ7-B1 --once`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("ship", shipSymbol); err != nil {
				return err
			}
			if err := requireFlag("contract", contractID); err != nil {
				return err
			}
			if err := requireFlag("site", site); err != nil {
				return err
			}

			return withApp(func(a *app) error {
				ctx, cancel := commandContext(a, shipSymbol)
				defer cancel()

				steps := 0
				for {
					resp, err := a.mediator.Send(ctx, &contract.RunContractCommand{
						ShipSymbol:        shipSymbol,
						ContractID:        contractID,
						MiningDestination: site,
						SellMarket:        market,
					})
					if err != nil {
						return fmt.Errorf("contract step %d failed: %w", steps+1, err)
					}
					steps++

					done := resp.(*contract.RunContractResponse).DeliveryComplete
					if done {
						fmt.Printf("✓ Delivery goal met after %d steps\n", steps)
						if a.cfg.Automation.AutoFulfill {
							return fulfill(a, contractID)
						}
						return nil
					}
					if once {
						fmt.Println("✓ Contract step complete, deliveries still pending")
						return nil
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Mining ship symbol (required)")
	cmd.Flags().StringVar(&contractID, "contract", "", "Contract ID (required)")
	cmd.Flags().StringVar(&site, "site", "", "Asteroid to mine the contract good at (required)")
	cmd.Flags().StringVar(&market, "market", "", "Market for surplus ore (default: automation.contract_market, else the site)")
	cmd.Flags().BoolVar(&once, "once", false, "Run a single step")

	return cmd
}

func newContractFulfillCommand() *cobra.Command {
	var contractID string

	cmd := &cobra.Command{
		Use:   "fulfill",
		Short: "Fulfil a contract whose deliveries are complete",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("contract", contractID); err != nil {
				return err
			}
			return withApp(func(a *app) error {
				return fulfill(a, contractID)
			})
		},
	}

	cmd.Flags().StringVar(&contractID, "contract", "", "Contract ID (required)")

	return cmd
}

func fulfill(a *app, contractID string) error {
	ctx, cancel := commandContext(a, "")
	defer cancel()

	resp, err := a.mediator.Send(ctx, &contract.FulfillContractCommand{ContractID: contractID})
	if err != nil {
		return fmt.Errorf("fulfil failed: %w", err)
	}

	c := resp.(*contract.FulfillContractResponse).Contract
	fmt.Println("✓ Contract fulfilled")
	fmt.Printf("  Contract:         %s\n", c.ContractID())
	fmt.Printf("  Payment:          %d credits\n", c.Terms().Payment.OnFulfilled)
	return nil
}
