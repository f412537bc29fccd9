package contract

import (
	"context"
	"fmt"
	"math"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	domainContract "github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// DefaultThreshold is the held share of cargo capacity above which the ship delivers
const DefaultThreshold = 0.7

// WorkflowOptions tunes the contract loop
type WorkflowOptions struct {
	// Threshold in (0, 1); anything outside means DefaultThreshold
	Threshold float64

	// SellMarket is where surplus mined goods are sold; empty sells at the mining site
	SellMarket string
}

// Workflow drives a single mining ship towards a procurement contract's delivery goal.
//
// Each RunContract call does one step: either deliver what the ship holds or
// mine another hold and sell everything that is not the contract good.
type Workflow struct {
	client    ports.APIClient
	navigator *ship.Navigator
	miner     *mining.Miner
	seller    *ship.CargoSeller
	session   *ledger.Session
	opts      WorkflowOptions
}

func NewWorkflow(
	client ports.APIClient,
	navigator *ship.Navigator,
	miner *mining.Miner,
	seller *ship.CargoSeller,
	session *ledger.Session,
	opts WorkflowOptions,
) *Workflow {
	if opts.Threshold <= 0 || opts.Threshold >= 1 {
		opts.Threshold = DefaultThreshold
	}
	return &Workflow{
		client:    client,
		navigator: navigator,
		miner:     miner,
		seller:    seller,
		session:   session,
		opts:      opts,
	}
}

// SellingAt returns a workflow that sells surplus at market. An empty market
// keeps the configured one.
func (w *Workflow) SellingAt(market string) *Workflow {
	if market == "" || market == w.opts.SellMarket {
		return w
	}
	clone := *w
	clone.opts.SellMarket = market
	return &clone
}

// RunContract performs one iteration and reports whether the delivery goal is met.
// Fulfilment is left to Fulfill.
func (w *Workflow) RunContract(ctx context.Context, shipSymbol, contractID, miningDestination string) (bool, error) {
	c, err := w.client.GetContract(ctx, contractID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch contract %s: %w", contractID, err)
	}
	if c.Fulfilled() {
		return true, nil
	}

	if !c.Accepted() {
		if err := w.accept(ctx, c); err != nil {
			return false, err
		}
	}

	delivery := c.PrimaryDelivery()
	if delivery.Remaining() == 0 {
		return true, nil
	}

	s, err := w.client.GetShip(ctx, shipSymbol)
	if err != nil {
		return false, fmt.Errorf("failed to load ship %s: %w", shipSymbol, err)
	}

	held := s.Cargo().GetItemUnits(delivery.TradeSymbol)
	threshold := int(math.Floor(float64(s.Cargo().Capacity) * w.opts.Threshold))

	if w.shouldDeliver(s, held, threshold, delivery.Remaining()) {
		err = w.deliver(ctx, s, c, delivery, held)
	} else {
		err = w.mineAndSell(ctx, s, delivery.TradeSymbol, miningDestination)
	}
	if err != nil {
		return false, err
	}

	return w.report(ctx, contractID)
}

// shouldDeliver also fires when the hold cannot take more of the good or
// already covers what the contract still needs
func (w *Workflow) shouldDeliver(s *navigation.Ship, held, threshold, remaining int) bool {
	if held <= 0 {
		return false
	}
	if held > threshold || held >= remaining {
		return true
	}
	return s.Cargo().IsFull() && held == s.Cargo().Units
}

// accept treats an already-accepted answer as success
func (w *Workflow) accept(ctx context.Context, c *domainContract.Contract) error {
	logger := common.LoggerFromContext(ctx)

	accepted, err := w.client.AcceptContract(ctx, c.ContractID())
	if err != nil {
		if apiErr, ok := shared.AsAPIError(err); ok && apiErr.IsContractAccepted() {
			logger.Log("DEBUG", "Contract was already accepted", map[string]interface{}{
				"contract_id": c.ContractID(),
			})
			return nil
		}
		return fmt.Errorf("failed to accept contract %s: %w", c.ContractID(), err)
	}

	payment := accepted.Terms().Payment.OnAccepted
	w.record(ctx, ledger.Transaction{
		Type:       ledger.TransactionTypeContractAccepted,
		TotalPrice: payment,
	})
	logger.Log("INFO", "Contract accepted", map[string]interface{}{
		"contract_id": c.ContractID(),
		"action":      "accept",
		"payment":     payment,
	})
	return nil
}

func (w *Workflow) deliver(ctx context.Context, s *navigation.Ship, c *domainContract.Contract, delivery domainContract.Delivery, held int) error {
	s, err := w.navigator.Navigate(ctx, s, delivery.DestinationSymbol, ship.DefaultNavigateOptions())
	if err != nil {
		return err
	}
	if !s.IsDocked() {
		nav, err := w.client.DockShip(ctx, s.ShipSymbol())
		if err != nil {
			return fmt.Errorf("failed to dock %s for delivery: %w", s.ShipSymbol(), err)
		}
		s.UpdateNav(nav)
	}

	units := held
	if remaining := delivery.Remaining(); units > remaining {
		units = remaining
	}

	result, err := w.client.DeliverContract(ctx, c.ContractID(), s.ShipSymbol(), delivery.TradeSymbol, units)
	if err != nil {
		return fmt.Errorf("failed to deliver %d %s: %w", units, delivery.TradeSymbol, err)
	}
	if result.Cargo != nil {
		s.UpdateCargo(result.Cargo)
	}
	metrics.RecordContractDelivery(c.ContractID(), delivery.TradeSymbol, units)

	common.LoggerFromContext(ctx).Log("INFO", "Contract goods delivered", map[string]interface{}{
		"ship_symbol": s.ShipSymbol(),
		"contract_id": c.ContractID(),
		"action":      "deliver",
		"good":        delivery.TradeSymbol,
		"units":       units,
		"waypoint":    delivery.DestinationSymbol,
	})
	return nil
}

func (w *Workflow) mineAndSell(ctx context.Context, s *navigation.Ship, good, miningDestination string) error {
	s, err := w.navigator.Navigate(ctx, s, miningDestination, ship.NavigateOptions{})
	if err != nil {
		return err
	}

	s, _, err = w.miner.MineUntilFull(ctx, s, miningDestination, mining.MineOptions{})
	if err != nil {
		return err
	}

	market := w.opts.SellMarket
	if market == "" {
		market = miningDestination
	}
	s, err = w.navigator.Navigate(ctx, s, market, ship.DefaultNavigateOptions())
	if err != nil {
		return err
	}

	_, _, err = w.seller.SellCargo(ctx, s, []string{good})
	return err
}

// report re-reads the contract and logs progress alongside the session totals
func (w *Workflow) report(ctx context.Context, contractID string) (bool, error) {
	c, err := w.client.GetContract(ctx, contractID)
	if err != nil {
		return false, fmt.Errorf("failed to refresh contract %s: %w", contractID, err)
	}

	delivery := c.PrimaryDelivery()
	fields := map[string]interface{}{
		"contract_id": contractID,
		"good":        delivery.TradeSymbol,
		"fulfilled":   delivery.UnitsFulfilled,
		"required":    delivery.UnitsRequired,
		"payment":     c.Terms().Payment.OnFulfilled,
	}
	if w.session != nil {
		for k, v := range w.session.Summary() {
			fields[k] = v
		}
	}
	common.LoggerFromContext(ctx).Log("INFO", "Contract progress", fields)

	return delivery.UnitsFulfilled >= delivery.UnitsRequired, nil
}

// Fulfill completes a contract whose deliveries are done.
// A contract the server already marks fulfilled is returned as is.
func (w *Workflow) Fulfill(ctx context.Context, contractID string) (*domainContract.Contract, error) {
	c, err := w.client.GetContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contract %s: %w", contractID, err)
	}
	if c.Fulfilled() {
		return c, nil
	}
	if !c.CanFulfill() {
		if !c.Accepted() {
			return nil, domainContract.ErrNotAccepted
		}
		return nil, fmt.Errorf("contract %s cannot be fulfilled yet: %s", contractID, c)
	}

	fulfilled, err := w.client.FulfillContract(ctx, contractID)
	if err != nil {
		if apiErr, ok := shared.AsAPIError(err); ok && apiErr.Code == shared.ErrorCodeContractFulfilled {
			return c, nil
		}
		return nil, fmt.Errorf("failed to fulfill contract %s: %w", contractID, err)
	}

	payment := fulfilled.Terms().Payment.OnFulfilled
	w.record(ctx, ledger.Transaction{
		Type:       ledger.TransactionTypeContractFulfilled,
		TotalPrice: payment,
	})
	metrics.RecordContractFulfilled(contractID, payment)

	common.LoggerFromContext(ctx).Log("INFO", "Contract fulfilled", map[string]interface{}{
		"contract_id": contractID,
		"action":      "fulfill",
		"payment":     payment,
	})
	return fulfilled, nil
}

func (w *Workflow) record(ctx context.Context, tx ledger.Transaction) {
	if w.session == nil {
		return
	}
	if err := w.session.Record(tx); err != nil {
		common.LoggerFromContext(ctx).Log("WARNING", "Contract transaction not recorded", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
