package mining

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	domainMining "github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
)

// CycleOptions describes one mine-and-sell round trip
type CycleOptions struct {
	MiningSite string

	// Market defaults to the mining site
	Market  string
	Exclude []string
	Mine    MineOptions
}

// CycleReport sums what one cycle extracted and earned
type CycleReport struct {
	Yield    *domainMining.YieldReport
	Proceeds *ship.ProceedsReport
}

// MiningLoop runs the mine, travel, sell cycle of a mining ship
type MiningLoop struct {
	navigator *ship.Navigator
	miner     *Miner
	seller    *ship.CargoSeller
	session   *ledger.Session
}

func NewMiningLoop(navigator *ship.Navigator, miner *Miner, seller *ship.CargoSeller, session *ledger.Session) *MiningLoop {
	return &MiningLoop{navigator: navigator, miner: miner, seller: seller, session: session}
}

// RunCycle performs one cycle. The automation driver calls it repeatedly.
func (l *MiningLoop) RunCycle(ctx context.Context, s *navigation.Ship, opts CycleOptions) (*navigation.Ship, *CycleReport, error) {
	logger := common.LoggerFromContext(ctx)
	report := &CycleReport{}

	if opts.MiningSite == "" {
		return s, report, fmt.Errorf("mining site is required")
	}
	market := opts.Market
	if market == "" {
		market = opts.MiningSite
	}

	s, err := l.navigator.Navigate(ctx, s, opts.MiningSite, ship.NavigateOptions{})
	if err != nil {
		return s, report, err
	}

	s, report.Yield, err = l.miner.MineUntilFull(ctx, s, opts.MiningSite, opts.Mine)
	if err != nil {
		return s, report, err
	}

	s, err = l.navigator.Navigate(ctx, s, market, ship.DefaultNavigateOptions())
	if err != nil {
		return s, report, err
	}

	s, report.Proceeds, err = l.seller.SellCargo(ctx, s, opts.Exclude)
	if err != nil {
		return s, report, err
	}

	fields := map[string]interface{}{
		"ship_symbol": s.ShipSymbol(),
		"action":      "mining_cycle",
		"mined":       report.Yield.Total(),
		"sold":        report.Proceeds.TotalUnits(),
		"income":      report.Proceeds.Income(),
	}
	if l.session != nil {
		for k, v := range l.session.Summary() {
			fields[k] = v
		}
	}
	logger.Log("INFO", "Mining cycle complete", fields)

	return s, report, nil
}

// MarketSell takes a ship to a market and sells its hold there
type MarketSell struct {
	navigator *ship.Navigator
	seller    *ship.CargoSeller
}

func NewMarketSell(navigator *ship.Navigator, seller *ship.CargoSeller) *MarketSell {
	return &MarketSell{navigator: navigator, seller: seller}
}

func (m *MarketSell) Run(ctx context.Context, s *navigation.Ship, market string, exclude []string) (*navigation.Ship, *ship.ProceedsReport, error) {
	s, err := m.navigator.Navigate(ctx, s, market, ship.DefaultNavigateOptions())
	if err != nil {
		return s, nil, err
	}
	return m.seller.SellCargo(ctx, s, exclude)
}
