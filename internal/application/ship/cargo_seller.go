package ship

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
)

// SaleFailure is a good the market refused
type SaleFailure struct {
	Good  string
	Units int
	Err   error
}

// ProceedsReport sums one selling pass
type ProceedsReport struct {
	UnitsSold    map[string]int
	Transactions []ledger.Transaction
	Failures     []SaleFailure
}

func newProceedsReport() *ProceedsReport {
	return &ProceedsReport{UnitsSold: make(map[string]int)}
}

// Income is the sum of all sale totals in the report
func (r *ProceedsReport) Income() int {
	total := 0
	for _, tx := range r.Transactions {
		total += tx.TotalPrice
	}
	return total
}

// TotalUnits is the number of units sold across goods
func (r *ProceedsReport) TotalUnits() int {
	total := 0
	for _, units := range r.UnitsSold {
		total += units
	}
	return total
}

// CargoSeller sells a ship's hold at its current waypoint
type CargoSeller struct {
	client  ports.APIClient
	session *ledger.Session
}

// NewCargoSeller creates a seller. Sales are recorded in session when it is not nil.
func NewCargoSeller(client ports.APIClient, session *ledger.Session) *CargoSeller {
	return &CargoSeller{client: client, session: session}
}

// SellCargo docks the ship and sells every held good not in exclude.
//
// Each good is sold in chunks no larger than the market's trade volume. A
// refused sale is added to the report and the next good is tried.
func (s *CargoSeller) SellCargo(ctx context.Context, ship *navigation.Ship, exclude []string) (*navigation.Ship, *ProceedsReport, error) {
	logger := common.LoggerFromContext(ctx)
	report := newProceedsReport()

	if !ship.IsDocked() {
		nav, err := s.client.DockShip(ctx, ship.ShipSymbol())
		if err != nil {
			return ship, report, fmt.Errorf("failed to dock %s before selling: %w", ship.ShipSymbol(), err)
		}
		ship.UpdateNav(nav)
	}

	cargo, err := s.client.GetShipCargo(ctx, ship.ShipSymbol())
	if err != nil {
		return ship, report, fmt.Errorf("failed to fetch cargo of %s: %w", ship.ShipSymbol(), err)
	}
	ship.UpdateCargo(cargo)

	excluded := make(map[string]bool, len(exclude))
	for _, good := range exclude {
		excluded[good] = true
	}

	// The market only tells us trade volumes; missing data means sell in one go
	limits := make(map[string]int)
	if mkt, err := s.client.GetMarket(ctx, ship.SystemSymbol(), ship.CurrentLocation()); err == nil {
		for _, good := range cargo.Goods() {
			limits[good] = mkt.GetTransactionLimit(good)
		}
	} else {
		logger.Log("WARNING", "Market data unavailable, selling without trade volume limits", map[string]interface{}{
			"ship_symbol": ship.ShipSymbol(),
			"waypoint":    ship.CurrentLocation(),
			"error":       err.Error(),
		})
	}

	for _, good := range cargo.Goods() {
		if excluded[good] {
			continue
		}
		if err := s.sellGood(ctx, ship, good, cargo.GetItemUnits(good), limits[good], report); err != nil {
			if ctx.Err() != nil {
				return ship, report, ctx.Err()
			}
			report.Failures = append(report.Failures, SaleFailure{Good: good, Units: ship.Cargo().GetItemUnits(good), Err: err})
			logAPIError(logger, "Sale failed", ship.ShipSymbol(), err)
		}
	}

	logger.Log("INFO", "Cargo sold", map[string]interface{}{
		"ship_symbol": ship.ShipSymbol(),
		"action":      "sell",
		"waypoint":    ship.CurrentLocation(),
		"units":       report.TotalUnits(),
		"income":      report.Income(),
		"failures":    len(report.Failures),
	})

	return ship, report, nil
}

func (s *CargoSeller) sellGood(ctx context.Context, ship *navigation.Ship, good string, units, limit int, report *ProceedsReport) error {
	logger := common.LoggerFromContext(ctx)

	remaining := units
	for remaining > 0 {
		chunk := remaining
		if limit > 0 && chunk > limit {
			chunk = limit
		}

		result, err := s.client.SellCargo(ctx, ship.ShipSymbol(), good, chunk)
		if err != nil {
			return fmt.Errorf("failed to sell %d %s: %w", chunk, good, err)
		}
		if result.Cargo != nil {
			ship.UpdateCargo(result.Cargo)
		}

		tx := result.Transaction
		report.UnitsSold[good] += tx.Units
		report.Transactions = append(report.Transactions, tx)
		if s.session != nil {
			if err := s.session.Record(tx); err != nil {
				logger.Log("WARNING", "Sale transaction not recorded", map[string]interface{}{
					"ship_symbol": ship.ShipSymbol(),
					"good":        good,
					"error":       err.Error(),
				})
			}
		}
		metrics.RecordSale(ship.ShipSymbol(), good, tx.Units, tx.TotalPrice)

		logger.Log("DEBUG", "Sold cargo", map[string]interface{}{
			"ship_symbol": ship.ShipSymbol(),
			"good":        good,
			"units":       tx.Units,
			"price":       tx.PricePerUnit,
			"total":       tx.TotalPrice,
		})

		remaining -= chunk
	}
	return nil
}
