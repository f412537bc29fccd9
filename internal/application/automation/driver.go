package automation

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/logging"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// Driver runs one loop per assigned ship concurrently.
// Each ship logs through its own child logger with ship_symbol bound.
type Driver struct {
	mediator common.Mediator
	clock    shared.Clock
	logger   *logging.ShipLogger
	settings Settings

	mu      sync.RWMutex
	runners []*ShipRunner
}

// NewDriver creates a driver. A nil logger falls back to slog's default.
func NewDriver(mediator common.Mediator, clock shared.Clock, logger *logging.ShipLogger, settings Settings) *Driver {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = logging.NewShipLogger(nil)
	}
	return &Driver{
		mediator: mediator,
		clock:    clock,
		logger:   logger,
		settings: settings,
	}
}

// Run blocks until every loop has finished or ctx is cancelled, then returns
// the final state of each loop in assignment order.
func (d *Driver) Run(ctx context.Context, assignments []automation.Assignment) ([]automation.Loop, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("no ship assignments")
	}
	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("invalid assignment for %s: %w", a.ShipSymbol, err)
		}
		if seen[a.ShipSymbol] {
			return nil, fmt.Errorf("ship %s assigned twice", a.ShipSymbol)
		}
		seen[a.ShipSymbol] = true
	}

	runners := make([]*ShipRunner, len(assignments))
	for i, a := range assignments {
		runners[i] = NewShipRunner(d.mediator, d.clock, a, d.settings)
	}
	d.mu.Lock()
	d.runners = runners
	d.mu.Unlock()

	d.logger.Log("INFO", "Automation started", map[string]interface{}{
		"ships":          len(assignments),
		"max_concurrent": d.settings.MaxConcurrentShips,
	})

	var g errgroup.Group
	if d.settings.MaxConcurrentShips > 0 {
		g.SetLimit(d.settings.MaxConcurrentShips)
	}
	for i, runner := range runners {
		runner := runner
		shipCtx := common.WithLogger(ctx, d.logger.ForShip(assignments[i].ShipSymbol))
		g.Go(func() error {
			runner.Run(shipCtx)
			return nil
		})
	}
	_ = g.Wait()

	loops := d.Status()
	summary := map[string]interface{}{"ships": len(loops)}
	for _, loop := range loops {
		key := "loops_" + string(loop.Status())
		count, _ := summary[key].(int)
		summary[key] = count + 1
	}
	d.logger.Log("INFO", "Automation finished", summary)

	return loops, nil
}

// Status returns a snapshot of every loop of the current run
func (d *Driver) Status() []automation.Loop {
	d.mu.RLock()
	defer d.mu.RUnlock()
	loops := make([]automation.Loop, len(d.runners))
	for i, runner := range d.runners {
		loops[i] = runner.Loop()
	}
	return loops
}
