package steps

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/persistence"
	"github.com/andrescamacho/spacetraders-automation/internal/application/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/logging"
	"github.com/andrescamacho/spacetraders-automation/internal/application/setup"
	domainAutomation "github.com/andrescamacho/spacetraders-automation/internal/domain/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/database"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

// safetyLimit stops a run that never reaches its goal
const safetyLimit = 500

type universeContext struct {
	clock    *shared.MockClock
	game     *helpers.FakeGameServer
	db       *gorm.DB
	mapping  *persistence.GormMappingRepository
	registry *setup.HandlerRegistry
	mediator common.Mediator
	settings automation.Settings

	startCredits int
	loops        map[string]domainAutomation.Loop
}

func (uc *universeContext) reset() error {
	uc.clock = shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	uc.game = helpers.NewFakeGameServer(uc.clock)
	uc.startCredits = uc.game.Credits()
	uc.settings = automation.Settings{ErrorPause: 30 * time.Second, IdlePause: time.Minute}
	uc.loops = make(map[string]domainAutomation.Loop)

	db, err := database.NewTestConnection()
	if err != nil {
		return err
	}
	uc.db = db
	uc.mapping = persistence.NewGormMappingRepository(db, uc.clock)
	uc.registry = setup.NewHandlerRegistry(
		uc.game, uc.clock, nil,
		persistence.NewGormSurveyRepository(db),
		uc.mapping,
		persistence.NewGormChartRepository(db),
		setup.Options{},
	)
	uc.mediator = common.NewMediator()
	return uc.registry.RegisterAll(uc.mediator)
}

func (uc *universeContext) close() {
	if uc.db != nil {
		_ = database.Close(uc.db)
		uc.db = nil
	}
}

// Setup steps

func (uc *universeContext) theGameHasWaypoints(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		x, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return err
		}
		y, err := strconv.Atoi(row.Cells[3].Value)
		if err != nil {
			return err
		}
		uc.game.AddWaypoint(row.Cells[0].Value, row.Cells[1].Value, x, y)
	}
	return nil
}

func (uc *universeContext) theMarketTrades(waypoint string, table *godog.Table) error {
	var goods []helpers.FakeMarketGood
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		sell, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		purchase, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return err
		}
		goods = append(goods, helpers.FakeMarketGood{
			Symbol:        row.Cells[0].Value,
			SellPrice:     sell,
			PurchasePrice: purchase,
			TradeVolume:   20,
		})
	}
	uc.game.AddMarket(waypoint, goods...)
	return nil
}

func (uc *universeContext) theAsteroidYields(waypoint, goods string) error {
	uc.game.SetYields(waypoint, splitList(goods)...)
	return nil
}

func (uc *universeContext) aMiningShip(symbol string, capacity int, waypoint string) error {
	uc.game.AddShip(helpers.FakeShipSpec{
		Symbol: symbol, Waypoint: waypoint, CargoCapacity: capacity, Fuel: 100, FuelCapacity: 100,
	})
	return nil
}

func (uc *universeContext) aMiningShipHolding(symbol string, capacity int, waypoint string, units int, good string) error {
	uc.game.AddShip(helpers.FakeShipSpec{
		Symbol: symbol, Waypoint: waypoint, CargoCapacity: capacity, Fuel: 100, FuelCapacity: 100,
		Cargo: map[string]int{good: units},
	})
	return nil
}

func (uc *universeContext) scoutShips(symbols, waypoint string) error {
	for _, symbol := range splitList(symbols) {
		uc.game.AddShip(helpers.FakeShipSpec{
			Symbol: symbol, Role: "SATELLITE", Frame: "FRAME_PROBE", Waypoint: waypoint, Fuel: 400, FuelCapacity: 400,
		})
	}
	return nil
}

func (uc *universeContext) theFactionOffersContract(id string, units int, good, destination string) error {
	uc.game.AddContract(id, good, destination, units, 0, false)
	return nil
}

func (uc *universeContext) contractsAreFulfilledAutomatically() error {
	uc.settings.AutoFulfill = true
	return nil
}

func (uc *universeContext) loopsGiveUpAfter(n int) error {
	uc.settings.MaxConsecutiveFailures = n
	return nil
}

// Run steps

func parseAssignments(table *godog.Table) ([]domainAutomation.Assignment, error) {
	var assignments []domainAutomation.Assignment
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		job, err := domainAutomation.ParseJob(row.Cells[1].Value)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, domainAutomation.Assignment{
			ShipSymbol: row.Cells[0].Value,
			Job:        job,
			MiningSite: row.Cells[2].Value,
			Market:     row.Cells[3].Value,
			ContractID: row.Cells[4].Value,
		})
	}
	return assignments, nil
}

// run drives the fleet; stop decides after each handled request whether to cancel
func (uc *universeContext) run(table *godog.Table, stop func(handled int32) bool) error {
	assignments, err := parseAssignments(table)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handled int32
	uc.mediator.Use(func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		resp, err := next(ctx, request)
		n := atomic.AddInt32(&handled, 1)
		if n >= safetyLimit || (stop != nil && stop(n)) {
			cancel()
		}
		return resp, err
	})

	logger := logging.NewShipLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	loops, err := automation.NewDriver(uc.mediator, uc.clock, logger, uc.settings).Run(ctx, assignments)
	if err != nil {
		return err
	}
	for _, l := range loops {
		uc.loops[l.ShipSymbol()] = l
	}
	if atomic.LoadInt32(&handled) >= safetyLimit {
		return fmt.Errorf("fleet did not finish within %d requests", safetyLimit)
	}
	return nil
}

func (uc *universeContext) theFleetRunsWithAssignments(table *godog.Table) error {
	return uc.run(table, nil)
}

func (uc *universeContext) theFleetRunsForIterations(iterations int, table *godog.Table) error {
	return uc.run(table, func(handled int32) bool {
		return handled >= int32(iterations)
	})
}

func (uc *universeContext) theFleetRunsUntilMapped(systemSymbol string, table *godog.Table) error {
	return uc.run(table, func(int32) bool {
		state, err := uc.mapping.SystemMappedState(context.Background(), systemSymbol)
		return err == nil && state == system.MappedStateMapped
	})
}

// Assertion steps

func (uc *universeContext) loopOf(ship string) (domainAutomation.Loop, error) {
	l, ok := uc.loops[ship]
	if !ok {
		return domainAutomation.Loop{}, fmt.Errorf("no loop ran for %s", ship)
	}
	return l, nil
}

func (uc *universeContext) theLoopOfShouldBe(ship, status string) error {
	l, err := uc.loopOf(ship)
	if err != nil {
		return err
	}
	if got := string(l.Status()); got != status {
		return fmt.Errorf("expected %s loop to be %s, got %s (last error: %v)", ship, status, got, l.LastError())
	}
	return nil
}

func (uc *universeContext) theLoopOfShouldBeAfterIterations(ship, status string, iterations int) error {
	if err := uc.theLoopOfShouldBe(ship, status); err != nil {
		return err
	}
	l, _ := uc.loopOf(ship)
	if got := l.Iterations(); got != iterations {
		return fmt.Errorf("expected %d iterations for %s, got %d", iterations, ship, got)
	}
	return nil
}

func (uc *universeContext) theAgentShouldHaveEarnedCredits() error {
	if got := uc.game.Credits(); got <= uc.startCredits {
		return fmt.Errorf("expected credits above %d, got %d", uc.startCredits, got)
	}
	return nil
}

func (uc *universeContext) theSessionShouldHaveRecordedIncome(txType string) error {
	if got := uc.registry.Session().Total(ledger.TransactionType(txType)); got <= 0 {
		return fmt.Errorf("expected %s income in the session, got %d", txType, got)
	}
	return nil
}

func (uc *universeContext) contractShouldHaveUnitsDelivered(id string, units int) error {
	if got := uc.game.ContractProgress(id); got != units {
		return fmt.Errorf("expected %d units delivered on %s, got %d", units, id, got)
	}
	return nil
}

func (uc *universeContext) theGameShouldHaveReceivedRequests(n int, method string) error {
	if got := uc.game.Calls(method); got != n {
		return fmt.Errorf("expected %d %s requests, got %d", n, method, got)
	}
	return nil
}

func (uc *universeContext) shouldHaveAnEmptyCargoHold(ship string) error {
	if cargo := uc.game.ShipCargo(ship); len(cargo) > 0 {
		return fmt.Errorf("expected %s to be empty, holds %v", ship, cargo)
	}
	return nil
}

func (uc *universeContext) theSystemShouldBe(systemSymbol, state string) error {
	got, err := uc.mapping.SystemMappedState(context.Background(), systemSymbol)
	if err != nil {
		return err
	}
	if string(got) != state {
		return fmt.Errorf("expected %s to be %s, got %s", systemSymbol, state, got)
	}
	return nil
}

func (uc *universeContext) aSingleShipShouldHaveClaimed(systemSymbol string) error {
	history, err := uc.mapping.History(context.Background(), systemSymbol)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no claim recorded for %s", systemSymbol)
	}
	for _, h := range history[1:] {
		if h.ShipSymbol != history[0].ShipSymbol {
			return fmt.Errorf("%s was claimed by both %s and %s", systemSymbol, history[0].ShipSymbol, h.ShipSymbol)
		}
	}
	return nil
}

// InitializeUniverseScenario registers end-to-end automation steps
func InitializeUniverseScenario(sc *godog.ScenarioContext) {
	uc := &universeContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, uc.reset()
	})
	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		uc.close()
		return ctx, nil
	})

	// Setup steps
	sc.Step(`^the game has waypoints:$`, uc.theGameHasWaypoints)
	sc.Step(`^the market at "([^"]*)" trades:$`, uc.theMarketTrades)
	sc.Step(`^the asteroid "([^"]*)" yields "([^"]*)"$`, uc.theAsteroidYields)
	sc.Step(`^a mining ship "([^"]*)" with (\d+) cargo units at "([^"]*)"$`, uc.aMiningShip)
	sc.Step(`^a mining ship "([^"]*)" with (\d+) cargo units at "([^"]*)" holding (\d+) "([^"]*)"$`, uc.aMiningShipHolding)
	sc.Step(`^scout ships "([^"]*)" at "([^"]*)"$`, uc.scoutShips)
	sc.Step(`^the faction offers contract "([^"]*)" for (\d+) "([^"]*)" at "([^"]*)"$`, uc.theFactionOffersContract)
	sc.Step(`^contracts are fulfilled automatically$`, uc.contractsAreFulfilledAutomatically)
	sc.Step(`^loops give up after (\d+) consecutive failures$`, uc.loopsGiveUpAfter)

	// Run steps
	sc.Step(`^the fleet runs with assignments:$`, uc.theFleetRunsWithAssignments)
	sc.Step(`^the fleet runs for (\d+) iterations with assignments:$`, uc.theFleetRunsForIterations)
	sc.Step(`^the fleet runs until "([^"]*)" is mapped with assignments:$`, uc.theFleetRunsUntilMapped)

	// Assertion steps
	sc.Step(`^the loop of "([^"]*)" should be "([^"]*)"$`, uc.theLoopOfShouldBe)
	sc.Step(`^the loop of "([^"]*)" should be "([^"]*)" after (\d+) iterations$`, uc.theLoopOfShouldBeAfterIterations)
	sc.Step(`^the agent should have earned credits$`, uc.theAgentShouldHaveEarnedCredits)
	sc.Step(`^the session should have recorded "([^"]*)" income$`, uc.theSessionShouldHaveRecordedIncome)
	sc.Step(`^contract "([^"]*)" should have (\d+) units delivered$`, uc.contractShouldHaveUnitsDelivered)
	sc.Step(`^the game should have received (\d+) "([^"]*)" requests?$`, uc.theGameShouldHaveReceivedRequests)
	sc.Step(`^"([^"]*)" should have an empty cargo hold$`, uc.shouldHaveAnEmptyCargoHold)
	sc.Step(`^the system "([^"]*)" should be "([^"]*)"$`, uc.theSystemShouldBe)
	sc.Step(`^a single ship should have claimed "([^"]*)"$`, uc.aSingleShipShouldHaveClaimed)
}
