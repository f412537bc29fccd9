package contract_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	domainContract "github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

const (
	hq       = "X1-TEST-A1"
	asteroid = "X1-TEST-B2"
)

func newContractFixture(t *testing.T) (*helpers.FakeGameServer, *contract.Workflow, *ledger.Session) {
	t.Helper()
	return newContractFixtureWithOptions(t, contract.WorkflowOptions{})
}

func newContractFixtureWithOptions(t *testing.T, opts contract.WorkflowOptions) (*helpers.FakeGameServer, *contract.Workflow, *ledger.Session) {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	game := helpers.NewFakeGameServer(clock)
	game.AddWaypoint(hq, "PLANET", 0, 0)
	game.AddWaypoint(asteroid, "ENGINEERED_ASTEROID", 10, 0)
	game.AddMarket(hq, helpers.FakeMarketGood{Symbol: "FUEL", PurchasePrice: 2})
	game.AddMarket(asteroid, helpers.FakeMarketGood{Symbol: "ICE_WATER", SellPrice: 12, TradeVolume: 20})
	game.SetYields(asteroid, "IRON_ORE", "ICE_WATER")

	session := ledger.NewSession()
	navigator := ship.NewNavigator(game, clock, session)
	workflow := contract.NewWorkflow(
		game,
		navigator,
		mining.NewMiner(game, clock, nil),
		ship.NewCargoSeller(game, session),
		session,
		opts,
	)
	return game, workflow, session
}

func TestRunContract_AcceptsThenMinesAndSellsSurplus(t *testing.T) {
	// Arrange
	game, workflow, session := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 20, 0, false)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: hq, CargoCapacity: 10, Fuel: 100, FuelCapacity: 100})

	// Act
	done, err := workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, game.Calls("AcceptContract"))
	assert.Equal(t, map[string]int{"IRON_ORE": 5}, game.ShipCargo("MINER-1"))
	assert.Equal(t, 1000+5*12, session.Income())
}

func TestRunContract_NeverAcceptsTwice(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 20, 0, true)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10})

	// Act
	_, err := workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, game.Calls("AcceptContract"))
}

func TestRunContract_AlreadyAcceptedErrorIsNotFatal(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 20, 0, false)
	game.FailNext("AcceptContract", &shared.APIError{StatusCode: 400, Code: shared.ErrorCodeContractAccepted, Message: "already accepted"})
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10})

	// Act
	_, err := workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	assert.NoError(t, err)
}

func TestRunContract_DeliversAboveThresholdCappedAtRemaining(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 20, 14, true)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10, Fuel: 100, FuelCapacity: 100,
		Cargo: map[string]int{"IRON_ORE": 8},
	})

	// Act
	done, err := workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 20, game.ContractProgress("C-1"))
	assert.Equal(t, map[string]int{"IRON_ORE": 2}, game.ShipCargo("MINER-1"))
	assert.Zero(t, game.Calls("ExtractResources"))
}

func TestRunContract_AtThresholdMinesInsteadOfDelivering(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 20, 0, true)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10,
		Cargo: map[string]int{"IRON_ORE": 7},
	})

	// Act
	_, err := workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, game.Calls("DeliverContract"))
	assert.Equal(t, 1, game.Calls("ExtractResources"))
}

func TestRunContract_LoopTerminates(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 15, 0, false)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: hq, CargoCapacity: 10, Fuel: 400, FuelCapacity: 400})

	// Act
	done := false
	iterations := 0
	for !done && iterations < 20 {
		var err error
		done, err = workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)
		require.NoError(t, err)
		iterations++
	}

	// Assert
	assert.True(t, done)
	assert.Equal(t, 15, game.ContractProgress("C-1"))
	assert.Less(t, iterations, 20)
}

func TestFulfill_CompletesDeliveredContract(t *testing.T) {
	// Arrange
	game, workflow, session := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 20, 20, true)

	// Act
	c, err := workflow.Fulfill(context.Background(), "C-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, c.Fulfilled())
	assert.Equal(t, 10000, session.Total(ledger.TransactionTypeContractFulfilled))

	again, err := workflow.Fulfill(context.Background(), "C-1")
	require.NoError(t, err)
	assert.True(t, again.Fulfilled())
	assert.Equal(t, 1, game.Calls("FulfillContract"))
}

func TestFulfill_RejectsIncompleteOrUnaccepted(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixture(t)
	game.AddContract("C-OPEN", "IRON_ORE", hq, 20, 5, true)
	game.AddContract("C-NEW", "IRON_ORE", hq, 20, 0, false)

	// Act
	_, incompleteErr := workflow.Fulfill(context.Background(), "C-OPEN")
	_, unacceptedErr := workflow.Fulfill(context.Background(), "C-NEW")

	// Assert
	assert.Error(t, incompleteErr)
	assert.ErrorIs(t, unacceptedErr, domainContract.ErrNotAccepted)
	assert.Zero(t, game.Calls("FulfillContract"))
}

func TestRunContract_SellingAtOverridesSurplusMarket(t *testing.T) {
	// Arrange
	const refinery = "X1-TEST-C3"
	game, workflow, _ := newContractFixture(t)
	game.AddWaypoint(refinery, "PLANET", 30, 0)
	game.AddMarket(refinery, helpers.FakeMarketGood{Symbol: "ICE_WATER", SellPrice: 30, TradeVolume: 20})
	game.SetYields(asteroid, "ICE_WATER")
	game.AddContract("C-1", "IRON_ORE", hq, 20, 0, true)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10, Fuel: 100, FuelCapacity: 100})

	// Act
	_, err := workflow.SellingAt(refinery).RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	require.NoError(t, err)
	location, _ := game.ShipLocation("MINER-1")
	assert.Equal(t, refinery, location)
	assert.Empty(t, game.ShipCargo("MINER-1"))
}

func TestRunContract_ThresholdOfOneStillDeliversFullHold(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixtureWithOptions(t, contract.WorkflowOptions{Threshold: 1.0})
	game.AddContract("C-1", "IRON_ORE", hq, 20, 0, true)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10, Fuel: 100, FuelCapacity: 100,
		Cargo: map[string]int{"IRON_ORE": 10},
	})

	// Act
	done, err := workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, game.Calls("DeliverContract"))
	assert.Equal(t, 10, game.ContractProgress("C-1"))
	assert.Zero(t, game.Calls("ExtractResources"))
}

func TestRunContract_DeliversBelowThresholdWhenHoldCoversRemaining(t *testing.T) {
	// Arrange
	game, workflow, _ := newContractFixture(t)
	game.AddContract("C-1", "IRON_ORE", hq, 20, 16, true)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10, Fuel: 100, FuelCapacity: 100,
		Cargo: map[string]int{"IRON_ORE": 5},
	})

	// Act
	done, err := workflow.RunContract(context.Background(), "MINER-1", "C-1", asteroid)

	// Assert
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 20, game.ContractProgress("C-1"))
	assert.Equal(t, map[string]int{"IRON_ORE": 1}, game.ShipCargo("MINER-1"))
	assert.Zero(t, game.Calls("ExtractResources"))
}
