package ship_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

func newUniverse(t *testing.T) (*helpers.FakeGameServer, *shared.MockClock) {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	game := helpers.NewFakeGameServer(clock)
	game.AddWaypoint("X1-TEST-A1", "PLANET", 0, 0)
	game.AddWaypoint("X1-TEST-B2", "ASTEROID", 10, 0)
	game.AddWaypoint("X1-TEST-C3", "MOON", 0, 10)
	game.AddMarket("X1-TEST-C3",
		helpers.FakeMarketGood{Symbol: "FUEL", PurchasePrice: 2, SellPrice: 1},
		helpers.FakeMarketGood{Symbol: "IRON_ORE", SellPrice: 40, TradeVolume: 10},
		helpers.FakeMarketGood{Symbol: "COPPER_ORE", SellPrice: 50, TradeVolume: 10},
	)
	return game, clock
}

func loadShip(t *testing.T, game *helpers.FakeGameServer, symbol string) *navigation.Ship {
	t.Helper()
	s, err := game.GetShip(context.Background(), symbol)
	require.NoError(t, err)
	game.ResetCalls()
	return s
}

func TestNavigate_AlreadyAtDestinationMakesNoCalls(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 100, FuelCapacity: 100})
	s := loadShip(t, game, "MINER-1")
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-A1", ship.DefaultNavigateOptions())

	// Assert
	require.NoError(t, err)
	assert.Same(t, s, result)
	assert.Empty(t, game.CallLog())
	assert.Zero(t, clock.TotalSlept())
}

func TestNavigate_DockedShipOrbitsTravelsDocksAndRefuels(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: "X1-TEST-A1", Status: navigation.NavStatusDocked,
		CargoCapacity: 30, Fuel: 50, FuelCapacity: 100,
	})
	s := loadShip(t, game, "MINER-1")
	session := ledger.NewSession()
	navigator := ship.NewNavigator(game, clock, session)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-C3", ship.DefaultNavigateOptions())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "X1-TEST-C3", result.CurrentLocation())
	assert.True(t, result.IsDocked())
	assert.True(t, result.Fuel().IsFull())
	assert.Equal(t, 1, game.Calls("OrbitShip"))
	assert.Equal(t, 1, game.Calls("NavigateShip"))
	assert.Equal(t, 1, game.Calls("RefuelShip"))
	assert.GreaterOrEqual(t, clock.TotalSlept(), game.TravelTime)
	assert.Equal(t, 60*game.FuelPrice, session.Expenses())
}

func TestNavigate_SkipsRefuelWithoutFuelMarket(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 50, FuelCapacity: 100})
	s := loadShip(t, game, "MINER-1")
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-B2", ship.DefaultNavigateOptions())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "X1-TEST-B2", result.CurrentLocation())
	assert.Zero(t, game.Calls("RefuelShip"))
	assert.Equal(t, 1, game.Calls("DockShip"))
}

func TestNavigate_NoDockNoRefuelLeavesShipInOrbit(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 50, FuelCapacity: 100})
	s := loadShip(t, game, "MINER-1")
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-C3", ship.NavigateOptions{})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsInOrbit())
	assert.Zero(t, game.Calls("DockShip"))
	assert.Zero(t, game.Calls("GetMarket"))
}

func TestNavigate_SecondCallIsIdempotent(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 100, FuelCapacity: 100})
	s := loadShip(t, game, "MINER-1")
	navigator := ship.NewNavigator(game, clock, nil)
	s, err := navigator.Navigate(context.Background(), s, "X1-TEST-B2", ship.NavigateOptions{})
	require.NoError(t, err)
	game.ResetCalls()

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-B2", ship.NavigateOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "X1-TEST-B2", result.CurrentLocation())
	assert.Empty(t, game.CallLog())
}

func TestNavigate_WaitsForShipAlreadyInTransit(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 100, FuelCapacity: 100})
	_, err := game.NavigateShip(context.Background(), "MINER-1", "X1-TEST-B2")
	require.NoError(t, err)
	s := loadShip(t, game, "MINER-1")
	require.True(t, s.IsInTransit())
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-B2", ship.NavigateOptions{})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsInOrbit())
	assert.Zero(t, game.Calls("NavigateShip"))
	assert.Equal(t, game.TravelTime, clock.TotalSlept())
}

func TestNavigate_DepartureFailureAborts(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 0, FuelCapacity: 100})
	game.FailNext("NavigateShip", &shared.APIError{StatusCode: 400, Code: 4203, Message: "insufficient fuel"})
	s := loadShip(t, game, "MINER-1")
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	_, err := navigator.Navigate(context.Background(), s, "X1-TEST-B2", ship.DefaultNavigateOptions())

	// Assert
	require.Error(t, err)
	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 4203, apiErr.Code)
	assert.Zero(t, game.Calls("DockShip"))
	location, _ := game.ShipLocation("MINER-1")
	assert.Equal(t, "X1-TEST-A1", location)
}

func TestNavigate_FlightModeFailureIsNotFatal(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "PROBE-1", Role: navigation.RoleSatellite, Frame: navigation.FrameProbe,
		Waypoint: "X1-TEST-A1",
	})
	s := loadShip(t, game, "PROBE-1")
	game.FailNext("SetFlightMode", &shared.APIError{StatusCode: 400, Code: 4211, Message: "flight mode rejected"})
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-B2", ship.NavigateOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "X1-TEST-B2", result.CurrentLocation())
	assert.Equal(t, shared.FlightModeCruise, result.Nav().FlightMode)
}

func TestNavigate_ProbeSwitchesToBurn(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "PROBE-1", Role: navigation.RoleSatellite, Frame: navigation.FrameProbe,
		Waypoint: "X1-TEST-A1",
	})
	s := loadShip(t, game, "PROBE-1")
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-B2", ship.NavigateOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, game.Calls("SetFlightMode"))
	assert.Equal(t, shared.FlightModeBurn, result.Nav().FlightMode)
}

func TestNavigate_CancelledWhileInTransit(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 100, FuelCapacity: 100})
	_, err := game.NavigateShip(context.Background(), "MINER-1", "X1-TEST-B2")
	require.NoError(t, err)
	s := loadShip(t, game, "MINER-1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	_, err = navigator.Navigate(ctx, s, "X1-TEST-B2", ship.NavigateOptions{})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNavigate_RefuelWithoutDockReturnsToOrbit(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30, Fuel: 50, FuelCapacity: 100})
	s := loadShip(t, game, "MINER-1")
	navigator := ship.NewNavigator(game, clock, nil)

	// Act
	result, err := navigator.Navigate(context.Background(), s, "X1-TEST-C3", ship.NavigateOptions{Refuel: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, game.Calls("RefuelShip"))
	assert.True(t, result.Fuel().IsFull())
	assert.False(t, result.IsDocked())
	_, status := game.ShipLocation("MINER-1")
	assert.Equal(t, navigation.NavStatusInOrbit, status)
}
