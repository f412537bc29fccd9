package mining_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/persistence"
	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
	domainMining "github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

const asteroid = "X1-TEST-B2"

type miningFixture struct {
	game    *helpers.FakeGameServer
	clock   *shared.MockClock
	surveys *persistence.GormSurveyRepository
}

func newMiningFixture(t *testing.T) *miningFixture {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	game := helpers.NewFakeGameServer(clock)
	game.AddWaypoint("X1-TEST-A1", "PLANET", 0, 0)
	game.AddWaypoint(asteroid, "ENGINEERED_ASTEROID", 10, 0)
	game.AddMarket("X1-TEST-A1",
		helpers.FakeMarketGood{Symbol: "FUEL", PurchasePrice: 2},
		helpers.FakeMarketGood{Symbol: "IRON_ORE", SellPrice: 40, TradeVolume: 20},
		helpers.FakeMarketGood{Symbol: "COPPER_ORE", SellPrice: 55, TradeVolume: 20},
	)
	game.SetYields(asteroid, "IRON_ORE", "COPPER_ORE")
	return &miningFixture{
		game:    game,
		clock:   clock,
		surveys: persistence.NewGormSurveyRepository(helpers.NewTestDB(t)),
	}
}

func (f *miningFixture) ship(t *testing.T, spec helpers.FakeShipSpec) *navigation.Ship {
	t.Helper()
	f.game.AddShip(spec)
	s, err := f.game.GetShip(context.Background(), spec.Symbol)
	require.NoError(t, err)
	f.game.ResetCalls()
	return s
}

func TestMineUntilFull_FullCargoShortCircuits(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 10, Cargo: map[string]int{"IRON_ORE": 10}})
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	_, report, err := miner.MineUntilFull(context.Background(), s, asteroid, mining.MineOptions{})

	// Assert
	require.NoError(t, err)
	assert.Zero(t, report.Extractions())
	assert.Zero(t, f.game.Calls("ExtractResources"))
}

func TestMineUntilFull_HonoursServerCooldown(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 12})
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	result, report, err := miner.MineUntilFull(context.Background(), s, asteroid, mining.MineOptions{})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsCargoFull())
	assert.Equal(t, 3, report.Extractions())
	assert.Equal(t, 12, report.Total())
	assert.Equal(t, 3, f.game.Calls("ExtractResources"))
	assert.Equal(t, 2*f.game.ExtractCooldown, f.clock.TotalSlept())
}

func TestMineUntilFull_OrbitsDockedShip(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, Status: navigation.NavStatusDocked, CargoCapacity: 5})
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	result, _, err := miner.MineUntilFull(context.Background(), s, asteroid, mining.MineOptions{})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsInOrbit())
	assert.Equal(t, []string{"OrbitShip", "ExtractResources"}, f.game.CallLog())
}

func TestMineUntilFull_WaitsOutCooldownError(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 5})
	f.game.SetCooldown("MINER-1", 20*time.Second)
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	_, report, err := miner.MineUntilFull(context.Background(), s, asteroid, mining.MineOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.Extractions())
	assert.Equal(t, 2, f.game.Calls("ExtractResources"))
	assert.Equal(t, 20*time.Second, f.clock.TotalSlept())
}

func TestMineUntilFull_UsesStoredSurvey(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 5})
	survey, err := domainMining.NewSurvey("SIG-GOLD", asteroid, []string{"GOLD_ORE"}, f.clock.Now().Add(time.Hour), domainMining.SurveySizeLarge)
	require.NoError(t, err)
	require.NoError(t, f.surveys.Save(context.Background(), survey))
	f.game.AddSurvey(survey)
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	_, report, err := miner.MineUntilFull(context.Background(), s, asteroid, mining.MineOptions{UseSurveys: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, report.Units("GOLD_ORE"))
}

func TestMineUntilFull_DropsExhaustedSurvey(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 5})
	survey, err := domainMining.NewSurvey("SIG-SPENT", asteroid, []string{"GOLD_ORE"}, f.clock.Now().Add(time.Hour), domainMining.SurveySizeSmall)
	require.NoError(t, err)
	require.NoError(t, f.surveys.Save(context.Background(), survey))
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	_, report, err := miner.MineUntilFull(context.Background(), s, asteroid, mining.MineOptions{UseSurveys: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, f.game.Calls("ExtractResources"))
	assert.Zero(t, report.Units("GOLD_ORE"))
	remaining, err := f.surveys.FindByWaypoint(context.Background(), asteroid, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestMineUntilFull_RecoversFromGameError(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 5})
	f.game.FailNext("ExtractResources", &shared.APIError{StatusCode: 400, Code: 4999, Message: "transient"})
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	result, _, err := miner.MineUntilFull(context.Background(), s, asteroid, mining.MineOptions{})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsCargoFull())
	assert.Equal(t, 1, f.game.Calls("GetShipCargo"))
	assert.Equal(t, 5*time.Second, f.clock.TotalSlept())
}

func TestMineUntilFull_StopsOnCancellation(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: asteroid, CargoCapacity: 50})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	miner := mining.NewMiner(f.game, f.clock, f.surveys)

	// Act
	_, _, err := miner.MineUntilFull(ctx, s, asteroid, mining.MineOptions{})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}
