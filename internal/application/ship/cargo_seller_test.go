package ship_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

func TestSellCargo_SplitsByTradeVolumeAndRecordsIncome(t *testing.T) {
	// Arrange
	game, _ := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: "X1-TEST-C3", CargoCapacity: 40,
		Cargo: map[string]int{"IRON_ORE": 25},
	})
	s := loadShip(t, game, "MINER-1")
	session := ledger.NewSession()
	seller := ship.NewCargoSeller(game, session)

	// Act
	result, report, err := seller.SellCargo(context.Background(), s, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, game.Calls("SellCargo"))
	assert.Equal(t, 25, report.UnitsSold["IRON_ORE"])
	assert.Equal(t, 25*40, report.Income())
	assert.Equal(t, 25*40, session.Income())
	assert.True(t, result.Cargo().IsEmpty())
	assert.True(t, result.IsDocked())
}

func TestSellCargo_RespectsExclusions(t *testing.T) {
	// Arrange
	game, _ := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: "X1-TEST-C3", CargoCapacity: 40,
		Cargo: map[string]int{"IRON_ORE": 8, "COPPER_ORE": 6},
	})
	s := loadShip(t, game, "MINER-1")
	seller := ship.NewCargoSeller(game, nil)

	// Act
	result, report, err := seller.SellCargo(context.Background(), s, []string{"IRON_ORE"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 6, report.UnitsSold["COPPER_ORE"])
	assert.Zero(t, report.UnitsSold["IRON_ORE"])
	assert.Equal(t, 8, result.Cargo().GetItemUnits("IRON_ORE"))
	assert.Equal(t, map[string]int{"IRON_ORE": 8}, game.ShipCargo("MINER-1"))
}

func TestSellCargo_RefusedGoodDoesNotStopOtherSales(t *testing.T) {
	// Arrange
	game, _ := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{
		Symbol: "MINER-1", Waypoint: "X1-TEST-C3", CargoCapacity: 40,
		Cargo: map[string]int{"ICE_WATER": 4, "IRON_ORE": 5},
	})
	s := loadShip(t, game, "MINER-1")
	seller := ship.NewCargoSeller(game, nil)

	// Act
	_, report, err := seller.SellCargo(context.Background(), s, nil)

	// Assert
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "ICE_WATER", report.Failures[0].Good)
	apiErr, ok := shared.AsAPIError(report.Failures[0].Err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorCodeMarketTradeNotSold, apiErr.Code)
	assert.Equal(t, 5, report.UnitsSold["IRON_ORE"])
}

func TestSellCargo_EmptyHoldSellsNothing(t *testing.T) {
	// Arrange
	game, _ := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-C3", CargoCapacity: 40})
	s := loadShip(t, game, "MINER-1")
	seller := ship.NewCargoSeller(game, nil)

	// Act
	_, report, err := seller.SellCargo(context.Background(), s, nil)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, game.Calls("SellCargo"))
	assert.Zero(t, report.TotalUnits())
	assert.Empty(t, report.Failures)
}
