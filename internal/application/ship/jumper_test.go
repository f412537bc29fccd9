package ship_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

func TestJump_TravelsToGateThenJumps(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddWaypoint("X1-TEST-J9", "JUMP_GATE", 5, 5)
	game.AddWaypoint("X1-NEXT-J1", "JUMP_GATE", 0, 0)
	game.AddJumpGate("X1-TEST-J9", "X1-NEXT-J1")
	game.AddShip(helpers.FakeShipSpec{Symbol: "EXPLORER-1", Waypoint: "X1-TEST-A1", JumpDrive: true, Fuel: 100, FuelCapacity: 100})
	s := loadShip(t, game, "EXPLORER-1")
	navigator := ship.NewNavigator(game, clock, nil)
	jumper := ship.NewJumper(game, clock, navigator)

	// Act
	result, err := jumper.Jump(context.Background(), s, "X1-TEST-J9", "X1-NEXT-J1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "X1-NEXT", result.SystemSymbol())
	assert.Equal(t, "X1-NEXT-J1", result.CurrentLocation())
	assert.Equal(t, game.TravelTime+game.JumpCooldown, clock.TotalSlept())
}

func TestJump_RetriesAfterCooldown(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddWaypoint("X1-TEST-J9", "JUMP_GATE", 5, 5)
	game.AddWaypoint("X1-NEXT-J1", "JUMP_GATE", 0, 0)
	game.AddJumpGate("X1-TEST-J9", "X1-NEXT-J1")
	game.AddShip(helpers.FakeShipSpec{Symbol: "EXPLORER-1", Waypoint: "X1-TEST-J9", JumpDrive: true})
	game.SetCooldown("EXPLORER-1", game.JumpCooldown/2)
	s := loadShip(t, game, "EXPLORER-1")
	jumper := ship.NewJumper(game, clock, ship.NewNavigator(game, clock, nil))

	// Act
	result, err := jumper.Jump(context.Background(), s, "X1-TEST-J9", "X1-NEXT-J1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "X1-NEXT-J1", result.CurrentLocation())
	assert.Equal(t, 2, game.Calls("JumpShip"))
}

func TestJump_RequiresJumpDrive(t *testing.T) {
	// Arrange
	game, clock := newUniverse(t)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1"})
	s := loadShip(t, game, "MINER-1")
	jumper := ship.NewJumper(game, clock, ship.NewNavigator(game, clock, nil))

	// Act
	_, err := jumper.Jump(context.Background(), s, "X1-TEST-B2", "X1-NEXT-J1")

	// Assert
	assert.ErrorIs(t, err, shared.ErrNoJumpDrive)
	assert.Empty(t, game.CallLog())
}
