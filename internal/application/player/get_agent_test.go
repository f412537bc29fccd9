package player_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/player"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

func newGame() *helpers.FakeGameServer {
	return helpers.NewFakeGameServer(shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGetAgent_ReturnsAccountAndFleet(t *testing.T) {
	// Arrange
	game := newGame()
	game.AddWaypoint("X1-TEST-A1", "PLANET", 0, 0)
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-1", Waypoint: "X1-TEST-A1", CargoCapacity: 30})
	game.AddShip(helpers.FakeShipSpec{Symbol: "MINER-2", Waypoint: "X1-TEST-A1", CargoCapacity: 30})
	handler := player.NewGetAgentHandler(game)

	// Act
	resp, err := handler.Handle(context.Background(), &player.GetAgentQuery{IncludeShips: true})

	// Assert
	require.NoError(t, err)
	result := resp.(*player.GetAgentResponse)
	assert.Equal(t, "TEST-AGENT", result.Agent.Symbol)
	assert.Equal(t, 100000, result.Agent.Credits)
	assert.Len(t, result.Ships, 2)
}

func TestGetAgent_SkipsFleetUnlessAsked(t *testing.T) {
	// Arrange
	game := newGame()
	handler := player.NewGetAgentHandler(game)

	// Act
	resp, err := handler.Handle(context.Background(), &player.GetAgentQuery{})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, resp.(*player.GetAgentResponse).Ships)
	assert.Zero(t, game.Calls("ListShips"))
}
