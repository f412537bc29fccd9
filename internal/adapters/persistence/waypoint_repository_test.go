package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/persistence"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

func newWaypoint(t *testing.T, symbol, waypointType string, x, y int, traits ...string) *shared.Waypoint {
	t.Helper()
	wp, err := shared.NewWaypoint(symbol, waypointType, x, y)
	require.NoError(t, err)
	wp.Traits = traits
	return wp
}

func TestWaypointRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)

	waypoint := newWaypoint(t, "X1-GZ7-A1", "PLANET", 10, 20, shared.TraitMarketplace, shared.TraitShipyard)
	waypoint.Orbitals = []string{"X1-GZ7-A1a", "X1-GZ7-A1b"}
	waypoint.Faction = "COSMIC"

	// Act
	err := repo.SaveAll(context.Background(), []*shared.Waypoint{waypoint})
	require.NoError(t, err)
	found, err := repo.FindBySymbol(context.Background(), "X1-GZ7-A1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, waypoint.Symbol, found.Symbol)
	assert.Equal(t, "X1-GZ7", found.SystemSymbol)
	assert.Equal(t, waypoint.Type, found.Type)
	assert.Equal(t, waypoint.X, found.X)
	assert.Equal(t, waypoint.Y, found.Y)
	assert.Equal(t, waypoint.Traits, found.Traits)
	assert.Equal(t, waypoint.Orbitals, found.Orbitals)
	assert.Equal(t, "COSMIC", found.Faction)
}

func TestWaypointRepository_ListBySystem(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	err := repo.SaveAll(context.Background(), []*shared.Waypoint{
		newWaypoint(t, "X1-GZ7-A1", "PLANET", 10, 20),
		newWaypoint(t, "X1-GZ7-B2", "ASTEROID", 30, 40),
		newWaypoint(t, "X1-AB1-C3", "MOON", 5, 5),
	})
	require.NoError(t, err)

	// Act
	waypoints, err := repo.ListBySystem(context.Background(), "X1-GZ7")

	// Assert
	require.NoError(t, err)
	assert.Len(t, waypoints, 2)
	for _, wp := range waypoints {
		assert.Equal(t, "X1-GZ7", wp.SystemSymbol)
	}
}

func TestWaypointRepository_ResyncKeepsMappedState(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	ctx := context.Background()
	wp := newWaypoint(t, "X1-GZ7-A1", "PLANET", 10, 20)
	require.NoError(t, repo.SaveAll(ctx, []*shared.Waypoint{wp}))
	require.NoError(t, repo.MarkMapped(ctx, "X1-GZ7-A1"))

	// Act
	wp.Traits = []string{shared.TraitMarketplace}
	require.NoError(t, repo.SaveAll(ctx, []*shared.Waypoint{wp}))
	state, err := repo.MappedState(ctx, "X1-GZ7-A1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateMapped, state)
}

func TestWaypointRepository_UnknownWaypointIsUnmapped(t *testing.T) {
	// Arrange
	repo := persistence.NewGormWaypointRepository(helpers.NewTestDB(t))

	// Act
	state, err := repo.MappedState(context.Background(), "X1-NOPE-Z9")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateUnmapped, state)
}

func TestWaypointRepository_ListUnmapped(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.SaveAll(ctx, []*shared.Waypoint{
		newWaypoint(t, "X1-GZ7-A1", "PLANET", 0, 0),
		newWaypoint(t, "X1-GZ7-B2", "ASTEROID", 1, 1),
		newWaypoint(t, "X1-GZ7-C3", "MOON", 2, 2),
	}))
	require.NoError(t, repo.MarkMapped(ctx, "X1-GZ7-B2"))

	// Act
	unmapped, err := repo.ListUnmapped(ctx, "X1-GZ7")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"X1-GZ7-A1", "X1-GZ7-C3"}, unmapped)
}
