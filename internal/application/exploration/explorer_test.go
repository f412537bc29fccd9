package exploration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/persistence"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/exploration"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

const homeSystem = "X1-TEST"

type explorationFixture struct {
	game    *helpers.FakeGameServer
	clock   *shared.MockClock
	mapping *persistence.GormMappingRepository
	charts  *persistence.GormChartRepository
}

func newExplorationFixture(t *testing.T) *explorationFixture {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	game := helpers.NewFakeGameServer(clock)
	game.AddWaypoint("X1-TEST-A1", "PLANET", 0, 0)
	game.AddWaypoint("X1-TEST-B2", "ASTEROID", 10, 0)
	game.AddWaypoint("X1-TEST-C3", "MOON", 0, 10, shared.TraitShipyard)
	game.AddMarket("X1-TEST-C3", helpers.FakeMarketGood{Symbol: "FUEL", PurchasePrice: 2})

	db := helpers.NewTestDB(t)
	return &explorationFixture{
		game:    game,
		clock:   clock,
		mapping: persistence.NewGormMappingRepository(db, clock),
		charts:  persistence.NewGormChartRepository(db),
	}
}

func (f *explorationFixture) addScout(symbol, waypoint string, jumpDrive bool) {
	f.game.AddShip(helpers.FakeShipSpec{
		Symbol: symbol, Role: "SATELLITE", Frame: "FRAME_PROBE", Waypoint: waypoint,
		Fuel: 400, FuelCapacity: 400, JumpDrive: jumpDrive,
	})
}

func (f *explorationFixture) explorer(opts exploration.ExplorerOptions) *exploration.Explorer {
	navigator := ship.NewNavigator(f.game, f.clock, nil)
	jumper := ship.NewJumper(f.game, f.clock, navigator)
	return exploration.NewExplorer(f.game, navigator, jumper, f.mapping, f.charts, opts)
}

func (f *explorationFixture) markMapped(t *testing.T, systemSymbol string) {
	t.Helper()
	ctx := context.Background()
	claimed, err := f.mapping.ClaimSystem(ctx, systemSymbol, "SEED")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, f.mapping.CompleteSystem(ctx, systemSymbol, "SEED"))
}

func TestRunExploration_ClaimsAndMapsSystem(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", false)
	explorer := f.explorer(exploration.ExplorerOptions{})
	ctx := context.Background()

	// Act
	err := explorer.RunExploration(ctx, "SCOUT-1")

	// Assert
	require.NoError(t, err)
	state, err := f.mapping.SystemMappedState(ctx, homeSystem)
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateMapped, state)

	unmapped, err := f.mapping.UnmappedWaypoints(ctx, homeSystem)
	require.NoError(t, err)
	assert.Empty(t, unmapped)

	for _, wp := range []string{"X1-TEST-A1", "X1-TEST-B2", "X1-TEST-C3"} {
		chart, err := f.charts.FindByWaypoint(ctx, wp)
		require.NoError(t, err)
		require.NotNil(t, chart, wp)
		assert.Equal(t, "TEST-AGENT", chart.SubmittedBy)
	}
	assert.Equal(t, 3, f.game.Calls("CreateChart"))
	assert.Equal(t, 2, f.game.Calls("NavigateShip"))

	history, err := f.mapping.History(ctx, homeSystem)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, system.MappedStateIncomplete, history[0].State)
	assert.Equal(t, system.MappedStateMapped, history[1].State)
	assert.Equal(t, "SCOUT-1", history[1].ShipSymbol)
}

func TestRunExploration_ConcurrentExplorersMapOnce(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", false)
	f.addScout("SCOUT-2", "X1-TEST-A1", false)
	f.addScout("SCOUT-3", "X1-TEST-A1", false)
	explorer := f.explorer(exploration.ExplorerOptions{})
	ctx := context.Background()

	// Act
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, sym := range []string{"SCOUT-1", "SCOUT-2", "SCOUT-3"} {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			errs[i] = explorer.RunExploration(ctx, sym)
		}(i, sym)
	}
	wg.Wait()

	// Assert
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.game.Calls("CreateChart"), "every waypoint charted exactly once")

	history, err := f.mapping.History(ctx, homeSystem)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, history[0].ShipSymbol, history[1].ShipSymbol)

	state, err := f.mapping.SystemMappedState(ctx, homeSystem)
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateMapped, state)
}

func TestRunExploration_ResumesOwnIncompleteClaim(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-B2", false)
	ctx := context.Background()

	sys, err := f.game.GetSystem(ctx, homeSystem)
	require.NoError(t, err)
	require.NoError(t, f.mapping.SaveWaypoints(ctx, sys.Waypoints))
	claimed, err := f.mapping.ClaimSystem(ctx, homeSystem, "SCOUT-1")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, f.mapping.MarkWaypointMapped(ctx, "X1-TEST-A1"))
	f.game.ResetCalls()

	explorer := f.explorer(exploration.ExplorerOptions{})

	// Act
	err = explorer.RunExploration(ctx, "SCOUT-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, f.game.Calls("CreateChart"))
	chart, err := f.charts.FindByWaypoint(ctx, "X1-TEST-A1")
	require.NoError(t, err)
	assert.Nil(t, chart, "waypoint mapped before the crash is not charted again")

	state, err := f.mapping.SystemMappedState(ctx, homeSystem)
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateMapped, state)
}

func TestRunExploration_ForeignClaimTakesNoAction(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", false)
	ctx := context.Background()
	claimed, err := f.mapping.ClaimSystem(ctx, homeSystem, "SCOUT-9")
	require.NoError(t, err)
	require.True(t, claimed)

	explorer := f.explorer(exploration.ExplorerOptions{})

	// Act
	err = explorer.RunExploration(ctx, "SCOUT-1")

	// Assert
	require.NoError(t, err)
	assert.Zero(t, f.game.Calls("CreateChart"))
	assert.Zero(t, f.game.Calls("NavigateShip"))

	claim, err := f.mapping.GetClaim(ctx, homeSystem)
	require.NoError(t, err)
	require.NotNil(t, claim)
	assert.Equal(t, "SCOUT-9", claim.ShipSymbol)
	assert.Equal(t, system.MappedStateIncomplete, claim.State)
}

func TestRunExploration_AlreadyChartedWaypointCountsAsMapped(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", false)
	f.game.FailNext("CreateChart", &shared.APIError{
		StatusCode: 400,
		Code:       shared.ErrorCodeWaypointCharted,
		Message:    "waypoint already charted",
	})
	explorer := f.explorer(exploration.ExplorerOptions{})
	ctx := context.Background()

	// Act
	err := explorer.RunExploration(ctx, "SCOUT-1")

	// Assert
	require.NoError(t, err)
	state, err := f.mapping.SystemMappedState(ctx, homeSystem)
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateMapped, state)

	wpState, err := f.mapping.WaypointMappedState(ctx, "X1-TEST-A1")
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateMapped, wpState)
}

func TestRunExploration_ChartFailureLeavesClaimIncomplete(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", false)
	f.game.FailNext("CreateChart", &shared.APIError{StatusCode: 400, Code: 4236, Message: "ship is not in orbit"})
	explorer := f.explorer(exploration.ExplorerOptions{})
	ctx := context.Background()

	// Act
	err := explorer.RunExploration(ctx, "SCOUT-1")

	// Assert
	require.Error(t, err)
	isClaimant, err := f.mapping.IsClaimant(ctx, homeSystem, "SCOUT-1")
	require.NoError(t, err)
	assert.True(t, isClaimant)

	unmapped, err := f.mapping.UnmappedWaypoints(ctx, homeSystem)
	require.NoError(t, err)
	assert.Len(t, unmapped, 3)
}

func TestRunExploration_MappedSystemWithoutJumpIsIdle(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", true)
	f.markMapped(t, homeSystem)
	explorer := f.explorer(exploration.ExplorerOptions{})

	// Act
	err := explorer.RunExploration(context.Background(), "SCOUT-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"GetShip"}, f.game.CallLog())
}

func TestRunExploration_JumpsToFirstUnmappedNeighbour(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.game.AddWaypoint("X1-TEST-J9", "JUMP_GATE", 5, 5)
	f.game.AddWaypoint("X1-DONE-J1", "JUMP_GATE", 0, 0)
	f.game.AddWaypoint("X1-NEXT-J1", "JUMP_GATE", 0, 0)
	f.game.AddJumpGate("X1-TEST-J9", "X1-DONE-J1", "X1-NEXT-J1")
	f.addScout("SCOUT-1", "X1-TEST-A1", true)
	f.markMapped(t, homeSystem)
	f.markMapped(t, "X1-DONE")
	explorer := f.explorer(exploration.ExplorerOptions{JumpToUnmapped: true})

	// Act
	err := explorer.RunExploration(context.Background(), "SCOUT-1")

	// Assert
	require.NoError(t, err)
	location, _ := f.game.ShipLocation("SCOUT-1")
	assert.Equal(t, "X1-NEXT-J1", location)
	assert.Equal(t, 1, f.game.Calls("JumpShip"))
}

func TestReleaseClaim_ReopensSystem(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	ctx := context.Background()
	_, err := f.mapping.ClaimSystem(ctx, homeSystem, "SCOUT-9")
	require.NoError(t, err)
	explorer := f.explorer(exploration.ExplorerOptions{})

	// Act
	err = explorer.ReleaseClaim(ctx, homeSystem)

	// Assert
	require.NoError(t, err)
	status, err := explorer.Status(ctx, homeSystem)
	require.NoError(t, err)
	assert.Equal(t, system.MappedStateUnmapped, status.State)
}

func TestMediator_DispatchesExplorationCommands(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", false)
	m := common.NewMediator()
	require.NoError(t, exploration.RegisterHandlers(m, f.explorer(exploration.ExplorerOptions{})))
	ctx := context.Background()

	// Act
	_, runErr := m.Send(ctx, &exploration.RunExplorationCommand{ShipSymbol: "SCOUT-1"})
	resp, statusErr := m.Send(ctx, &exploration.MappingStatusQuery{SystemSymbol: homeSystem})

	// Assert
	require.NoError(t, runErr)
	require.NoError(t, statusErr)
	status, ok := resp.(*exploration.Status)
	require.True(t, ok)
	assert.Equal(t, system.MappedStateMapped, status.State)
	assert.Empty(t, status.Unmapped)
	require.NotNil(t, status.Claim)
	assert.Equal(t, "SCOUT-1", status.Claim.ShipSymbol)
}

func TestRunExploration_RefuelsAtFuelMarketsWhileMapping(t *testing.T) {
	// Arrange
	f := newExplorationFixture(t)
	f.addScout("SCOUT-1", "X1-TEST-A1", false)
	explorer := f.explorer(exploration.ExplorerOptions{})

	// Act
	err := explorer.RunExploration(context.Background(), "SCOUT-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, f.game.Calls("RefuelShip"), "only X1-TEST-C3 sells fuel")
	_, status := f.game.ShipLocation("SCOUT-1")
	assert.NotEqual(t, navigation.NavStatusDocked, status)
}
