package mining_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	domainMining "github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

func TestSurveyLoop_PersistsEverySurvey(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "SURVEYOR-1", Waypoint: "X1-TEST-A1", Fuel: 100, FuelCapacity: 100})
	surveyor := mining.NewSurveyor(f.game, f.clock, ship.NewNavigator(f.game, f.clock, nil), f.surveys)

	// Act
	err := surveyor.SurveyLoop(context.Background(), s, asteroid, mining.SurveyOptions{Rounds: 2})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, f.game.Calls("CreateSurvey"))
	stored, err := f.surveys.FindByWaypoint(context.Background(), asteroid, "")
	require.NoError(t, err)
	assert.Len(t, stored, 2*f.game.SurveysPerCall)
	assert.Equal(t, f.game.TravelTime+f.game.SurveyCooldown, f.clock.TotalSlept())
}

func TestSurveyLoop_PrunesExpiredSurveys(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "SURVEYOR-1", Waypoint: asteroid})
	stale, err := domainMining.NewSurvey("SIG-STALE", asteroid, []string{"IRON_ORE"}, f.clock.Now().Add(-time.Minute), domainMining.SurveySizeSmall)
	require.NoError(t, err)
	require.NoError(t, f.surveys.Save(context.Background(), stale))
	surveyor := mining.NewSurveyor(f.game, f.clock, ship.NewNavigator(f.game, f.clock, nil), f.surveys)

	// Act
	err = surveyor.SurveyLoop(context.Background(), s, asteroid, mining.SurveyOptions{PruneExpired: true, Rounds: 1})

	// Assert
	require.NoError(t, err)
	stored, err := f.surveys.FindByWaypoint(context.Background(), asteroid, "")
	require.NoError(t, err)
	assert.Len(t, stored, f.game.SurveysPerCall)
	for _, survey := range stored {
		assert.NotEqual(t, "SIG-STALE", survey.Signature())
	}
}

func TestSurveyLoop_WaitsOutCooldown(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "SURVEYOR-1", Waypoint: asteroid})
	f.game.SetCooldown("SURVEYOR-1", 45*time.Second)
	surveyor := mining.NewSurveyor(f.game, f.clock, ship.NewNavigator(f.game, f.clock, nil), f.surveys)

	// Act
	err := surveyor.SurveyLoop(context.Background(), s, asteroid, mining.SurveyOptions{Rounds: 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, f.game.Calls("CreateSurvey"))
	assert.Equal(t, 45*time.Second, f.clock.TotalSlept())
}

func TestSurveyLoop_ReturnsContextErrorWhenCancelled(t *testing.T) {
	// Arrange
	f := newMiningFixture(t)
	s := f.ship(t, helpers.FakeShipSpec{Symbol: "SURVEYOR-1", Waypoint: asteroid})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	surveyor := mining.NewSurveyor(f.game, f.clock, ship.NewNavigator(f.game, f.clock, nil), f.surveys)

	// Act
	err := surveyor.SurveyLoop(ctx, s, asteroid, mining.SurveyOptions{})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.game.Calls("CreateSurvey"))
}
