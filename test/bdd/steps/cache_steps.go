package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/api"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/test/helpers"
)

type responseCacheContext struct {
	clock  *shared.MockClock
	game   *helpers.FakeGameServer
	cache  *api.ResponseCache
	client *api.CachingClient
}

func (rc *responseCacheContext) reset() {
	rc.clock = shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	rc.game = helpers.NewFakeGameServer(rc.clock)
	rc.cache = nil
	rc.client = nil
}

func splitList(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (rc *responseCacheContext) aUniverseWithWaypoints(list string) error {
	for i, symbol := range splitList(list) {
		rc.game.AddWaypoint(symbol, "PLANET", i*10, 0)
	}
	return nil
}

func (rc *responseCacheContext) aCachingClientHolding(size, seconds int) error {
	cache, err := api.NewResponseCache(size, time.Duration(seconds)*time.Second, rc.clock)
	if err != nil {
		return err
	}
	rc.cache = cache
	rc.client = api.NewCachingClient(rc.game, cache)
	return nil
}

func (rc *responseCacheContext) theNextWaypointLookupFails() error {
	rc.game.FailNext("GetWaypoint", errors.New("connection reset"))
	return nil
}

func (rc *responseCacheContext) iLookUpWaypointTimes(symbol string, times int) error {
	for i := 0; i < times; i++ {
		// a failing lookup is part of some scenarios; the call count is what they check
		_, _ = rc.client.GetWaypoint(context.Background(), shared.ExtractSystemSymbol(symbol), symbol)
	}
	return nil
}

func (rc *responseCacheContext) iLookUpWaypoints(list string) error {
	for _, symbol := range splitList(list) {
		if _, err := rc.client.GetWaypoint(context.Background(), shared.ExtractSystemSymbol(symbol), symbol); err != nil {
			return err
		}
	}
	return nil
}

func (rc *responseCacheContext) secondsPass(seconds int) error {
	rc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

func (rc *responseCacheContext) theServerShouldHaveBeenAskedForWaypoints(expected int) error {
	if got := rc.game.Calls("GetWaypoint"); got != expected {
		return fmt.Errorf("expected %d waypoint requests, got %d", expected, got)
	}
	return nil
}

func (rc *responseCacheContext) theCacheShouldHoldEntries(expected int) error {
	if got := rc.cache.Len(); got != expected {
		return fmt.Errorf("expected %d cache entries, got %d", expected, got)
	}
	return nil
}

// InitializeResponseCacheScenario registers response cache steps
func InitializeResponseCacheScenario(sc *godog.ScenarioContext) {
	rc := &responseCacheContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		rc.reset()
		return ctx, nil
	})

	sc.Step(`^a universe with waypoints "([^"]*)"$`, rc.aUniverseWithWaypoints)
	sc.Step(`^a caching client holding (\d+) entries for (\d+) seconds$`, rc.aCachingClientHolding)
	sc.Step(`^the next waypoint lookup fails$`, rc.theNextWaypointLookupFails)

	sc.Step(`^I look up waypoint "([^"]*)" (\d+) times?$`, rc.iLookUpWaypointTimes)
	sc.Step(`^I look up waypoints "([^"]*)"$`, rc.iLookUpWaypoints)
	sc.Step(`^(\d+) seconds pass$`, rc.secondsPass)

	sc.Step(`^the server should have been asked for waypoints (\d+) times?$`, rc.theServerShouldHaveBeenAskedForWaypoints)
	sc.Step(`^the cache should hold (\d+) entries$`, rc.theCacheShouldHoldEntries)
}
