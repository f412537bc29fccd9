package ship

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// minTransitPoll is the shortest pause between two arrival checks
const minTransitPoll = time.Second

// NavigateOptions selects what happens once the ship has arrived
type NavigateOptions struct {
	Dock   bool
	Refuel bool
}

// DefaultNavigateOptions docks and refuels on arrival
func DefaultNavigateOptions() NavigateOptions {
	return NavigateOptions{Dock: true, Refuel: true}
}

// Navigator moves a ship to a waypoint in its current system.
//
// The sequence is orbit, navigate, wait for arrival, then optionally dock and
// refuel. Only a failed departure is fatal; orbit, dock and refuel failures are
// logged and the ship is returned as the server last reported it.
type Navigator struct {
	client  ports.APIClient
	clock   shared.Clock
	session *ledger.Session
}

// NewNavigator creates a navigator. Refuel purchases are recorded in session when it is not nil.
func NewNavigator(client ports.APIClient, clock shared.Clock, session *ledger.Session) *Navigator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Navigator{client: client, clock: clock, session: session}
}

// Navigate returns the ship once it sits at destination
func (n *Navigator) Navigate(ctx context.Context, ship *navigation.Ship, destination string, opts NavigateOptions) (*navigation.Ship, error) {
	logger := common.LoggerFromContext(ctx)

	if ship.Nav().HasArrivedAt(destination) {
		return ship, nil
	}

	// A ship still flying elsewhere has to land before it can leave again
	if ship.IsInTransit() && ship.Nav().WaypointSymbol != destination {
		if err := n.waitForArrival(ctx, ship, ship.Nav().WaypointSymbol); err != nil {
			return ship, err
		}
	}

	if !ship.IsInTransit() {
		if err := n.depart(ctx, ship, destination); err != nil {
			return ship, err
		}
	}

	if err := n.waitForArrival(ctx, ship, destination); err != nil {
		return ship, err
	}

	logger.Log("INFO", "Ship arrived", map[string]interface{}{
		"ship_symbol": ship.ShipSymbol(),
		"action":      "navigate",
		"waypoint":    destination,
	})

	if opts.Dock {
		n.dock(ctx, ship)
	}
	if opts.Refuel {
		n.refuel(ctx, ship)
		if !opts.Dock && ship.IsDocked() {
			n.orbit(ctx, ship)
		}
	}

	return ship, nil
}

// depart orbits and issues the navigate call
func (n *Navigator) depart(ctx context.Context, ship *navigation.Ship, destination string) error {
	logger := common.LoggerFromContext(ctx)

	if ship.IsProbe() && ship.Nav().FlightMode != shared.FlightModeBurn {
		nav, err := n.client.SetFlightMode(ctx, ship.ShipSymbol(), shared.FlightModeBurn)
		if err != nil {
			logAPIError(logger, "Failed to set flight mode", ship.ShipSymbol(), err)
		} else {
			ship.UpdateNav(nav)
		}
	}

	if ship.IsDocked() {
		n.orbit(ctx, ship)
	}

	result, err := n.client.NavigateShip(ctx, ship.ShipSymbol(), destination)
	if err != nil {
		if apiErr, ok := shared.AsAPIError(err); ok {
			switch {
			case apiErr.Code == shared.ErrorCodeNavigateSameWaypoint:
				return n.refreshNav(ctx, ship)
			case apiErr.IsInTransit():
				// Already flying, most likely towards destination from an earlier attempt
				return n.refreshNav(ctx, ship)
			}
		}
		logAPIError(logger, "Navigation failed", ship.ShipSymbol(), err)
		return fmt.Errorf("failed to navigate %s to %s: %w", ship.ShipSymbol(), destination, err)
	}

	ship.UpdateNav(result.Nav)
	ship.UpdateFuel(result.Fuel)

	logger.Log("INFO", "Ship departed", map[string]interface{}{
		"ship_symbol": ship.ShipSymbol(),
		"action":      "navigate",
		"waypoint":    destination,
		"flight_mode": string(ship.Nav().FlightMode),
	})
	return nil
}

// waitForArrival polls the ship's nav until it reports arrival at destination
func (n *Navigator) waitForArrival(ctx context.Context, ship *navigation.Ship, destination string) error {
	logger := common.LoggerFromContext(ctx)

	for !ship.Nav().HasArrivedAt(destination) {
		if !ship.IsInTransit() {
			return shared.NewNotArrivedError(ship.ShipSymbol(), destination, ship.CurrentLocation())
		}

		wait := n.secondsToArrival(ctx, ship, destination)
		if wait < minTransitPoll {
			wait = minTransitPoll
		}

		logger.Log("DEBUG", "Ship in transit", map[string]interface{}{
			"ship_symbol": ship.ShipSymbol(),
			"waypoint":    destination,
			"wait":        wait.String(),
		})

		if err := n.clock.Sleep(ctx, wait); err != nil {
			return err
		}
		if err := n.refreshNav(ctx, ship); err != nil {
			return err
		}
	}
	return nil
}

// secondsToArrival reads the route arrival or, when absent, probes the server
// with a navigate call whose in-transit error carries the remaining seconds
func (n *Navigator) secondsToArrival(ctx context.Context, ship *navigation.Ship, destination string) time.Duration {
	if arrival := ship.Nav().Arrival; arrival != nil {
		return arrival.WaitTime(n.clock.Now())
	}

	_, err := n.client.NavigateShip(ctx, ship.ShipSymbol(), destination)
	if apiErr, ok := shared.AsAPIError(err); ok {
		if remaining, ok := apiErr.SecondsToArrival(); ok {
			return remaining
		}
	}
	return minTransitPoll
}

func (n *Navigator) refreshNav(ctx context.Context, ship *navigation.Ship) error {
	nav, err := n.client.GetShipNav(ctx, ship.ShipSymbol())
	if err != nil {
		return fmt.Errorf("failed to refresh nav of %s: %w", ship.ShipSymbol(), err)
	}
	ship.UpdateNav(nav)
	return nil
}

func (n *Navigator) dock(ctx context.Context, ship *navigation.Ship) {
	if ship.IsDocked() {
		return
	}
	nav, err := n.client.DockShip(ctx, ship.ShipSymbol())
	if err != nil {
		logAPIError(common.LoggerFromContext(ctx), "Failed to dock", ship.ShipSymbol(), err)
		return
	}
	ship.UpdateNav(nav)
}

func (n *Navigator) orbit(ctx context.Context, ship *navigation.Ship) {
	nav, err := n.client.OrbitShip(ctx, ship.ShipSymbol())
	if err != nil {
		logAPIError(common.LoggerFromContext(ctx), "Failed to orbit", ship.ShipSymbol(), err)
		return
	}
	ship.UpdateNav(nav)
}

// refuel buys fuel only where the market lists it
func (n *Navigator) refuel(ctx context.Context, ship *navigation.Ship) {
	logger := common.LoggerFromContext(ctx)

	if ship.Fuel() == nil || !ship.Fuel().NeedsFuel() {
		return
	}

	mkt, err := n.client.GetMarket(ctx, ship.SystemSymbol(), ship.CurrentLocation())
	if err != nil {
		logger.Log("DEBUG", "No market at waypoint, skipping refuel", map[string]interface{}{
			"ship_symbol": ship.ShipSymbol(),
			"waypoint":    ship.CurrentLocation(),
		})
		return
	}
	if !mkt.SellsFuel() {
		return
	}

	n.dock(ctx, ship)

	result, err := n.client.RefuelShip(ctx, ship.ShipSymbol())
	if err != nil {
		logAPIError(logger, "Failed to refuel", ship.ShipSymbol(), err)
		return
	}
	ship.UpdateFuel(result.Fuel)

	if n.session != nil {
		if err := n.session.Record(result.Transaction); err != nil {
			logger.Log("WARNING", "Refuel transaction not recorded", map[string]interface{}{
				"ship_symbol": ship.ShipSymbol(),
				"error":       err.Error(),
			})
		}
	}

	logger.Log("INFO", "Ship refueled", map[string]interface{}{
		"ship_symbol": ship.ShipSymbol(),
		"action":      "refuel",
		"waypoint":    ship.CurrentLocation(),
		"fuel":        ship.Fuel().String(),
		"credits":     result.Transaction.TotalPrice,
	})
}

// logAPIError logs err with the game error envelope fields when it has one
func logAPIError(logger common.RoutineLogger, message, shipSymbol string, err error) {
	metadata := map[string]interface{}{
		"ship_symbol": shipSymbol,
		"error":       err.Error(),
	}
	if apiErr, ok := shared.AsAPIError(err); ok {
		for k, v := range apiErr.LogFields() {
			metadata[k] = v
		}
	}
	logger.Log("ERROR", message, metadata)
}
