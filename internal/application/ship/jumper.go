package ship

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// maxJumpAttempts bounds retries of a jump refused for cooldown
const maxJumpAttempts = 3

// Jumper moves a jump-capable ship through a jump gate to another system
type Jumper struct {
	client    ports.APIClient
	clock     shared.Clock
	navigator *Navigator
}

func NewJumper(client ports.APIClient, clock shared.Clock, navigator *Navigator) *Jumper {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Jumper{client: client, clock: clock, navigator: navigator}
}

// Jump flies the ship to gateSymbol when needed, then jumps to targetWaypoint.
// The jump cooldown reported by the server is waited out before returning.
func (j *Jumper) Jump(ctx context.Context, ship *navigation.Ship, gateSymbol, targetWaypoint string) (*navigation.Ship, error) {
	logger := common.LoggerFromContext(ctx)

	if !ship.HasJumpDrive() {
		return ship, shared.NewShipError(ship.ShipSymbol(), shared.ErrNoJumpDrive)
	}

	ship, err := j.navigator.Navigate(ctx, ship, gateSymbol, NavigateOptions{})
	if err != nil {
		return ship, err
	}

	if ship.IsDocked() {
		nav, err := j.client.OrbitShip(ctx, ship.ShipSymbol())
		if err != nil {
			return ship, fmt.Errorf("failed to orbit before jump: %w", err)
		}
		ship.UpdateNav(nav)
	}

	for attempt := 1; ; attempt++ {
		result, err := j.client.JumpShip(ctx, ship.ShipSymbol(), targetWaypoint)
		if err == nil {
			ship.UpdateNav(result.Nav)
			logger.Log("INFO", "Ship jumped", map[string]interface{}{
				"ship_symbol": ship.ShipSymbol(),
				"action":      "jump",
				"waypoint":    targetWaypoint,
				"cooldown":    result.Cooldown.String(),
			})
			if result.Cooldown > 0 {
				if err := j.clock.Sleep(ctx, result.Cooldown); err != nil {
					return ship, err
				}
			}
			return ship, nil
		}

		apiErr, ok := shared.AsAPIError(err)
		if !ok || !apiErr.IsCooldown() || attempt >= maxJumpAttempts {
			logAPIError(logger, "Jump failed", ship.ShipSymbol(), err)
			return ship, fmt.Errorf("failed to jump %s to %s: %w", ship.ShipSymbol(), targetWaypoint, err)
		}

		wait, _ := apiErr.Cooldown()
		if wait < minTransitPoll {
			wait = minTransitPoll
		}
		if err := j.clock.Sleep(ctx, wait); err != nil {
			return ship, err
		}
	}
}
