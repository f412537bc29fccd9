package exploration

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// ExplorerOptions tunes what a ship does once its system is mapped
type ExplorerOptions struct {
	JumpToUnmapped bool
}

// Explorer claims and charts star systems.
//
// The mapping repository is shared by every exploring ship: a system is
// claimed with a single conditional update, so at most one ship maps it. A
// ship that crashed mid-way finds its own INCOMPLETE claim on restart and
// resumes with the waypoints that are still unmapped.
type Explorer struct {
	client    ports.APIClient
	navigator *ship.Navigator
	jumper    *ship.Jumper
	mapping   system.MappingRepository
	charts    system.ChartRepository
	opts      ExplorerOptions
}

func NewExplorer(
	client ports.APIClient,
	navigator *ship.Navigator,
	jumper *ship.Jumper,
	mapping system.MappingRepository,
	charts system.ChartRepository,
	opts ExplorerOptions,
) *Explorer {
	return &Explorer{
		client:    client,
		navigator: navigator,
		jumper:    jumper,
		mapping:   mapping,
		charts:    charts,
		opts:      opts,
	}
}

// RunExploration performs one exploration step for the ship's current system
func (e *Explorer) RunExploration(ctx context.Context, shipSymbol string) error {
	logger := common.LoggerFromContext(ctx)

	s, err := e.client.GetShip(ctx, shipSymbol)
	if err != nil {
		return fmt.Errorf("failed to load ship %s: %w", shipSymbol, err)
	}
	systemSymbol := s.SystemSymbol()

	state, err := e.mapping.SystemMappedState(ctx, systemSymbol)
	if err != nil {
		return err
	}

	if state == system.MappedStateUnmapped {
		claimed, err := e.mapping.ClaimSystem(ctx, systemSymbol, shipSymbol)
		if err != nil {
			return err
		}
		if claimed {
			metrics.RecordSystemClaimed(systemSymbol)
			logger.Log("INFO", "System claimed", map[string]interface{}{
				"ship_symbol": shipSymbol,
				"action":      "claim",
				"system":      systemSymbol,
			})
			return e.mapSystem(ctx, s)
		}

		// Lost the race: somebody else's claim, or the system got mapped meanwhile
		if state, err = e.mapping.SystemMappedState(ctx, systemSymbol); err != nil {
			return err
		}
	}

	switch state {
	case system.MappedStateIncomplete:
		mine, err := e.mapping.IsClaimant(ctx, systemSymbol, shipSymbol)
		if err != nil {
			return err
		}
		if !mine {
			logger.Log("INFO", "System claimed by another ship, skipping", map[string]interface{}{
				"ship_symbol": shipSymbol,
				"system":      systemSymbol,
			})
			return nil
		}
		logger.Log("INFO", "Resuming system mapping", map[string]interface{}{
			"ship_symbol": shipSymbol,
			"action":      "resume",
			"system":      systemSymbol,
		})
		return e.mapSystem(ctx, s)

	case system.MappedStateMapped:
		if e.opts.JumpToUnmapped && s.HasJumpDrive() {
			return e.jumpToUnmapped(ctx, s)
		}
		logger.Log("DEBUG", "System already mapped", map[string]interface{}{
			"ship_symbol": shipSymbol,
			"system":      systemSymbol,
		})
	}
	return nil
}

// mapSystem charts every waypoint not yet mapped, then completes the claim
func (e *Explorer) mapSystem(ctx context.Context, s *navigation.Ship) error {
	logger := common.LoggerFromContext(ctx)
	systemSymbol := s.SystemSymbol()

	sys, err := e.client.GetSystem(ctx, systemSymbol)
	if err != nil {
		return fmt.Errorf("failed to fetch system %s: %w", systemSymbol, err)
	}
	if err := e.mapping.SaveSystem(ctx, sys); err != nil {
		return err
	}
	if err := e.mapping.SaveWaypoints(ctx, sys.Waypoints); err != nil {
		return err
	}

	pending, err := e.mapping.UnmappedWaypoints(ctx, systemSymbol)
	if err != nil {
		return err
	}

	for _, waypointSymbol := range pending {
		s, err = e.navigator.Navigate(ctx, s, waypointSymbol, ship.NavigateOptions{Refuel: true})
		if err != nil {
			return err
		}
		if err := e.chart(ctx, s); err != nil {
			return err
		}
		if err := e.mapping.MarkWaypointMapped(ctx, waypointSymbol); err != nil {
			return err
		}
	}

	if err := e.mapping.CompleteSystem(ctx, systemSymbol, s.ShipSymbol()); err != nil {
		return err
	}
	metrics.RecordSystemMapped(systemSymbol)

	logger.Log("INFO", "System mapped", map[string]interface{}{
		"ship_symbol": s.ShipSymbol(),
		"action":      "complete",
		"system":      systemSymbol,
		"waypoints":   len(sys.Waypoints),
		"charted":     len(pending),
	})
	return nil
}

// chart submits a chart for the ship's waypoint; an already charted waypoint counts as done
func (e *Explorer) chart(ctx context.Context, s *navigation.Ship) error {
	logger := common.LoggerFromContext(ctx)

	result, err := e.client.CreateChart(ctx, s.ShipSymbol())
	if err != nil {
		if apiErr, ok := shared.AsAPIError(err); ok && apiErr.IsAlreadyCharted() {
			return nil
		}
		return fmt.Errorf("failed to chart %s: %w", s.CurrentLocation(), err)
	}

	if result.Chart != nil {
		if err := e.charts.Save(ctx, result.Chart); err != nil {
			return err
		}
	}
	if wp := result.Waypoint; wp != nil {
		if err := e.mapping.SaveWaypoints(ctx, []*shared.Waypoint{wp}); err != nil {
			return err
		}
		fields := map[string]interface{}{
			"ship_symbol": s.ShipSymbol(),
			"action":      "chart",
			"waypoint":    wp.Symbol,
			"type":        wp.Type,
		}
		if wp.HasMarketplace() {
			fields["marketplace"] = true
		}
		if wp.HasTrait(shared.TraitShipyard) {
			fields["shipyard"] = true
		}
		logger.Log("INFO", "Waypoint charted", fields)
	}
	return nil
}

// jumpToUnmapped moves the ship through its system's gate to the first UN_MAPPED neighbour
func (e *Explorer) jumpToUnmapped(ctx context.Context, s *navigation.Ship) error {
	logger := common.LoggerFromContext(ctx)

	sys, err := e.client.GetSystem(ctx, s.SystemSymbol())
	if err != nil {
		return fmt.Errorf("failed to fetch system %s: %w", s.SystemSymbol(), err)
	}
	gateWaypoint, ok := sys.JumpGate()
	if !ok {
		logger.Log("INFO", "No jump gate in system", map[string]interface{}{
			"ship_symbol": s.ShipSymbol(),
			"system":      s.SystemSymbol(),
		})
		return nil
	}

	gate, err := e.client.GetJumpGate(ctx, s.SystemSymbol(), gateWaypoint.Symbol)
	if err != nil {
		return fmt.Errorf("failed to fetch jump gate %s: %w", gateWaypoint.Symbol, err)
	}

	for _, connection := range gate.Connections {
		target := shared.ExtractSystemSymbol(connection)
		state, err := e.mapping.SystemMappedState(ctx, target)
		if err != nil {
			return err
		}
		if state != system.MappedStateUnmapped {
			continue
		}
		_, err = e.jumper.Jump(ctx, s, gateWaypoint.Symbol, connection)
		return err
	}

	logger.Log("INFO", "No unmapped system reachable from gate", map[string]interface{}{
		"ship_symbol": s.ShipSymbol(),
		"gate":        gateWaypoint.Symbol,
	})
	return nil
}

// ReleaseClaim resets an INCOMPLETE system so any ship can claim it again
func (e *Explorer) ReleaseClaim(ctx context.Context, systemSymbol string) error {
	if err := e.mapping.ReleaseClaim(ctx, systemSymbol); err != nil {
		return err
	}
	common.LoggerFromContext(ctx).Log("WARNING", "System claim released", map[string]interface{}{
		"system": systemSymbol,
	})
	return nil
}

// Status describes the mapping progress of one system
type Status struct {
	State    system.MappedState
	Claim    *system.Claim
	Unmapped []string
	History  []system.Claim
}

func (e *Explorer) Status(ctx context.Context, systemSymbol string) (*Status, error) {
	state, err := e.mapping.SystemMappedState(ctx, systemSymbol)
	if err != nil {
		return nil, err
	}
	claim, err := e.mapping.GetClaim(ctx, systemSymbol)
	if err != nil {
		return nil, err
	}
	unmapped, err := e.mapping.UnmappedWaypoints(ctx, systemSymbol)
	if err != nil {
		return nil, err
	}
	history, err := e.mapping.History(ctx, systemSymbol)
	if err != nil {
		return nil, err
	}
	return &Status{State: state, Claim: claim, Unmapped: unmapped, History: history}, nil
}
