package api

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/market"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// GetMarket retrieves market data. Prices are only present while a ship is at the waypoint.
func (c *SpaceTradersClient) GetMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*market.Market, error) {
	var resp envelope[marketDTO]
	path := fmt.Sprintf("/systems/%s/waypoints/%s/market", systemSymbol, waypointSymbol)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain(c.clock.Now())
}

func (c *SpaceTradersClient) GetWaypoint(ctx context.Context, systemSymbol, waypointSymbol string) (*shared.Waypoint, error) {
	var resp envelope[waypointDTO]
	if err := c.get(ctx, fmt.Sprintf("/systems/%s/waypoints/%s", systemSymbol, waypointSymbol), &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain()
}

// GetSystem retrieves a system with its waypoint listing
func (c *SpaceTradersClient) GetSystem(ctx context.Context, systemSymbol string) (*system.System, error) {
	var resp envelope[systemDTO]
	if err := c.get(ctx, fmt.Sprintf("/systems/%s", systemSymbol), &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain()
}

func (c *SpaceTradersClient) GetJumpGate(ctx context.Context, systemSymbol, waypointSymbol string) (*system.JumpGate, error) {
	var resp envelope[struct {
		Symbol      string   `json:"symbol"`
		Connections []string `json:"connections"`
	}]
	path := fmt.Sprintf("/systems/%s/waypoints/%s/jump-gate", systemSymbol, waypointSymbol)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	symbol := resp.Data.Symbol
	if symbol == "" {
		symbol = waypointSymbol
	}
	return &system.JumpGate{Symbol: symbol, Connections: resp.Data.Connections}, nil
}

// GetAgent retrieves the agent owning the token
func (c *SpaceTradersClient) GetAgent(ctx context.Context) (*ports.Agent, error) {
	var resp envelope[agentDTO]
	if err := c.get(ctx, "/my/agent", &resp); err != nil {
		return nil, err
	}
	return &ports.Agent{
		Symbol:          resp.Data.Symbol,
		Headquarters:    resp.Data.Headquarters,
		Credits:         resp.Data.Credits,
		StartingFaction: resp.Data.StartingFaction,
		ShipCount:       resp.Data.ShipCount,
	}, nil
}

var _ ports.APIClient = (*SpaceTradersClient)(nil)
