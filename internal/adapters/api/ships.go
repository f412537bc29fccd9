package api

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// GetShip retrieves ship details
func (c *SpaceTradersClient) GetShip(ctx context.Context, symbol string) (*navigation.Ship, error) {
	var resp envelope[shipDTO]
	if err := c.get(ctx, fmt.Sprintf("/my/ships/%s", symbol), &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain()
}

// ListShips pages through every ship owned by the agent
func (c *SpaceTradersClient) ListShips(ctx context.Context) ([]*navigation.Ship, error) {
	var ships []*navigation.Ship
	for page := 1; ; page++ {
		var resp envelope[[]shipDTO]
		if err := c.get(ctx, fmt.Sprintf("/my/ships?page=%d&limit=%d", page, pageLimit), &resp); err != nil {
			return nil, err
		}
		for _, dto := range resp.Data {
			ship, err := dto.toDomain()
			if err != nil {
				return nil, err
			}
			ships = append(ships, ship)
		}
		if lastPage(resp.Meta, len(resp.Data)) {
			return ships, nil
		}
	}
}

func (c *SpaceTradersClient) GetShipNav(ctx context.Context, symbol string) (*navigation.Nav, error) {
	var resp envelope[navDTO]
	if err := c.get(ctx, fmt.Sprintf("/my/ships/%s/nav", symbol), &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain()
}

func (c *SpaceTradersClient) GetShipCargo(ctx context.Context, symbol string) (*shared.Cargo, error) {
	var resp envelope[cargoDTO]
	if err := c.get(ctx, fmt.Sprintf("/my/ships/%s/cargo", symbol), &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain()
}

type navResponse struct {
	Nav navDTO `json:"nav"`
}

// OrbitShip puts the ship in orbit
func (c *SpaceTradersClient) OrbitShip(ctx context.Context, symbol string) (*navigation.Nav, error) {
	var resp envelope[navResponse]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/orbit", symbol), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Nav.toDomain()
}

// DockShip docks the ship at its current waypoint
func (c *SpaceTradersClient) DockShip(ctx context.Context, symbol string) (*navigation.Nav, error) {
	var resp envelope[navResponse]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/dock", symbol), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Nav.toDomain()
}

// NavigateShip departs for a waypoint in the current system
func (c *SpaceTradersClient) NavigateShip(ctx context.Context, symbol, destination string) (*ports.NavigateResult, error) {
	body := map[string]string{"waypointSymbol": destination}

	var resp envelope[struct {
		Nav  navDTO  `json:"nav"`
		Fuel fuelDTO `json:"fuel"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/navigate", symbol), body, &resp); err != nil {
		return nil, err
	}

	nav, err := resp.Data.Nav.toDomain()
	if err != nil {
		return nil, err
	}
	fuel, err := resp.Data.Fuel.toDomain()
	if err != nil {
		return nil, err
	}
	return &ports.NavigateResult{Nav: nav, Fuel: fuel}, nil
}

// SetFlightMode changes the flight mode used for the next departure
func (c *SpaceTradersClient) SetFlightMode(ctx context.Context, symbol string, mode shared.FlightMode) (*navigation.Nav, error) {
	body := map[string]string{"flightMode": string(mode)}

	var resp envelope[navDTO]
	if err := c.patch(ctx, fmt.Sprintf("/my/ships/%s/nav", symbol), body, &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDomain()
}

// RefuelShip fills the tank at the current marketplace
func (c *SpaceTradersClient) RefuelShip(ctx context.Context, symbol string) (*ports.RefuelResult, error) {
	var resp envelope[struct {
		Agent       agentDTO       `json:"agent"`
		Fuel        fuelDTO        `json:"fuel"`
		Transaction transactionDTO `json:"transaction"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/refuel", symbol), nil, &resp); err != nil {
		return nil, err
	}

	fuel, err := resp.Data.Fuel.toDomain()
	if err != nil {
		return nil, err
	}
	return &ports.RefuelResult{
		Fuel:        fuel,
		Transaction: resp.Data.Transaction.toDomain(ledger.TransactionTypeRefuel),
		Credits:     resp.Data.Agent.Credits,
	}, nil
}

// JumpShip jumps to a waypoint in a connected system
func (c *SpaceTradersClient) JumpShip(ctx context.Context, symbol, waypointSymbol string) (*ports.JumpResult, error) {
	body := map[string]string{"waypointSymbol": waypointSymbol}

	var resp envelope[struct {
		Nav      navDTO      `json:"nav"`
		Cooldown cooldownDTO `json:"cooldown"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/jump", symbol), body, &resp); err != nil {
		return nil, err
	}

	nav, err := resp.Data.Nav.toDomain()
	if err != nil {
		return nil, err
	}
	return &ports.JumpResult{Nav: nav, Cooldown: resp.Data.Cooldown.duration()}, nil
}

// ExtractResources extracts at the current waypoint, targeting the survey when one is given
func (c *SpaceTradersClient) ExtractResources(ctx context.Context, symbol string, survey *mining.Survey) (*mining.Extraction, error) {
	path := fmt.Sprintf("/my/ships/%s/extract", symbol)
	var body interface{}
	if survey != nil {
		path += "/survey"
		body = surveyToDTO(survey)
	}

	var resp envelope[struct {
		Cooldown   cooldownDTO `json:"cooldown"`
		Extraction struct {
			ShipSymbol string `json:"shipSymbol"`
			Yield      struct {
				Symbol string `json:"symbol"`
				Units  int    `json:"units"`
			} `json:"yield"`
		} `json:"extraction"`
		Cargo cargoDTO `json:"cargo"`
	}]
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}

	cargo, err := resp.Data.Cargo.toDomain()
	if err != nil {
		return nil, err
	}
	return &mining.Extraction{
		ShipSymbol: symbol,
		Good:       resp.Data.Extraction.Yield.Symbol,
		Units:      resp.Data.Extraction.Yield.Units,
		Cooldown:   resp.Data.Cooldown.duration(),
		Cargo:      cargo,
	}, nil
}

// CreateSurvey surveys the ship's current waypoint
func (c *SpaceTradersClient) CreateSurvey(ctx context.Context, symbol string) (*ports.SurveyResult, error) {
	var resp envelope[struct {
		Cooldown cooldownDTO `json:"cooldown"`
		Surveys  []surveyDTO `json:"surveys"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/survey", symbol), nil, &resp); err != nil {
		return nil, err
	}

	surveys := make([]*mining.Survey, 0, len(resp.Data.Surveys))
	for _, dto := range resp.Data.Surveys {
		survey, err := dto.toDomain()
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)
	}
	return &ports.SurveyResult{Surveys: surveys, Cooldown: resp.Data.Cooldown.duration()}, nil
}

// SellCargo sells units of a good at the current market
func (c *SpaceTradersClient) SellCargo(ctx context.Context, symbol, tradeSymbol string, units int) (*ports.SellResult, error) {
	body := map[string]interface{}{"symbol": tradeSymbol, "units": units}

	var resp envelope[struct {
		Agent       agentDTO       `json:"agent"`
		Cargo       cargoDTO       `json:"cargo"`
		Transaction transactionDTO `json:"transaction"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/sell", symbol), body, &resp); err != nil {
		return nil, err
	}

	cargo, err := resp.Data.Cargo.toDomain()
	if err != nil {
		return nil, err
	}
	return &ports.SellResult{
		Cargo:       cargo,
		Transaction: resp.Data.Transaction.toDomain(ledger.TransactionTypeSellCargo),
		Credits:     resp.Data.Agent.Credits,
	}, nil
}

// CreateChart charts the ship's current waypoint
func (c *SpaceTradersClient) CreateChart(ctx context.Context, symbol string) (*ports.ChartResult, error) {
	var resp envelope[struct {
		Chart    chartDTO    `json:"chart"`
		Waypoint waypointDTO `json:"waypoint"`
	}]
	if err := c.post(ctx, fmt.Sprintf("/my/ships/%s/chart", symbol), nil, &resp); err != nil {
		return nil, err
	}

	waypoint, err := resp.Data.Waypoint.toDomain()
	if err != nil {
		return nil, err
	}
	chart := &system.Chart{
		WaypointSymbol: resp.Data.Chart.WaypointSymbol,
		SubmittedBy:    resp.Data.Chart.SubmittedBy,
		SubmittedOn:    resp.Data.Chart.SubmittedOn,
	}
	if chart.WaypointSymbol == "" {
		chart.WaypointSymbol = waypoint.Symbol
	}
	return &ports.ChartResult{Chart: chart, Waypoint: waypoint}, nil
}

// lastPage reports whether a paged listing is exhausted
func lastPage(meta *metaDTO, count int) bool {
	if meta == nil || count == 0 {
		return true
	}
	return meta.Page*meta.Limit >= meta.Total
}
