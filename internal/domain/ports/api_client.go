package ports

import (
	"context"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ledger"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/market"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// APIClient defines the domain's interface for interacting with the SpaceTraders API.
//
// Implementations translate the {"data": ...} envelope into domain objects and the
// {"error": {...}} envelope into *shared.APIError. Rate limiting is absorbed below
// this interface; callers only observe the added latency.
type APIClient interface {
	// Ship operations
	GetShip(ctx context.Context, symbol string) (*navigation.Ship, error)
	ListShips(ctx context.Context) ([]*navigation.Ship, error)
	GetShipNav(ctx context.Context, symbol string) (*navigation.Nav, error)
	GetShipCargo(ctx context.Context, symbol string) (*shared.Cargo, error)
	OrbitShip(ctx context.Context, symbol string) (*navigation.Nav, error)
	DockShip(ctx context.Context, symbol string) (*navigation.Nav, error)
	NavigateShip(ctx context.Context, symbol, destination string) (*NavigateResult, error)
	SetFlightMode(ctx context.Context, symbol string, mode shared.FlightMode) (*navigation.Nav, error)
	RefuelShip(ctx context.Context, symbol string) (*RefuelResult, error)
	JumpShip(ctx context.Context, symbol, waypointSymbol string) (*JumpResult, error)

	// Resource operations
	ExtractResources(ctx context.Context, symbol string, survey *mining.Survey) (*mining.Extraction, error)
	CreateSurvey(ctx context.Context, symbol string) (*SurveyResult, error)
	SellCargo(ctx context.Context, symbol, tradeSymbol string, units int) (*SellResult, error)
	CreateChart(ctx context.Context, symbol string) (*ChartResult, error)

	// Contract operations
	GetContract(ctx context.Context, contractID string) (*contract.Contract, error)
	ListContracts(ctx context.Context) ([]*contract.Contract, error)
	AcceptContract(ctx context.Context, contractID string) (*contract.Contract, error)
	DeliverContract(ctx context.Context, contractID, shipSymbol, tradeSymbol string, units int) (*DeliverResult, error)
	FulfillContract(ctx context.Context, contractID string) (*contract.Contract, error)

	// Location queries
	GetMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*market.Market, error)
	GetWaypoint(ctx context.Context, systemSymbol, waypointSymbol string) (*shared.Waypoint, error)
	GetSystem(ctx context.Context, systemSymbol string) (*system.System, error)
	GetJumpGate(ctx context.Context, systemSymbol, waypointSymbol string) (*system.JumpGate, error)

	// Agent
	GetAgent(ctx context.Context) (*Agent, error)
}

// NavigateResult is returned when a ship departs
type NavigateResult struct {
	Nav  *navigation.Nav
	Fuel *shared.Fuel
}

// RefuelResult carries the new fuel level and the purchase
type RefuelResult struct {
	Fuel        *shared.Fuel
	Transaction ledger.Transaction
	Credits     int
}

// SellResult carries the remaining cargo and the sale
type SellResult struct {
	Cargo       *shared.Cargo
	Transaction ledger.Transaction
	Credits     int
}

// SurveyResult lists the surveys produced by one survey call
type SurveyResult struct {
	Surveys  []*mining.Survey
	Cooldown time.Duration
}

// JumpResult is returned after a jump to another system
type JumpResult struct {
	Nav      *navigation.Nav
	Cooldown time.Duration
}

// ChartResult is returned after charting the ship's current waypoint
type ChartResult struct {
	Chart    *system.Chart
	Waypoint *shared.Waypoint
}

// DeliverResult carries the contract progress and the ship's remaining cargo
type DeliverResult struct {
	Contract *contract.Contract
	Cargo    *shared.Cargo
}

// Agent is the player's account summary
type Agent struct {
	Symbol          string
	Headquarters    string
	Credits         int
	StartingFaction string
	ShipCount       int
}
