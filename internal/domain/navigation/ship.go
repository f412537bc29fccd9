package navigation

import (
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// NavStatus represents ship navigation status
type NavStatus string

const (
	NavStatusDocked    NavStatus = "DOCKED"
	NavStatusInOrbit   NavStatus = "IN_ORBIT"
	NavStatusInTransit NavStatus = "IN_TRANSIT"
)

var validNavStatuses = map[NavStatus]bool{
	NavStatusDocked:    true,
	NavStatusInOrbit:   true,
	NavStatusInTransit: true,
}

const (
	FrameProbe    = "FRAME_PROBE"
	RoleSatellite = "SATELLITE"
)

// Nav is the navigation snapshot of a ship as reported by the server
type Nav struct {
	SystemSymbol   string
	WaypointSymbol string
	Status         NavStatus
	FlightMode     shared.FlightMode
	Destination    string
	Arrival        *shared.ArrivalTime
}

// NewNav creates a navigation snapshot with validation
func NewNav(systemSymbol, waypointSymbol string, status NavStatus, flightMode shared.FlightMode) (*Nav, error) {
	if waypointSymbol == "" {
		return nil, shared.NewValidationError("waypoint_symbol", "cannot be empty")
	}
	if !validNavStatuses[status] {
		return nil, shared.NewValidationError("status", fmt.Sprintf("invalid nav status: %s", status))
	}
	if systemSymbol == "" {
		systemSymbol = shared.ExtractSystemSymbol(waypointSymbol)
	}

	return &Nav{
		SystemSymbol:   systemSymbol,
		WaypointSymbol: waypointSymbol,
		Status:         status,
		FlightMode:     flightMode,
	}, nil
}

// HasArrivedAt reports arrival: the ship sits at destination and is no longer in transit
func (n *Nav) HasArrivedAt(destination string) bool {
	return n.WaypointSymbol == destination && n.Status != NavStatusInTransit
}

// Ship entity - a transient snapshot of one of the agent's ships.
//
// The server owns the state. Every mutating call returns fresh nav, cargo or
// fuel data which is folded back in through the Update* methods.
type Ship struct {
	shipSymbol  string
	role        string
	frameSymbol string
	nav         *Nav
	cargo       *shared.Cargo
	fuel        *shared.Fuel
	modules     []*ShipModule
	mounts      []string
}

// NewShip creates a new Ship entity with validation
func NewShip(
	shipSymbol string,
	role string,
	frameSymbol string,
	nav *Nav,
	cargo *shared.Cargo,
	fuel *shared.Fuel,
	modules []*ShipModule,
	mounts []string,
) (*Ship, error) {
	s := &Ship{
		shipSymbol:  shipSymbol,
		role:        role,
		frameSymbol: frameSymbol,
		nav:         nav,
		cargo:       cargo,
		fuel:        fuel,
		modules:     modules,
		mounts:      mounts,
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Ship) validate() error {
	if s.shipSymbol == "" {
		return shared.NewInvalidShipDataError("", "ship_symbol cannot be empty")
	}
	if s.nav == nil {
		return shared.NewInvalidShipDataError(s.shipSymbol, "nav cannot be nil")
	}
	if s.cargo == nil {
		return shared.NewInvalidShipDataError(s.shipSymbol, "cargo cannot be nil")
	}
	if s.fuel == nil {
		return shared.NewInvalidShipDataError(s.shipSymbol, "fuel cannot be nil")
	}
	return nil
}

// Getters

func (s *Ship) ShipSymbol() string {
	return s.shipSymbol
}

func (s *Ship) Role() string {
	return s.role
}

func (s *Ship) FrameSymbol() string {
	return s.frameSymbol
}

func (s *Ship) Nav() *Nav {
	return s.nav
}

func (s *Ship) Cargo() *shared.Cargo {
	return s.cargo
}

func (s *Ship) Fuel() *shared.Fuel {
	return s.fuel
}

func (s *Ship) Modules() []*ShipModule {
	return s.modules
}

func (s *Ship) Mounts() []string {
	return s.mounts
}

func (s *Ship) CurrentLocation() string {
	return s.nav.WaypointSymbol
}

func (s *Ship) SystemSymbol() string {
	return s.nav.SystemSymbol
}

func (s *Ship) NavStatus() NavStatus {
	return s.nav.Status
}

// State queries

func (s *Ship) IsDocked() bool {
	return s.nav.Status == NavStatusDocked
}

func (s *Ship) IsInOrbit() bool {
	return s.nav.Status == NavStatusInOrbit
}

func (s *Ship) IsInTransit() bool {
	return s.nav.Status == NavStatusInTransit
}

// IsAt reports the ship sitting at the waypoint, docked or in orbit
func (s *Ship) IsAt(waypointSymbol string) bool {
	return s.nav.HasArrivedAt(waypointSymbol)
}

// IsProbe identifies probe-class ships which have no fuel concerns
func (s *Ship) IsProbe() bool {
	return s.frameSymbol == FrameProbe || s.role == RoleSatellite
}

// HasJumpDrive checks whether any installed module is a jump drive
func (s *Ship) HasJumpDrive() bool {
	for _, module := range s.modules {
		if module.IsJumpDrive() {
			return true
		}
	}
	return false
}

func (s *Ship) IsCargoFull() bool {
	return s.cargo.IsFull()
}

// Server-confirmed state updates

func (s *Ship) UpdateNav(nav *Nav) {
	if nav != nil {
		s.nav = nav
	}
}

func (s *Ship) UpdateCargo(cargo *shared.Cargo) {
	if cargo != nil {
		s.cargo = cargo
	}
}

func (s *Ship) UpdateFuel(fuel *shared.Fuel) {
	if fuel != nil {
		s.fuel = fuel
	}
}

func (s *Ship) String() string {
	return fmt.Sprintf("Ship(%s at %s, %s, %s)", s.shipSymbol, s.nav.WaypointSymbol, s.nav.Status, s.cargo)
}
