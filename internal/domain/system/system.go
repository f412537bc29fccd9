package system

import (
	"fmt"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// System is a star system and the waypoints it contains
type System struct {
	Symbol       string
	SectorSymbol string
	Type         string
	X            int
	Y            int
	Waypoints    []*shared.Waypoint
	Factions     []string
}

// NewSystem creates a system with validation
func NewSystem(symbol, sectorSymbol, systemType string, x, y int, waypoints []*shared.Waypoint) (*System, error) {
	if symbol == "" {
		return nil, shared.NewValidationError("symbol", "cannot be empty")
	}

	return &System{
		Symbol:       symbol,
		SectorSymbol: sectorSymbol,
		Type:         systemType,
		X:            x,
		Y:            y,
		Waypoints:    waypoints,
	}, nil
}

// WaypointSymbols lists every waypoint symbol in the system
func (s *System) WaypointSymbols() []string {
	symbols := make([]string, 0, len(s.Waypoints))
	for _, wp := range s.Waypoints {
		symbols = append(symbols, wp.Symbol)
	}
	return symbols
}

// JumpGate returns the system's jump gate waypoint, if any
func (s *System) JumpGate() (*shared.Waypoint, bool) {
	for _, wp := range s.Waypoints {
		if wp.IsJumpGate() {
			return wp, true
		}
	}
	return nil, false
}

func (s *System) String() string {
	return fmt.Sprintf("System(%s, %d waypoints)", s.Symbol, len(s.Waypoints))
}

// JumpGate lists the systems reachable by jumping from a gate
type JumpGate struct {
	Symbol      string
	Connections []string
}

// ConnectedSystems returns the system symbols of the gate's connections
func (g *JumpGate) ConnectedSystems() []string {
	systems := make([]string, 0, len(g.Connections))
	for _, conn := range g.Connections {
		systems = append(systems, shared.ExtractSystemSymbol(conn))
	}
	return systems
}
