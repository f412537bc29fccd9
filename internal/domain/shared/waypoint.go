package shared

import "fmt"

// Waypoint traits the automation cares about
const (
	TraitMarketplace = "MARKETPLACE"
	TraitShipyard    = "SHIPYARD"
	TypeJumpGate     = "JUMP_GATE"
)

// Waypoint represents an immutable location in space
type Waypoint struct {
	Symbol       string
	SystemSymbol string
	Type         string
	X            int
	Y            int
	Traits       []string
	Orbitals     []string
	Faction      string
	ChartedBy    string
}

// NewWaypoint creates a new waypoint with validation
func NewWaypoint(symbol, waypointType string, x, y int) (*Waypoint, error) {
	if symbol == "" {
		return nil, NewValidationError("symbol", "cannot be empty")
	}

	return &Waypoint{
		Symbol:       symbol,
		SystemSymbol: ExtractSystemSymbol(symbol),
		Type:         waypointType,
		X:            x,
		Y:            y,
	}, nil
}

// HasTrait checks whether the waypoint carries the given trait symbol
func (w *Waypoint) HasTrait(trait string) bool {
	for _, t := range w.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

func (w *Waypoint) HasMarketplace() bool {
	return w.HasTrait(TraitMarketplace)
}

func (w *Waypoint) IsJumpGate() bool {
	return w.Type == TypeJumpGate
}

func (w *Waypoint) IsCharted() bool {
	return w.ChartedBy != ""
}

func (w *Waypoint) String() string {
	return fmt.Sprintf("Waypoint(%s)", w.Symbol)
}

// ExtractSystemSymbol derives the system symbol from a waypoint symbol
// ("X1-AB12-C3" -> "X1-AB12")
func ExtractSystemSymbol(waypointSymbol string) string {
	systemSymbol := waypointSymbol
	for i := len(waypointSymbol) - 1; i >= 0; i-- {
		if waypointSymbol[i] == '-' {
			systemSymbol = waypointSymbol[:i]
			break
		}
	}
	return systemSymbol
}
