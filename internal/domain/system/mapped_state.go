package system

import (
	"errors"
	"fmt"
	"time"
)

// MappedState is the exploration progress of a system or waypoint.
//
// UN_MAPPED -> INCOMPLETE is a claim by one ship.
// INCOMPLETE -> MAPPED is completion by that same ship.
type MappedState string

const (
	MappedStateUnmapped   MappedState = "UN_MAPPED"
	MappedStateIncomplete MappedState = "INCOMPLETE"
	MappedStateMapped     MappedState = "MAPPED"
)

var (
	ErrNotClaimant = errors.New("ship does not hold the claim on this system")
)

// ParseMappedState validates a persisted state value
func ParseMappedState(value string) (MappedState, error) {
	switch state := MappedState(value); state {
	case MappedStateUnmapped, MappedStateIncomplete, MappedStateMapped:
		return state, nil
	case "":
		return MappedStateUnmapped, nil
	}
	return "", fmt.Errorf("invalid mapped state: %s", value)
}

func (m MappedState) String() string {
	return string(m)
}

// Claim records which ship is mapping a system and since when
type Claim struct {
	SystemSymbol string
	ShipSymbol   string
	State        MappedState
	ClaimedAt    time.Time
}

// Chart is a record of a charted waypoint
type Chart struct {
	WaypointSymbol string
	SubmittedBy    string
	SubmittedOn    time.Time
}
