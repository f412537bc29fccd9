package system

import (
	"context"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// MappingRepository tracks exploration progress shared by every exploring ship
type MappingRepository interface {
	// SystemMappedState returns the persisted state, UN_MAPPED when never seen
	SystemMappedState(ctx context.Context, systemSymbol string) (MappedState, error)

	// WaypointMappedState returns the persisted state of a waypoint, UN_MAPPED when never seen
	WaypointMappedState(ctx context.Context, waypointSymbol string) (MappedState, error)

	// ClaimSystem atomically moves a system from UN_MAPPED to INCOMPLETE for the ship.
	// Returns false when another ship already holds the claim or the system is mapped.
	ClaimSystem(ctx context.Context, systemSymbol, shipSymbol string) (bool, error)

	// GetClaim returns the current claim, nil when the system was never claimed
	GetClaim(ctx context.Context, systemSymbol string) (*Claim, error)

	// IsClaimant reports whether the ship holds the INCOMPLETE claim
	IsClaimant(ctx context.Context, systemSymbol, shipSymbol string) (bool, error)

	// CompleteSystem moves the claimant's system from INCOMPLETE to MAPPED
	CompleteSystem(ctx context.Context, systemSymbol, shipSymbol string) error

	// ReleaseClaim resets an INCOMPLETE system back to UN_MAPPED
	ReleaseClaim(ctx context.Context, systemSymbol string) error

	// SaveSystem upserts a system's descriptive data without touching its claim
	SaveSystem(ctx context.Context, sys *System) error

	// History lists recorded claim transitions, oldest first
	History(ctx context.Context, systemSymbol string) ([]Claim, error)

	// SaveWaypoints upserts the waypoints of a system, keeping their mapped state
	SaveWaypoints(ctx context.Context, waypoints []*shared.Waypoint) error

	// MarkWaypointMapped sets a waypoint's state to MAPPED
	MarkWaypointMapped(ctx context.Context, waypointSymbol string) error

	// UnmappedWaypoints lists waypoints of the system not yet MAPPED
	UnmappedWaypoints(ctx context.Context, systemSymbol string) ([]string, error)
}

// ChartRepository stores charts submitted by our ships
type ChartRepository interface {
	Save(ctx context.Context, chart *Chart) error
	FindByWaypoint(ctx context.Context, waypointSymbol string) (*Chart, error)
}
