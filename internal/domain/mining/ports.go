package mining

import (
	"context"
	"time"
)

// SurveyRepository persists surveys shared between surveying and mining ships
type SurveyRepository interface {
	// Save stores a survey, replacing one with the same signature
	Save(ctx context.Context, survey *Survey) error

	// FindByWaypoint lists surveys for a waypoint, optionally restricted to a size class
	FindByWaypoint(ctx context.Context, waypointSymbol string, size SurveySize) ([]*Survey, error)

	// FindUsable returns the best non-expired survey for a waypoint, or nil when none
	FindUsable(ctx context.Context, waypointSymbol string, size SurveySize, now time.Time) (*Survey, error)

	// Delete drops a survey by signature
	Delete(ctx context.Context, signature string) error

	// DeleteExpired drops surveys for the waypoint that expired before now
	DeleteExpired(ctx context.Context, waypointSymbol string, now time.Time) (int, error)
}
