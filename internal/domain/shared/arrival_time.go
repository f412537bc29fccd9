package shared

import (
	"fmt"
	"time"
)

// ArrivalTime represents an immutable arrival time reported by the SpaceTraders API
type ArrivalTime struct {
	at time.Time
}

// NewArrivalTime parses an RFC3339 timestamp as returned in a ship's route
func NewArrivalTime(timestamp string) (*ArrivalTime, error) {
	if timestamp == "" {
		return nil, fmt.Errorf("arrival time timestamp cannot be empty")
	}

	at, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid arrival time format: %w", err)
	}

	return &ArrivalTime{at: at.UTC()}, nil
}

// ArrivalAt wraps an already parsed time
func ArrivalAt(t time.Time) *ArrivalTime {
	return &ArrivalTime{at: t.UTC()}
}

// Time returns the arrival instant
func (a *ArrivalTime) Time() time.Time {
	return a.at
}

// WaitTime returns how long to wait from now until arrival (never negative)
func (a *ArrivalTime) WaitTime(now time.Time) time.Duration {
	wait := a.at.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// HasArrived checks if the arrival time is not in the future
func (a *ArrivalTime) HasArrived(now time.Time) bool {
	return a.WaitTime(now) == 0
}

func (a *ArrivalTime) String() string {
	return fmt.Sprintf("ArrivalTime(%s)", a.at.Format(time.RFC3339))
}
