package mining

import (
	"fmt"
	"time"
)

// SurveySize is the size class of a surveyed deposit
type SurveySize string

const (
	SurveySizeSmall    SurveySize = "SMALL"
	SurveySizeModerate SurveySize = "MODERATE"
	SurveySizeLarge    SurveySize = "LARGE"
)

var surveySizeRank = map[SurveySize]int{
	SurveySizeSmall:    1,
	SurveySizeModerate: 2,
	SurveySizeLarge:    3,
}

// Rank orders sizes so larger deposits sort first; unknown sizes rank 0
func (s SurveySize) Rank() int {
	return surveySizeRank[s]
}

// ParseSurveySize validates a size class; empty means "any size"
func ParseSurveySize(value string) (SurveySize, error) {
	if value == "" {
		return "", nil
	}
	size := SurveySize(value)
	if _, ok := surveySizeRank[size]; !ok {
		return "", fmt.Errorf("invalid survey size: %s", value)
	}
	return size, nil
}

// Survey is a time-limited hint about deposits at a waypoint.
// The server invalidates it once exhausted; locally it expires by wall clock.
type Survey struct {
	signature      string
	waypointSymbol string
	deposits       []string
	expiration     time.Time
	size           SurveySize
}

// NewSurvey creates a survey with validation
func NewSurvey(signature, waypointSymbol string, deposits []string, expiration time.Time, size SurveySize) (*Survey, error) {
	if signature == "" {
		return nil, fmt.Errorf("survey signature cannot be empty")
	}
	if waypointSymbol == "" {
		return nil, fmt.Errorf("survey waypoint cannot be empty")
	}
	if expiration.IsZero() {
		return nil, fmt.Errorf("survey %s has no expiration", signature)
	}

	return &Survey{
		signature:      signature,
		waypointSymbol: waypointSymbol,
		deposits:       append([]string(nil), deposits...),
		expiration:     expiration.UTC(),
		size:           size,
	}, nil
}

func (s *Survey) Signature() string      { return s.signature }
func (s *Survey) WaypointSymbol() string { return s.waypointSymbol }
func (s *Survey) Deposits() []string     { return append([]string(nil), s.deposits...) }
func (s *Survey) Expiration() time.Time  { return s.expiration }
func (s *Survey) Size() SurveySize       { return s.size }

// IsExpired compares the expiration against the local clock
func (s *Survey) IsExpired(now time.Time) bool {
	return !now.Before(s.expiration)
}

// ContainsDeposit reports whether the survey lists the good
func (s *Survey) ContainsDeposit(symbol string) bool {
	for _, d := range s.deposits {
		if d == symbol {
			return true
		}
	}
	return false
}

func (s *Survey) String() string {
	return fmt.Sprintf("Survey(%s %s %s until %s)", s.signature, s.waypointSymbol, s.size, s.expiration.Format(time.RFC3339))
}
