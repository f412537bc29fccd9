package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/ship"
	domainMining "github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// SurveyOptions controls a survey loop
type SurveyOptions struct {
	// PruneExpired deletes the waypoint's expired surveys before each survey
	PruneExpired bool

	// Rounds stops the loop after that many successful surveys; zero runs until cancelled
	Rounds int
}

// Surveyor keeps a waypoint stocked with fresh surveys for the miners
type Surveyor struct {
	client    ports.APIClient
	clock     shared.Clock
	navigator *ship.Navigator
	surveys   domainMining.SurveyRepository
}

func NewSurveyor(client ports.APIClient, clock shared.Clock, navigator *ship.Navigator, surveys domainMining.SurveyRepository) *Surveyor {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Surveyor{client: client, clock: clock, navigator: navigator, surveys: surveys}
}

// SurveyLoop flies to destination and surveys it until ctx is cancelled.
// Every survey is saved as soon as it is returned.
func (s *Surveyor) SurveyLoop(ctx context.Context, sh *navigation.Ship, destination string, opts SurveyOptions) error {
	logger := common.LoggerFromContext(ctx)

	sh, err := s.navigator.Navigate(ctx, sh, destination, ship.NavigateOptions{})
	if err != nil {
		return err
	}
	if !sh.IsInOrbit() {
		nav, err := s.client.OrbitShip(ctx, sh.ShipSymbol())
		if err != nil {
			return fmt.Errorf("failed to orbit %s for surveying: %w", sh.ShipSymbol(), err)
		}
		sh.UpdateNav(nav)
	}

	rounds := 0
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if opts.PruneExpired {
			if _, err := s.Prune(ctx, destination); err != nil {
				logger.Log("WARNING", "Survey pruning failed", map[string]interface{}{
					"waypoint": destination,
					"error":    err.Error(),
				})
			}
		}

		result, err := s.client.CreateSurvey(ctx, sh.ShipSymbol())
		if err != nil {
			apiErr, ok := shared.AsAPIError(err)
			if !ok {
				return fmt.Errorf("survey aborted for %s: %w", sh.ShipSymbol(), err)
			}

			wait := errorPause
			if cooldown, ok := apiErr.Cooldown(); ok && apiErr.IsCooldown() {
				wait = cooldown
			} else {
				failures++
				fields := apiErr.LogFields()
				fields["ship_symbol"] = sh.ShipSymbol()
				logger.Log("ERROR", "Survey failed", fields)
				if failures >= maxConsecutiveErrors {
					return fmt.Errorf("survey failing repeatedly for %s: %w", sh.ShipSymbol(), apiErr)
				}
			}
			if err := s.clock.Sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		failures = 0
		for _, survey := range result.Surveys {
			if err := s.surveys.Save(ctx, survey); err != nil {
				return fmt.Errorf("failed to save survey %s: %w", survey.Signature(), err)
			}
		}

		logger.Log("INFO", "Waypoint surveyed", map[string]interface{}{
			"ship_symbol": sh.ShipSymbol(),
			"action":      "survey",
			"waypoint":    destination,
			"surveys":     len(result.Surveys),
			"cooldown":    result.Cooldown.String(),
		})

		rounds++
		if opts.Rounds > 0 && rounds >= opts.Rounds {
			return nil
		}

		if err := s.clock.Sleep(ctx, maxDuration(result.Cooldown, time.Second)); err != nil {
			return err
		}
	}
}

// Prune removes the waypoint's expired surveys
func (s *Surveyor) Prune(ctx context.Context, waypointSymbol string) (int, error) {
	deleted, err := s.surveys.DeleteExpired(ctx, waypointSymbol, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune surveys at %s: %w", waypointSymbol, err)
	}
	if deleted > 0 {
		common.LoggerFromContext(ctx).Log("INFO", "Expired surveys pruned", map[string]interface{}{
			"waypoint": waypointSymbol,
			"deleted":  deleted,
		})
	}
	return deleted, nil
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
