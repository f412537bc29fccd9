package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	domainMining "github.com/andrescamacho/spacetraders-automation/internal/domain/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/navigation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

const (
	// errorPause is the fixed wait after a game error that carries no cooldown
	errorPause = 5 * time.Second

	// maxConsecutiveErrors ends a mining or survey run stuck on the same failure
	maxConsecutiveErrors = 5
)

// MineOptions controls survey use during extraction
type MineOptions struct {
	UseSurveys bool

	// SurveySize restricts surveys to one size class; empty accepts any
	SurveySize domainMining.SurveySize
}

// Miner extracts resources until a ship's hold is full
type Miner struct {
	client  ports.APIClient
	clock   shared.Clock
	surveys domainMining.SurveyRepository
}

// NewMiner creates a miner. surveys may be nil, in which case surveys are never used.
func NewMiner(client ports.APIClient, clock shared.Clock, surveys domainMining.SurveyRepository) *Miner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Miner{client: client, clock: clock, surveys: surveys}
}

// MineUntilFull extracts at destination, where the ship already sits, until the hold is full.
//
// Extraction waits out the cooldown the server reports after each success. A
// survey the server rejects is deleted from the store and mining continues
// without it. Other game errors are logged, followed by a short pause and a
// cargo refresh.
func (m *Miner) MineUntilFull(ctx context.Context, s *navigation.Ship, destination string, opts MineOptions) (*navigation.Ship, *domainMining.YieldReport, error) {
	logger := common.LoggerFromContext(ctx)
	report := domainMining.NewYieldReport()

	if !s.IsInOrbit() {
		nav, err := m.client.OrbitShip(ctx, s.ShipSymbol())
		if err != nil {
			return s, report, fmt.Errorf("failed to orbit %s for mining: %w", s.ShipSymbol(), err)
		}
		s.UpdateNav(nav)
	}

	var survey *domainMining.Survey
	var err error
	failures := 0

	for !s.IsCargoFull() {
		if opts.UseSurveys && survey == nil && m.surveys != nil {
			survey, err = m.surveys.FindUsable(ctx, destination, opts.SurveySize, m.clock.Now())
			if err != nil {
				logger.Log("WARNING", "Survey lookup failed, mining without survey", map[string]interface{}{
					"ship_symbol": s.ShipSymbol(),
					"waypoint":    destination,
					"error":       err.Error(),
				})
				survey = nil
			}
		}

		extraction, err := m.client.ExtractResources(ctx, s.ShipSymbol(), survey)
		if err == nil {
			failures = 0
			report.Add(extraction.Good, extraction.Units)
			if extraction.Cargo != nil {
				s.UpdateCargo(extraction.Cargo)
			}
			metrics.RecordExtraction(s.ShipSymbol(), extraction.Good, extraction.Units)

			logger.Log("INFO", "Resources extracted", map[string]interface{}{
				"ship_symbol": s.ShipSymbol(),
				"action":      "extract",
				"waypoint":    destination,
				"good":        extraction.Good,
				"units":       extraction.Units,
				"cargo":       s.Cargo().String(),
			})

			if !s.IsCargoFull() && extraction.Cooldown > 0 {
				if err := m.clock.Sleep(ctx, extraction.Cooldown); err != nil {
					return s, report, err
				}
			}
			continue
		}

		apiErr, ok := shared.AsAPIError(err)
		if !ok {
			return s, report, fmt.Errorf("extraction aborted for %s: %w", s.ShipSymbol(), err)
		}

		switch {
		case survey != nil && apiErr.IsSurveyExhausted():
			logger.Log("INFO", "Survey no longer usable, discarding", map[string]interface{}{
				"ship_symbol": s.ShipSymbol(),
				"signature":   survey.Signature(),
				"error_code":  apiErr.Code,
			})
			if err := m.surveys.Delete(ctx, survey.Signature()); err != nil {
				logger.Log("WARNING", "Failed to delete survey", map[string]interface{}{
					"signature": survey.Signature(),
					"error":     err.Error(),
				})
			}
			survey = nil

		case apiErr.IsCooldown():
			wait, ok := apiErr.Cooldown()
			if !ok || wait <= 0 {
				wait = time.Second
			}
			if err := m.clock.Sleep(ctx, wait); err != nil {
				return s, report, err
			}

		default:
			failures++
			fields := apiErr.LogFields()
			fields["ship_symbol"] = s.ShipSymbol()
			fields["attempt"] = failures
			logger.Log("ERROR", "Extraction failed", fields)
			if failures >= maxConsecutiveErrors {
				return s, report, fmt.Errorf("extraction failing repeatedly for %s: %w", s.ShipSymbol(), apiErr)
			}

			if err := m.clock.Sleep(ctx, errorPause); err != nil {
				return s, report, err
			}
			cargo, err := m.client.GetShipCargo(ctx, s.ShipSymbol())
			if err != nil {
				return s, report, fmt.Errorf("failed to refresh cargo of %s: %w", s.ShipSymbol(), err)
			}
			s.UpdateCargo(cargo)
		}
	}

	logger.Log("INFO", "Cargo full", map[string]interface{}{
		"ship_symbol": s.ShipSymbol(),
		"action":      "mine",
		"extractions": report.Extractions(),
		"yield":       report.String(),
	})
	return s, report, nil
}
