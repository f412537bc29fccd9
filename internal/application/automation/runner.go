package automation

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/application/contract"
	"github.com/andrescamacho/spacetraders-automation/internal/application/exploration"
	"github.com/andrescamacho/spacetraders-automation/internal/application/mining"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// ShipRunner repeats one ship's job through the mediator until the job
// completes, the failure streak runs out or the context is cancelled.
//
// Iterations are dispatched as the same commands the CLI sends, so command
// metrics and middleware see automation traffic too.
type ShipRunner struct {
	mediator common.Mediator
	clock    shared.Clock
	settings Settings

	mu   sync.RWMutex
	loop *automation.Loop
}

func NewShipRunner(mediator common.Mediator, clock shared.Clock, assignment automation.Assignment, settings Settings) *ShipRunner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ShipRunner{
		mediator: mediator,
		clock:    clock,
		settings: settings.withDefaults(),
		loop:     automation.NewLoop(assignment, settings.MaxConsecutiveFailures, clock),
	}
}

// Loop returns a snapshot of the loop state
func (r *ShipRunner) Loop() automation.Loop {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loop.Snapshot()
}

// Run executes iterations until the loop finishes. It never returns an error:
// a failing ship must not take the others down.
func (r *ShipRunner) Run(ctx context.Context) {
	logger := common.LoggerFromContext(ctx)
	assignment := r.loop.Assignment()

	r.mu.Lock()
	err := r.loop.Start()
	r.mu.Unlock()
	if err != nil {
		logger.Log("ERROR", err.Error(), nil)
		return
	}

	logger.Log("INFO", "Ship loop started", map[string]interface{}{
		"ship_symbol": assignment.ShipSymbol,
		"job":         string(assignment.Job),
	})

	for {
		if ctx.Err() != nil {
			r.stop(ctx)
			return
		}

		done, err := r.iterate(ctx, assignment)
		if err != nil {
			if ctx.Err() != nil {
				r.stop(ctx)
				return
			}
			if !r.fail(ctx, assignment, err) {
				return
			}
			if err := r.clock.Sleep(ctx, r.settings.ErrorPause); err != nil {
				r.stop(ctx)
				return
			}
			continue
		}

		r.mu.Lock()
		r.loop.RecordSuccess()
		if done {
			_ = r.loop.Complete()
		}
		snapshot := r.loop.Snapshot()
		r.mu.Unlock()

		if done {
			logger.Log("INFO", "Ship loop completed", map[string]interface{}{
				"ship_symbol": assignment.ShipSymbol,
				"job":         string(assignment.Job),
				"iterations":  snapshot.Iterations(),
				"runtime":     snapshot.Runtime().String(),
			})
			return
		}

		if assignment.Job == automation.JobExplore {
			if err := r.clock.Sleep(ctx, r.settings.IdlePause); err != nil {
				r.stop(ctx)
				return
			}
		}
	}
}

// iterate runs one step of the job and reports whether the job's goal is reached
func (r *ShipRunner) iterate(ctx context.Context, a automation.Assignment) (bool, error) {
	switch a.Job {
	case automation.JobMining:
		_, err := r.mediator.Send(ctx, &mining.MiningCycleCommand{
			ShipSymbol: a.ShipSymbol,
			Options: mining.CycleOptions{
				MiningSite: a.MiningSite,
				Market:     a.Market,
				Exclude:    a.Exclude,
				Mine:       mining.MineOptions{UseSurveys: r.settings.UseSurveys},
			},
		})
		return false, err

	case automation.JobContract:
		resp, err := r.mediator.Send(ctx, &contract.RunContractCommand{
			ShipSymbol:        a.ShipSymbol,
			ContractID:        a.ContractID,
			MiningDestination: a.MiningSite,
			SellMarket:        a.Market,
		})
		if err != nil {
			return false, err
		}
		result, ok := resp.(*contract.RunContractResponse)
		if !ok {
			return false, fmt.Errorf("unexpected response type %T", resp)
		}
		if !result.DeliveryComplete {
			return false, nil
		}
		if r.settings.AutoFulfill {
			if _, err := r.mediator.Send(ctx, &contract.FulfillContractCommand{ContractID: a.ContractID}); err != nil {
				return false, err
			}
		}
		return true, nil

	case automation.JobSurvey:
		_, err := r.mediator.Send(ctx, &mining.SurveyLoopCommand{
			ShipSymbol:  a.ShipSymbol,
			Destination: a.MiningSite,
			Options:     mining.SurveyOptions{PruneExpired: true},
		})
		return false, err

	case automation.JobExplore:
		_, err := r.mediator.Send(ctx, &exploration.RunExplorationCommand{ShipSymbol: a.ShipSymbol})
		return false, err

	case automation.JobSell:
		_, err := r.mediator.Send(ctx, &mining.MarketSellCommand{
			ShipSymbol: a.ShipSymbol,
			Market:     a.Market,
			Exclude:    a.Exclude,
		})
		return err == nil, err
	}
	return false, fmt.Errorf("unknown job %q", a.Job)
}

// fail records the error and reports whether the loop should retry
func (r *ShipRunner) fail(ctx context.Context, a automation.Assignment, err error) bool {
	logger := common.LoggerFromContext(ctx)
	metrics.RecordRoutineFailure(string(a.Job), a.ShipSymbol)

	r.mu.Lock()
	canRetry := r.loop.RecordFailure(err)
	streak := r.loop.ConsecutiveFailures()
	r.mu.Unlock()

	fields := map[string]interface{}{
		"ship_symbol":          a.ShipSymbol,
		"job":                  string(a.Job),
		"consecutive_failures": streak,
		"error":                err.Error(),
	}
	if apiErr, ok := shared.AsAPIError(err); ok {
		for k, v := range apiErr.LogFields() {
			fields[k] = v
		}
	}

	if !canRetry {
		logger.Log("ERROR", "Ship loop gave up after repeated failures", fields)
		return false
	}
	fields["retry_in"] = r.settings.ErrorPause.String()
	logger.Log("WARNING", "Ship loop iteration failed", fields)
	return true
}

func (r *ShipRunner) stop(ctx context.Context) {
	r.mu.Lock()
	r.loop.Stop()
	snapshot := r.loop.Snapshot()
	r.mu.Unlock()

	common.LoggerFromContext(ctx).Log("INFO", "Ship loop stopped", map[string]interface{}{
		"ship_symbol": snapshot.ShipSymbol(),
		"job":         string(snapshot.Job()),
		"iterations":  snapshot.Iterations(),
	})
}
