package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

type loopContext struct {
	clock       *shared.MockClock
	assignment  automation.Assignment
	maxFailures int
	loop        *automation.Loop
	canRetry    bool
}

func (lc *loopContext) reset() {
	lc.clock = shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	lc.assignment = automation.Assignment{}
	lc.maxFailures = 0
	lc.loop = nil
	lc.canRetry = false
}

func (lc *loopContext) aMiningAssignment(ship, site string) error {
	lc.assignment = automation.Assignment{ShipSymbol: ship, Job: automation.JobMining, MiningSite: site}
	return nil
}

func (lc *loopContext) theLoopAllowsConsecutiveFailures(n int) error {
	lc.maxFailures = n
	return nil
}

func (lc *loopContext) theLoopStarts() error {
	lc.loop = automation.NewLoop(lc.assignment, lc.maxFailures, lc.clock)
	return lc.loop.Start()
}

func (lc *loopContext) iterationsFail(n int) error {
	for i := 0; i < n; i++ {
		lc.clock.Advance(time.Minute)
		lc.canRetry = lc.loop.RecordFailure(errors.New("ship is in transit"))
	}
	return nil
}

func (lc *loopContext) iterationsSucceed(n int) error {
	for i := 0; i < n; i++ {
		lc.clock.Advance(time.Minute)
		lc.loop.RecordSuccess()
	}
	return nil
}

func (lc *loopContext) theLoopIsStopped() error {
	lc.loop.Stop()
	return nil
}

func (lc *loopContext) theLoopShouldBeAllowedToRetry() error {
	if !lc.canRetry {
		return fmt.Errorf("expected the loop to retry, status %s", lc.loop.Status())
	}
	return nil
}

func (lc *loopContext) theLoopStatusShouldBe(expected string) error {
	if got := string(lc.loop.Status()); got != expected {
		return fmt.Errorf("expected status %s, got %s", expected, got)
	}
	return nil
}

func (lc *loopContext) theLoopShouldHaveConsecutiveFailures(expected int) error {
	if got := lc.loop.ConsecutiveFailures(); got != expected {
		return fmt.Errorf("expected %d consecutive failures, got %d", expected, got)
	}
	return nil
}

func (lc *loopContext) theLoopShouldHaveFailuresInTotal(expected int) error {
	if got := lc.loop.TotalFailures(); got != expected {
		return fmt.Errorf("expected %d failures in total, got %d", expected, got)
	}
	return nil
}

func (lc *loopContext) theLoopShouldHaveRunIterations(expected int) error {
	if got := lc.loop.Iterations(); got != expected {
		return fmt.Errorf("expected %d iterations, got %d", expected, got)
	}
	return nil
}

func (lc *loopContext) anAssignmentWith(ship, job, site, market, contractID string) error {
	lc.assignment = automation.Assignment{
		ShipSymbol: ship,
		Job:        automation.Job(job),
		MiningSite: site,
		Market:     market,
		ContractID: contractID,
	}
	return nil
}

func (lc *loopContext) theAssignmentShouldBe(validity string) error {
	err := lc.assignment.Validate()
	switch {
	case validity == "valid" && err != nil:
		return fmt.Errorf("expected %s assignment to be valid, got %v", lc.assignment.Job, err)
	case validity == "invalid" && err == nil:
		return fmt.Errorf("expected %s assignment to be invalid", lc.assignment.Job)
	}
	return nil
}

// InitializeLoopScenario registers automation loop steps
func InitializeLoopScenario(sc *godog.ScenarioContext) {
	lc := &loopContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		lc.reset()
		return ctx, nil
	})

	sc.Step(`^a mining assignment for "([^"]*)" at "([^"]*)"$`, lc.aMiningAssignment)
	sc.Step(`^the loop allows (\d+) consecutive failures$`, lc.theLoopAllowsConsecutiveFailures)
	sc.Step(`^an assignment for "([^"]*)" with job "([^"]*)", site "([^"]*)", market "([^"]*)" and contract "([^"]*)"$`, lc.anAssignmentWith)

	sc.Step(`^the loop starts$`, lc.theLoopStarts)
	sc.Step(`^(\d+) iterations? fails?$`, lc.iterationsFail)
	sc.Step(`^(\d+) iterations? succeeds?$`, lc.iterationsSucceed)
	sc.Step(`^the loop is stopped$`, lc.theLoopIsStopped)

	sc.Step(`^the loop should be allowed to retry$`, lc.theLoopShouldBeAllowedToRetry)
	sc.Step(`^the loop status should be "([^"]*)"$`, lc.theLoopStatusShouldBe)
	sc.Step(`^the loop should have (\d+) consecutive failures$`, lc.theLoopShouldHaveConsecutiveFailures)
	sc.Step(`^the loop should have (\d+) failures in total$`, lc.theLoopShouldHaveFailuresInTotal)
	sc.Step(`^the loop should have run (\d+) iterations$`, lc.theLoopShouldHaveRunIterations)
	sc.Step(`^the assignment should be (valid|invalid)$`, lc.theAssignmentShouldBe)
}
