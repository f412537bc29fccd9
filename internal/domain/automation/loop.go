package automation

import (
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// LoopStatus represents the lifecycle state of a ship loop
type LoopStatus string

const (
	// LoopStatusPending indicates the loop is queued behind the concurrency limit
	LoopStatusPending LoopStatus = "PENDING"

	// LoopStatusRunning indicates the loop is executing iterations
	LoopStatusRunning LoopStatus = "RUNNING"

	// LoopStatusCompleted indicates the job reached its goal (contract delivered, cargo sold)
	LoopStatusCompleted LoopStatus = "COMPLETED"

	// LoopStatusFailed indicates the loop gave up after too many consecutive failures
	LoopStatusFailed LoopStatus = "FAILED"

	// LoopStatusStopped indicates the loop was cancelled
	LoopStatusStopped LoopStatus = "STOPPED"
)

// Job names the routine a ship loop repeats
type Job string

const (
	JobMining   Job = "mining"
	JobContract Job = "contract"
	JobSurvey   Job = "survey"
	JobExplore  Job = "explore"
	JobSell     Job = "sell"
)

// ParseJob validates a job name
func ParseJob(value string) (Job, error) {
	switch job := Job(strings.ToLower(strings.TrimSpace(value))); job {
	case JobMining, JobContract, JobSurvey, JobExplore, JobSell:
		return job, nil
	}
	return "", fmt.Errorf("unknown job %q (want mining, contract, survey, explore or sell)", value)
}

// Assignment binds a ship to a job and its parameters
type Assignment struct {
	ShipSymbol string
	Job        Job

	// Waypoint the ship mines or surveys at
	MiningSite string

	// Waypoint where cargo is sold; empty sells at the mining site
	Market string

	// Goods never sold
	Exclude []string

	// Contract the ship works on (contract job)
	ContractID string
}

// Validate checks that the job has the parameters it needs
func (a Assignment) Validate() error {
	if a.ShipSymbol == "" {
		return shared.NewValidationError("ship_symbol", "cannot be empty")
	}
	switch a.Job {
	case JobMining, JobSurvey:
		if a.MiningSite == "" {
			return shared.NewValidationError("mining_site", fmt.Sprintf("required for %s job", a.Job))
		}
	case JobContract:
		if a.ContractID == "" {
			return shared.NewValidationError("contract_id", "required for contract job")
		}
		if a.MiningSite == "" {
			return shared.NewValidationError("mining_site", "required for contract job")
		}
	case JobSell:
		if a.Market == "" {
			return shared.NewValidationError("market", "required for sell job")
		}
	case JobExplore:
	default:
		return shared.NewValidationError("job", fmt.Sprintf("unknown job %q", a.Job))
	}
	return nil
}

// Loop tracks one ship repeating a job.
// It is owned by a single goroutine; Snapshot copies it for readers.
type Loop struct {
	assignment Assignment
	status     LoopStatus

	iterations          int
	consecutiveFailures int
	totalFailures       int
	maxFailures         int // 0 for unlimited
	lastError           error

	startedAt *time.Time
	stoppedAt *time.Time

	clock shared.Clock
}

// NewLoop creates a pending loop.
// If clock is nil, uses RealClock (production behavior)
func NewLoop(assignment Assignment, maxFailures int, clock shared.Clock) *Loop {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Loop{
		assignment:  assignment,
		status:      LoopStatusPending,
		maxFailures: maxFailures,
		clock:       clock,
	}
}

func (l *Loop) Assignment() Assignment   { return l.assignment }
func (l *Loop) ShipSymbol() string       { return l.assignment.ShipSymbol }
func (l *Loop) Job() Job                 { return l.assignment.Job }
func (l *Loop) Status() LoopStatus       { return l.status }
func (l *Loop) Iterations() int          { return l.iterations }
func (l *Loop) ConsecutiveFailures() int { return l.consecutiveFailures }
func (l *Loop) TotalFailures() int       { return l.totalFailures }
func (l *Loop) LastError() error         { return l.lastError }
func (l *Loop) StartedAt() *time.Time    { return l.startedAt }
func (l *Loop) StoppedAt() *time.Time    { return l.stoppedAt }

// Start transitions a pending loop to RUNNING
func (l *Loop) Start() error {
	if l.status != LoopStatusPending {
		return fmt.Errorf("cannot start loop in %s state", l.status)
	}
	now := l.clock.Now()
	l.startedAt = &now
	l.status = LoopStatusRunning
	return nil
}

// RecordSuccess counts a finished iteration and clears the failure streak
func (l *Loop) RecordSuccess() {
	l.iterations++
	l.consecutiveFailures = 0
}

// RecordFailure counts a failed iteration and reports whether the loop may retry
func (l *Loop) RecordFailure(err error) bool {
	l.iterations++
	l.consecutiveFailures++
	l.totalFailures++
	l.lastError = err

	if l.maxFailures > 0 && l.consecutiveFailures >= l.maxFailures {
		l.finish(LoopStatusFailed)
		return false
	}
	return true
}

// Complete marks the job's goal as reached
func (l *Loop) Complete() error {
	if l.status != LoopStatusRunning {
		return fmt.Errorf("cannot complete loop in %s state", l.status)
	}
	l.finish(LoopStatusCompleted)
	return nil
}

// Stop marks the loop as cancelled. Finished loops keep their status.
func (l *Loop) Stop() {
	if l.IsFinished() {
		return
	}
	l.finish(LoopStatusStopped)
}

// IsFinished reports a terminal status
func (l *Loop) IsFinished() bool {
	switch l.status {
	case LoopStatusCompleted, LoopStatusFailed, LoopStatusStopped:
		return true
	}
	return false
}

// Runtime is the time spent since Start, up to the stop time when finished
func (l *Loop) Runtime() time.Duration {
	if l.startedAt == nil {
		return 0
	}
	end := l.clock.Now()
	if l.stoppedAt != nil {
		end = *l.stoppedAt
	}
	return end.Sub(*l.startedAt)
}

func (l *Loop) finish(status LoopStatus) {
	now := l.clock.Now()
	l.stoppedAt = &now
	l.status = status
}

// Snapshot returns a copy safe to hand to another goroutine
func (l *Loop) Snapshot() Loop {
	return *l
}

func (l *Loop) String() string {
	return fmt.Sprintf("Loop(%s %s %s, %d iterations)", l.assignment.ShipSymbol, l.assignment.Job, l.status, l.iterations)
}
