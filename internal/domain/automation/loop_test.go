package automation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/automation"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

func newLoop(maxFailures int) (*automation.Loop, *shared.MockClock) {
	clock := shared.NewMockClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assignment := automation.Assignment{ShipSymbol: "MINER-1", Job: automation.JobMining, MiningSite: "X1-TEST-B2"}
	return automation.NewLoop(assignment, maxFailures, clock), clock
}

func TestLoop_FailureStreakEndsLoop(t *testing.T) {
	// Arrange
	loop, _ := newLoop(3)
	require.NoError(t, loop.Start())
	boom := errors.New("boom")

	// Act
	first := loop.RecordFailure(boom)
	second := loop.RecordFailure(boom)
	third := loop.RecordFailure(boom)

	// Assert
	assert.True(t, first)
	assert.True(t, second)
	assert.False(t, third)
	assert.Equal(t, automation.LoopStatusFailed, loop.Status())
	assert.ErrorIs(t, loop.LastError(), boom)
	assert.True(t, loop.IsFinished())
}

func TestLoop_SuccessResetsStreak(t *testing.T) {
	// Arrange
	loop, _ := newLoop(2)
	require.NoError(t, loop.Start())

	// Act
	loop.RecordFailure(errors.New("transient"))
	loop.RecordSuccess()
	canRetry := loop.RecordFailure(errors.New("transient"))

	// Assert
	assert.True(t, canRetry)
	assert.Equal(t, 1, loop.ConsecutiveFailures())
	assert.Equal(t, 2, loop.TotalFailures())
	assert.Equal(t, 3, loop.Iterations())
	assert.Equal(t, automation.LoopStatusRunning, loop.Status())
}

func TestLoop_UnlimitedFailures(t *testing.T) {
	// Arrange
	loop, _ := newLoop(0)
	require.NoError(t, loop.Start())

	// Act
	for i := 0; i < 100; i++ {
		require.True(t, loop.RecordFailure(errors.New("again")))
	}

	// Assert
	assert.Equal(t, automation.LoopStatusRunning, loop.Status())
}

func TestLoop_StopKeepsTerminalStatus(t *testing.T) {
	// Arrange
	loop, clock := newLoop(0)
	require.NoError(t, loop.Start())
	clock.Advance(time.Minute)
	require.NoError(t, loop.Complete())

	// Act
	loop.Stop()

	// Assert
	assert.Equal(t, automation.LoopStatusCompleted, loop.Status())
	assert.Equal(t, time.Minute, loop.Runtime())
	assert.Error(t, loop.Start())
}

func TestParseJob(t *testing.T) {
	job, err := automation.ParseJob(" Explore ")
	require.NoError(t, err)
	assert.Equal(t, automation.JobExplore, job)

	_, err = automation.ParseJob("trade")
	assert.Error(t, err)
}

func TestAssignment_Validate(t *testing.T) {
	tests := []struct {
		name       string
		assignment automation.Assignment
		wantErr    bool
	}{
		{"mining needs site", automation.Assignment{ShipSymbol: "S", Job: automation.JobMining}, true},
		{"mining ok", automation.Assignment{ShipSymbol: "S", Job: automation.JobMining, MiningSite: "W"}, false},
		{"contract needs id", automation.Assignment{ShipSymbol: "S", Job: automation.JobContract, MiningSite: "W"}, true},
		{"sell needs market", automation.Assignment{ShipSymbol: "S", Job: automation.JobSell}, true},
		{"explore needs nothing", automation.Assignment{ShipSymbol: "S", Job: automation.JobExplore}, false},
		{"ship required", automation.Assignment{Job: automation.JobExplore}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.assignment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
