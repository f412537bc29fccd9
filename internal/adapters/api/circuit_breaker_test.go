package api_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/api"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

var errNetwork = errors.New("connection refused")

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Now())
	cb := api.NewCircuitBreaker(3, time.Minute, clock)

	// Act
	for i := 0; i < 3; i++ {
		_ = cb.Call(func() error { return errNetwork })
	}
	err := cb.Call(func() error { return nil })

	// Assert
	assert.ErrorIs(t, err, api.ErrCircuitOpen)
	assert.Equal(t, api.CircuitOpen, cb.GetState())
	assert.Equal(t, 3, cb.GetFailureCount())
}

func TestCircuitBreaker_GameErrorsDoNotTrip(t *testing.T) {
	// Arrange
	cb := api.NewCircuitBreaker(1, time.Minute, shared.NewMockClock(time.Now()))
	gameErr := &shared.APIError{StatusCode: 400, Code: shared.ErrorCodeContractAccepted, Message: "already accepted"}

	// Act
	err := cb.Call(func() error { return gameErr })

	// Assert
	assert.ErrorIs(t, err, gameErr)
	assert.Equal(t, api.CircuitClosed, cb.GetState())
	assert.Zero(t, cb.GetFailureCount())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Now())
	cb := api.NewCircuitBreaker(1, 30*time.Second, clock)
	var transitions []api.CircuitState
	cb.OnStateChange(func(s api.CircuitState) { transitions = append(transitions, s) })
	_ = cb.Call(func() error { return errNetwork })
	require.Equal(t, api.CircuitOpen, cb.GetState())

	// Act
	clock.Advance(30 * time.Second)
	err := cb.Call(func() error { return nil })

	// Assert
	require.NoError(t, err)
	assert.Equal(t, api.CircuitClosed, cb.GetState())
	assert.Equal(t, []api.CircuitState{api.CircuitOpen, api.CircuitHalfOpen, api.CircuitClosed}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Now())
	cb := api.NewCircuitBreaker(2, 10*time.Second, clock)
	_ = cb.Call(func() error { return errNetwork })
	_ = cb.Call(func() error { return errNetwork })
	clock.Advance(10 * time.Second)

	// Act
	err := cb.Call(func() error { return errNetwork })

	// Assert
	assert.ErrorIs(t, err, errNetwork)
	assert.Equal(t, api.CircuitOpen, cb.GetState())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	// Arrange
	cb := api.NewCircuitBreaker(1, time.Hour, shared.NewMockClock(time.Now()))
	_ = cb.Call(func() error { return errNetwork })

	// Act
	cb.Reset()

	// Assert
	assert.Equal(t, api.CircuitClosed, cb.GetState())
	assert.NoError(t, cb.Call(func() error { return nil }))
}
