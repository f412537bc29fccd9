package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed allows all requests
	CircuitClosed CircuitState = iota
	// CircuitOpen blocks all requests
	CircuitOpen
	// CircuitHalfOpen allows limited requests to test recovery
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

var (
	// ErrCircuitOpen is returned when the circuit breaker is open
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// CircuitBreaker stops calling the game server after repeated transport failures.
// Game errors (4xx envelopes) are answers, not failures, and never trip it.
type CircuitBreaker struct {
	maxFailures     int
	timeout         time.Duration
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	mu              sync.RWMutex
	clock           shared.Clock
	onStateChange   func(CircuitState)
}

// NewCircuitBreaker creates a new circuit breaker with optional clock injection
// If clock is nil, uses RealClock
func NewCircuitBreaker(maxFailures int, timeout time.Duration, clock shared.Clock) *CircuitBreaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		maxFailures: maxFailures,
		timeout:     timeout,
		state:       CircuitClosed,
		clock:       clock,
	}
}

// OnStateChange registers a callback invoked after every transition
func (cb *CircuitBreaker) OnStateChange(fn func(CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Call executes fn with circuit breaker protection.
// Errors carrying a game error envelope count as success for the breaker.
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == CircuitOpen {
		elapsed := cb.clock.Now().Sub(cb.lastFailureTime)
		if elapsed < cb.timeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.transition(CircuitHalfOpen)
	}
	cb.mu.Unlock()

	// fn may retry and sleep; the lock is not held meanwhile
	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil && isTransportFailure(err) {
		cb.onFailure()
		return err
	}

	cb.onSuccess()
	return err
}

func isTransportFailure(err error) bool {
	if apiErr, ok := shared.AsAPIError(err); ok {
		return apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = cb.clock.Now()

	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.maxFailures {
		cb.transition(CircuitOpen)
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.failureCount = 0
	if cb.state == CircuitHalfOpen {
		cb.transition(CircuitClosed)
	}
}

// transition must be called with mu held
func (cb *CircuitBreaker) transition(state CircuitState) {
	if cb.state == state {
		return
	}
	cb.state = state
	if cb.onStateChange != nil {
		cb.onStateChange(state)
	}
}

// GetState returns the current circuit breaker state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// GetFailureCount returns the current consecutive failure count
func (cb *CircuitBreaker) GetFailureCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failureCount
}

// Reset resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(CircuitClosed)
	cb.failureCount = 0
}
