package shared

import (
	"context"
	"sync"
	"time"
)

// Clock is an abstraction for time operations, allowing time to be mocked in tests.
// Sleep returns early with the context error when ctx is cancelled.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep blocks for the given duration or until ctx is done
func (r *RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MockClock implements Clock with a controllable time for testing.
// Safe for use by several goroutines.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	slept       time.Duration
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

// Sleep advances the mock clock without blocking (instant in tests)
func (m *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
	m.slept += d
	return nil
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// TotalSlept reports the accumulated duration passed to Sleep
func (m *MockClock) TotalSlept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slept
}

// NewMockClock creates a MockClock starting at the given time
// If zero time is provided, starts at current time
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now().UTC()
	}
	return &MockClock{currentTime: startTime}
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}
