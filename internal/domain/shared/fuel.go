package shared

import (
	"errors"
	"fmt"
)

var ErrInvalidFuel = errors.New("invalid fuel state")

// Fuel is a tank reading as reported by the server
type Fuel struct {
	Current  int
	Capacity int
}

func NewFuel(current, capacity int) (*Fuel, error) {
	if current < 0 || capacity < 0 {
		return nil, fmt.Errorf("%w: negative reading %d/%d", ErrInvalidFuel, current, capacity)
	}
	if current > capacity {
		return nil, fmt.Errorf("%w: %d exceeds capacity %d", ErrInvalidFuel, current, capacity)
	}
	return &Fuel{Current: current, Capacity: capacity}, nil
}

// HasTank is false for probes and other hulls that never burn fuel
func (f *Fuel) HasTank() bool {
	return f.Capacity > 0
}

func (f *Fuel) IsFull() bool {
	return f.Current >= f.Capacity
}

// NeedsFuel reports a tank with room in it
func (f *Fuel) NeedsFuel() bool {
	return f.HasTank() && !f.IsFull()
}

// Missing is the number of units a full refuel would buy
func (f *Fuel) Missing() int {
	if f.Current >= f.Capacity {
		return 0
	}
	return f.Capacity - f.Current
}

func (f *Fuel) String() string {
	return fmt.Sprintf("Fuel(%d/%d)", f.Current, f.Capacity)
}
