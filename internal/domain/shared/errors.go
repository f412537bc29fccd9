package shared

import (
	"errors"
	"fmt"
)

// Ship failure kinds. Match them with errors.Is.
var (
	ErrInvalidShipData = errors.New("invalid ship data")
	ErrNotArrived      = errors.New("ship did not arrive")
	ErrNoJumpDrive     = errors.New("ship has no jump drive")
)

// ShipError ties a failure to the ship it happened on
type ShipError struct {
	ShipSymbol string
	Err        error
}

func (e *ShipError) Error() string {
	if e.ShipSymbol == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("ship %s: %v", e.ShipSymbol, e.Err)
}

func (e *ShipError) Unwrap() error { return e.Err }

func NewShipError(shipSymbol string, err error) *ShipError {
	return &ShipError{ShipSymbol: shipSymbol, Err: err}
}

func NewInvalidShipDataError(shipSymbol, message string) *ShipError {
	return NewShipError(shipSymbol, fmt.Errorf("%w: %s", ErrInvalidShipData, message))
}

// NewNotArrivedError reports a ship that stopped somewhere other than destination
func NewNotArrivedError(shipSymbol, destination, location string) *ShipError {
	return NewShipError(shipSymbol, fmt.Errorf("%w at %s (currently at %s)", ErrNotArrived, destination, location))
}

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
