package domain

import (
	"errors"
	"fmt"
)

// Sentinel kinds matched by errors.Is against the typed errors below.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedRange = errors.New("unsupported range")
	ErrComputation      = errors.New("computation error")
)

// InvalidInputError reports malformed or out-of-range request fields.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidInput, e.Field, e.Value, e.Reason)
}

// Is lets callers test with errors.Is(err, ErrInvalidInput).
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// UnsupportedRangeError reports a valid moment outside the ephemeris coverage window.
type UnsupportedRangeError struct {
	Year     int
	Min, Max int
}

func (e *UnsupportedRangeError) Error() string {
	return fmt.Sprintf("%s: year %d outside [%d, %d]", ErrUnsupportedRange, e.Year, e.Min, e.Max)
}

func (e *UnsupportedRangeError) Is(target error) bool { return target == ErrUnsupportedRange }

// ComputationError signals an inconsistent lookup table. It is a defect, never a user error.
type ComputationError struct {
	Table string
	Key   any
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: table %s has no entry for %v", ErrComputation, e.Table, e.Key)
}

func (e *ComputationError) Is(target error) bool { return target == ErrComputation }

// Invalid is a shorthand constructor used by the validators.
func Invalid(field string, value any, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

// Missing builds a ComputationError for a table lookup that found nothing.
func Missing(table string, key any) error {
	return &ComputationError{Table: table, Key: key}
}
