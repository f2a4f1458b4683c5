package virtual

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches any *ConfigurationError with errors.Is.
	ErrConfiguration = errors.New("virtual: invalid configuration")
	// ErrMeasurement matches any *MeasurementError with errors.Is.
	ErrMeasurement = errors.New("virtual: invalid measurement")
)

// ConfigurationError reports an invalid static setup. A session that fails
// with a ConfigurationError must not be used.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("virtual: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(field string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// MeasurementError reports a single rejected size report. The prior size
// for Index is kept.
type MeasurementError struct {
	Index  int
	Size   float64
	Reason string
}

// Error implements the error interface.
func (e *MeasurementError) Error() string {
	return fmt.Sprintf("virtual: measurement %v for item %d rejected: %s", e.Size, e.Index, e.Reason)
}

// Is reports whether target is ErrMeasurement.
func (e *MeasurementError) Is(target error) bool {
	return target == ErrMeasurement
}

// RangeInconsistency is the panic value raised when the offset index breaks
// its own invariants. It is never returned as an error.
type RangeInconsistency struct {
	Index  int
	Offset float64
	Prev   float64
}

func (e *RangeInconsistency) Error() string {
	return fmt.Sprintf("virtual: offset index not monotonic at %d (%v < %v)", e.Index, e.Offset, e.Prev)
}
