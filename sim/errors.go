package sim

import (
	"errors"
	"fmt"
)

// ErrDegenerateStream is returned when mixture properties are requested for a stream
// carrying no mass. Callers must never reach it in a well-formed run.
var ErrDegenerateStream = errors.New("degenerate stream: total mass flow is zero")

// ConfigurationRangeError reports a lookup (grade, diameter, rating) that falls outside
// the populated range of a table. It is fatal to the run that triggered it.
type ConfigurationRangeError struct {
	Table string  // table or lookup name, e.g. "pipes" or "pump efficiency"
	Axis  string  // "grade", "diameter", "rating"
	Value float64 // the offending input before discretization
	Index int     // the computed index
	Min   int     // inclusive
	Max   int     // inclusive
}

func (e *ConfigurationRangeError) Error() string {
	return fmt.Sprintf("%s: %s %g resolves to index %d, valid range [%d, %d]",
		e.Table, e.Axis, e.Value, e.Index, e.Min, e.Max)
}

// PhysicallyInvalidStateError reports a stage transform that would produce a negative
// component flow or a negative waste quantity.
type PhysicallyInvalidStateError struct {
	Stage     Stage
	Input     Stream
	Component string
	Value     float64
}

func (e *PhysicallyInvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s would become %g (input %s)", e.Stage, e.Component, e.Value, e.Input)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationRangeError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationRangeError
	return errors.As(err, &target)
}

// IsPhysicallyInvalid reports whether err is (or wraps) a PhysicallyInvalidStateError.
func IsPhysicallyInvalid(err error) bool {
	var target *PhysicallyInvalidStateError
	return errors.As(err, &target)
}
