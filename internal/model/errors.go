package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDoesNotBisect is returned when a split line does not cross the
	// target polygon at exactly two distinct points.
	ErrDoesNotBisect = errors.New("split line does not properly divide the facet")

	// ErrDegeneratePolygon is returned when an operation needs at least 3
	// distinct vertices.
	ErrDegeneratePolygon = errors.New("polygon has fewer than 3 distinct vertices")

	// ErrInvalidMeasurement is returned for negative or non-finite inputs.
	ErrInvalidMeasurement = errors.New("invalid measurement")

	// ErrUnknownPitchLabel is returned when a pitch label is not in the table.
	ErrUnknownPitchLabel = errors.New("unknown pitch label")
)

// SplitError describes why a split line was rejected. It unwraps to
// ErrDoesNotBisect.
type SplitError struct {
	Crossings int    // Distinct boundary crossings found
	Reason    string // Short diagnostic, not shown to end users
}

func (e *SplitError) Error() string {
	return ErrDoesNotBisect.Error()
}

func (e *SplitError) Unwrap() error {
	return ErrDoesNotBisect
}

// checkMeasurement rejects negative, NaN and infinite values.
func checkMeasurement(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidMeasurement, name)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative (got %g)", ErrInvalidMeasurement, name, v)
	}
	return nil
}
