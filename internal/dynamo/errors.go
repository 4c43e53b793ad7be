package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrSingular indicates the coupling matrix could not be factorized.
	ErrSingular = errors.New("dynamo: coupling matrix is singular")

	// ErrIllConditioned indicates the coupling matrix is close to singular and
	// the accelerations may be inaccurate.
	ErrIllConditioned = errors.New("dynamo: coupling matrix is ill-conditioned")
)

// SimulationError wraps an error with simulation context. State is the last
// valid state before the failure.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
