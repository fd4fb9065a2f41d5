package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for plant integration.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// StepError wraps an integration failure with the simulated time it
// happened at.
type StepError struct {
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("t=%.4f: %v", e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// CheckDims reports ErrDimensionMismatch when x or u do not fit dyn.
func CheckDims(dyn System, x State, u Control) error {
	if len(x) != dyn.StateDim() {
		return fmt.Errorf("state has %d entries, want %d: %w", len(x), dyn.StateDim(), ErrDimensionMismatch)
	}
	if len(u) != dyn.ControlDim() {
		return fmt.Errorf("control has %d entries, want %d: %w", len(u), dyn.ControlDim(), ErrDimensionMismatch)
	}
	return nil
}
