package dynamo

import (
	"errors"
	"math"
	"testing"
)

type constSystem struct{}

func (constSystem) Derive(x State, u Control, t float64) State { return State{1} }
func (constSystem) StateDim() int                              { return 1 }
func (constSystem) ControlDim() int                            { return 2 }

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"finite", State{1, 2, 3}, true},
		{"empty", State{}, true},
		{"nan", State{1, math.NaN()}, false},
		{"inf", State{math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := State{1, 2}
	c := s.Clone()
	c[0] = 5
	if s[0] != 1 {
		t.Errorf("expected original untouched, got %f", s[0])
	}
}

func TestStateSubNorm(t *testing.T) {
	d := State{4, 6}.Sub(State{1, 2})
	if d.Norm() != 5 {
		t.Errorf("expected norm 5, got %f", d.Norm())
	}
}

func TestCheckDims(t *testing.T) {
	if err := CheckDims(constSystem{}, State{0}, Control{0, 0}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	err := CheckDims(constSystem{}, State{0, 0}, Control{0, 0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	err = CheckDims(constSystem{}, State{0}, Control{0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	err := &StepError{Time: 1.5, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected StepError to unwrap to ErrInvalidState")
	}
	if err.Error() != "t=1.5000: dynamo: invalid state (NaN or Inf detected)" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
