package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/autopark/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int   { return 2 }
func (s *simpleDynamics) ControlDim() int { return 0 }

// decay integrates dx/dt = -x.
type decay struct{}

func (d *decay) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

func (d *decay) StateDim() int   { return 1 }
func (d *decay) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	u := dynamo.Control{}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerLessAccurateThanRK4(t *testing.T) {
	dt := 0.1
	exact := math.Exp(-1.0)

	run := func(integ dynamo.Integrator) float64 {
		x := dynamo.State{1.0}
		for i := 0; i < 10; i++ {
			x = integ.Step(&decay{}, x, nil, float64(i)*dt, dt)
		}
		return math.Abs(x[0] - exact)
	}

	eulerErr := run(NewEuler())
	rk4Err := run(NewRK4())
	if eulerErr <= rk4Err {
		t.Errorf("expected euler error %.6f > rk4 error %.6f", eulerErr, rk4Err)
	}
	if eulerErr > 0.05 {
		t.Errorf("euler error too large: %.6f", eulerErr)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, err := New(name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if integ == nil {
				t.Fatal("expected integrator, got nil")
			}
		})
	}

	if _, err := New("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
