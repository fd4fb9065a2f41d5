// Package dynamo provides the numerical primitives behind the vehicle
// simulator.
//
// The package defines the interfaces shared by the plant models and the
// integrators:
//
//   - [State]: vector representing plant state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [Configurable]: parameters adjustable during a run
//
// # Example
//
//	dyn := models.NewDiffDrive()
//	integ := integrators.NewRK4()
//	x = integ.Step(dyn, x, dynamo.Control{300, 300}, t, 0.005)
package dynamo
