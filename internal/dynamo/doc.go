// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the interfaces shared by the hoop model and the
// numerical steppers:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Simulator]: orchestrates fixed-step simulation runs
//
// # Example
//
//	bead, _ := physics.NewMotionState(0.1, 2.0, 9.8, 0.5, 0)
//	sim := dynamo.New(bead, integrators.NewRK4())
//	result, _ := sim.Run(ctx, bead.Vector(), cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Use [RunAll] to execute several
// independent simulators concurrently.
package dynamo
