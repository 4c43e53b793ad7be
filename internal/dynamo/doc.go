// Package dynamo provides core simulation primitives for N-link pendulum chains.
//
// The package defines the fundamental types shared by every other package:
//
//   - [State]: angles and angular velocities, with [AddStates] and [ScaleState]
//   - [Params]: per-link masses and lengths plus gravity
//   - [System]: interface for the state derivative dX/dt = f(X)
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Observer]: receives a [Snapshot] at every cadence boundary
//
// # Example
//
//	params, _ := dynamo.NewParams([]float64{1, 1}, []float64{1, 1}, dynamo.StandardGravity)
//	chain := physics.NewChain(params, physics.FormulationLegacy)
//	s := sim.New(chain, integrators.NewRK4())
//	result, _ := s.Run(ctx, x0, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Systems and integrators keep scratch buffers and are NOT thread-safe. For
// parallel runs use sim.Ensemble, which builds one of each per run.
package dynamo
