// Package physics provides the equations of motion of planar pendulum chains.
//
// [Chain] implements [dynamo.System] for an arbitrary number of links. Each
// evaluation assembles the dense coupling system A·ddθ = b ([Assemble]) and
// solves it with an LU decomposition ([Solver]). [Pendulum] and
// [DoublePendulum] are closed-form special cases kept as references.
//
// Chain also implements [dynamo.Hamiltonian], [dynamo.Framer] and
// [dynamo.Diagnoser]:
//
//	chain := physics.NewChain(params, physics.FormulationLagrangian)
//	e := chain.Energy(state)
//	frame := chain.Positions(state)
//
// # Formulations
//
// [FormulationLegacy] reproduces historical trajectories bit for bit but does
// not conserve energy for more than one link. [FormulationLagrangian] is the
// physically consistent form. Both agree for a single link.
package physics
