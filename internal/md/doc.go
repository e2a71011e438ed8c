// Package md provides core primitives for classical molecular dynamics
// in a closed box.
//
// The package defines the fundamental types for particle simulation:
//
//   - [Vec3]: three-component vector with value semantics
//   - [System]: particle state (positions, velocities, forces, masses)
//   - [LennardJones]: truncated 12-6 pair potential
//   - [Box]: reflecting boundary centered at the origin
//   - [VelocityVerlet]: symplectic integrator and run orchestrator
//
// # Example
//
//	field := md.LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
//	box := md.Cube(5)
//	sys := md.RandomSystem(10, box, 2, 2, rng)
//	vv := md.NewVelocityVerlet(0.005, field, box)
//	result, _ := vv.Run(ctx, sys, 500)
//
// # Thread Safety
//
// VelocityVerlet instances are NOT thread-safe. For independent replicas
// across seeds, use the [Ensemble] type which safely manages multiple runs.
package md
