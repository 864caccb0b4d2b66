// Package physics models a bead constrained to a vertical circular hoop.
//
// The bead is driven only by the tangential component of gravity, giving the
// angular equation of motion
//
//	α = (g/r)·sin(θ)
//
// where θ is measured clockwise from the top of the hoop. [MotionState] owns
// one bead's angular state and advances it with semi-implicit (symplectic)
// Euler: angular velocity is updated first and the new velocity is used to
// update the angle. Derived quantities are recomputed after every mutation
// and are never authoritative.
//
// # Energy
//
// Potential energy is measured from the bottom of the hoop:
//
//	PE = m·g·r·(1 + cos θ)
//
// Total energy is conserved by the continuous dynamics. The discrete update
// drifts by an amount that shrinks with dt; large steps drift visibly and
// extreme dt or gravity can grow ω without bound. Neither is treated as an
// error.
//
// MotionState also implements [dynamo.System] and [dynamo.Hamiltonian] so
// the same equation can be handed to any [dynamo.Integrator] for comparison.
package physics
