package physics

import (
	"math"

	"github.com/san-kum/hoopsim/internal/dynamo"
)

// Vector returns the current state as [θ, ω].
func (m *MotionState) Vector() dynamo.State {
	return dynamo.State{m.theta, m.omega}
}

func (m *MotionState) StateDim() int {
	return 2
}

// Derive evaluates the equation of motion for x = [θ, ω] using the bead's
// parameters. The receiver's own state is not read.
func (m *MotionState) Derive(x dynamo.State, t float64) dynamo.State {
	alpha := m.gravity * math.Sin(x[0]) / m.radius
	return dynamo.State{x[1], alpha}
}

func (m *MotionState) Energy(x dynamo.State) float64 {
	v := m.radius * x[1]
	ke := 0.5 * m.mass * v * v
	pe := m.mass * m.gravity * m.radius * (1 + math.Cos(x[0]))
	return ke + pe
}
