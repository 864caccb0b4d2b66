package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/hoopsim/internal/dynamo"
)

// Derived holds the quantities recomputed from the angular state.
type Derived struct {
	Speed       float64 // m/s
	Kinetic     float64 // J
	Potential   float64 // J, zero at the bottom of the hoop
	Total       float64 // J
	Centripetal float64 // m/s²
}

// Sample is an immutable copy of a MotionState for renderers and exporters.
type Sample struct {
	Mass    float64
	Radius  float64
	Gravity float64
	Theta   float64
	Omega   float64
	Derived
}

// MotionState is the angular state of one bead on a hoop of fixed radius.
// It is not safe for concurrent use.
type MotionState struct {
	mass    float64
	radius  float64
	gravity float64
	theta   float64
	omega   float64
	derived Derived
}

// NewMotionState creates a bead at angle theta0 (radians from the top) with
// angular velocity omega0.
func NewMotionState(mass, radius, gravity, theta0, omega0 float64) (*MotionState, error) {
	if err := checkPositive("mass", mass); err != nil {
		return nil, err
	}
	if err := checkPositive("radius", radius); err != nil {
		return nil, err
	}
	if err := checkGravity(gravity); err != nil {
		return nil, err
	}
	if !finite(theta0) || !finite(omega0) {
		return nil, fmt.Errorf("%w: initial state (%v, %v) not finite", ErrInvalidParameter, theta0, omega0)
	}

	m := &MotionState{
		mass:    mass,
		radius:  radius,
		gravity: gravity,
		theta:   theta0,
		omega:   omega0,
	}
	m.recompute()
	return m, nil
}

// Step advances the state by dt with semi-implicit Euler. The angle update
// must use the already updated omega.
func (m *MotionState) Step(dt float64) error {
	if err := checkPositive("dt", dt); err != nil {
		return err
	}

	tangential := m.gravity * math.Sin(m.theta)
	alpha := tangential / m.radius
	m.omega += alpha * dt
	m.theta += m.omega * dt

	m.recompute()
	return nil
}

// Reset overwrites the angular state. Derived quantities reflect the new
// state immediately.
func (m *MotionState) Reset(theta, omega float64) {
	m.theta = theta
	m.omega = omega
	m.recompute()
}

func (m *MotionState) SetMass(mass float64) error {
	if err := checkPositive("mass", mass); err != nil {
		return err
	}
	m.mass = mass
	m.recompute()
	return nil
}

func (m *MotionState) SetGravity(g float64) error {
	if err := checkGravity(g); err != nil {
		return err
	}
	m.gravity = g
	m.recompute()
	return nil
}

func (m *MotionState) Mass() float64    { return m.mass }
func (m *MotionState) Radius() float64  { return m.radius }
func (m *MotionState) Gravity() float64 { return m.gravity }
func (m *MotionState) Theta() float64   { return m.theta }
func (m *MotionState) Omega() float64   { return m.omega }
func (m *MotionState) Derived() Derived { return m.derived }

func (m *MotionState) Snapshot() Sample {
	return Sample{
		Mass:    m.mass,
		Radius:  m.radius,
		Gravity: m.gravity,
		Theta:   m.theta,
		Omega:   m.omega,
		Derived: m.derived,
	}
}

// Position returns the bead position with the hoop center at the origin.
func (m *MotionState) Position() Vec2 {
	return Vec2{
		X: m.radius * math.Sin(m.theta),
		Y: m.radius * math.Cos(m.theta),
	}
}

// Velocity returns the tangential velocity vector.
func (m *MotionState) Velocity() Vec2 {
	v := m.omega * m.radius
	return Vec2{
		X: v * math.Cos(m.theta),
		Y: -v * math.Sin(m.theta),
	}
}

// CentripetalDirection is the unit vector from the bead toward the center.
func (m *MotionState) CentripetalDirection() Vec2 {
	return m.Position().Scale(-1 / m.radius)
}

// CentripetalForce is the magnitude m·ω²·r of the net inward force required
// to hold the bead on the hoop.
func (m *MotionState) CentripetalForce() float64 {
	return m.mass * m.derived.Centripetal
}

func (m *MotionState) GravityForce() Vec2 {
	return Vec2{X: 0, Y: -m.mass * m.gravity}
}

func (m *MotionState) recompute() {
	speed := math.Abs(m.omega) * m.radius
	ke := 0.5 * m.mass * speed * speed
	pe := m.mass * m.gravity * m.radius * (1 + math.Cos(m.theta))
	m.derived = Derived{
		Speed:       speed,
		Kinetic:     ke,
		Potential:   pe,
		Total:       ke + pe,
		Centripetal: m.omega * m.omega * m.radius,
	}
}

func checkPositive(name string, v float64) error {
	if !finite(v) || v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func checkGravity(g float64) error {
	if !finite(g) || g < 0 {
		return fmt.Errorf("%w: gravity must be non-negative, got %v", ErrInvalidParameter, g)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var (
	_ dynamo.System      = (*MotionState)(nil)
	_ dynamo.Hamiltonian = (*MotionState)(nil)
)
