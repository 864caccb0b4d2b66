package physics_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hoopsim/internal/dynamo"
	"github.com/san-kum/hoopsim/internal/physics"
)

func mustBead(mass, radius, gravity, theta, omega float64) *physics.MotionState {
	m, err := physics.NewMotionState(mass, radius, gravity, theta, omega)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func maxDrift(m *physics.MotionState, dt float64, steps int) float64 {
	e0 := m.Derived().Total
	worst := 0.0
	for i := 0; i < steps; i++ {
		Expect(m.Step(dt)).To(Succeed())
		worst = math.Max(worst, math.Abs(m.Derived().Total-e0)/e0)
	}
	return worst
}

var _ = Describe("MotionState", func() {
	Describe("construction", func() {
		DescribeTable("rejects invalid parameters",
			func(mass, radius, gravity float64) {
				_, err := physics.NewMotionState(mass, radius, gravity, 0.5, 0)
				Expect(err).To(MatchError(physics.ErrInvalidParameter))
			},
			Entry("zero mass", 0.0, 2.0, 9.8),
			Entry("negative mass", -0.1, 2.0, 9.8),
			Entry("zero radius", 0.1, 0.0, 9.8),
			Entry("negative radius", 0.1, -2.0, 9.8),
			Entry("negative gravity", 0.1, 2.0, -1.0),
			Entry("NaN mass", math.NaN(), 2.0, 9.8),
			Entry("infinite radius", 0.1, math.Inf(1), 9.8),
		)

		It("reports invalid parameters as out of dynamo bounds", func() {
			_, err := physics.NewMotionState(0, 2.0, 9.8, 0.5, 0)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
			Expect(errors.Is(err, physics.ErrInvalidParameter)).To(BeTrue())
		})

		It("accepts zero gravity", func() {
			m := mustBead(0.1, 2.0, 0, 0.5, 1)
			Expect(m.Derived().Potential).To(BeZero())
		})

		It("computes derived quantities up front", func() {
			m := mustBead(0.2, 2.0, 9.8, math.Pi/3, 1.5)
			d := m.Derived()
			Expect(d.Speed).To(BeNumerically("~", 3.0, 1e-12))
			Expect(d.Kinetic).To(BeNumerically("~", 0.5*0.2*9.0, 1e-12))
			Expect(d.Potential).To(BeNumerically("~", 0.2*9.8*2.0*1.5, 1e-12))
			Expect(d.Total).To(BeNumerically("~", d.Kinetic+d.Potential, 1e-12))
			Expect(d.Centripetal).To(BeNumerically("~", 1.5*1.5*2.0, 1e-12))
		})

		It("reports speed as a magnitude", func() {
			m := mustBead(0.1, 2.0, 9.8, 0, -2)
			Expect(m.Derived().Speed).To(BeNumerically("~", 4.0, 1e-12))
		})
	})

	Describe("Step", func() {
		It("updates omega before theta", func() {
			m := mustBead(0.1, 2.0, 9.8, 0.5, 0.3)
			dt := 0.01
			omega := 0.3 + 9.8*math.Sin(0.5)/2.0*dt
			theta := 0.5 + omega*dt

			Expect(m.Step(dt)).To(Succeed())
			Expect(m.Omega()).To(Equal(omega))
			Expect(m.Theta()).To(Equal(theta))
		})

		DescribeTable("rejects non-positive dt and leaves state untouched",
			func(dt float64) {
				m := mustBead(0.1, 2.0, 9.8, 0.5, 0.3)
				Expect(m.Step(dt)).To(MatchError(physics.ErrInvalidParameter))
				Expect(m.Theta()).To(Equal(0.5))
				Expect(m.Omega()).To(Equal(0.3))
			},
			Entry("zero", 0.0),
			Entry("negative", -0.002),
			Entry("NaN", math.NaN()),
		)

		It("keeps the top at rest fixed for any dt", func() {
			for _, dt := range []float64{1e-4, 0.002, 1, 100} {
				m := mustBead(0.1, 2.0, 9.8, 0, 0)
				for i := 0; i < 100; i++ {
					Expect(m.Step(dt)).To(Succeed())
				}
				Expect(m.Theta()).To(BeZero())
				Expect(m.Omega()).To(BeZero())
			}
		})

		It("stays at the bottom up to floating point noise", func() {
			// sin(π) is not exactly zero in float64, so the bead drifts on
			// the order of 1e-16 rad.
			m := mustBead(0.1, 2.0, 9.8, math.Pi, 0)
			for i := 0; i < 1000; i++ {
				Expect(m.Step(0.002)).To(Succeed())
			}
			Expect(m.Theta()).To(BeNumerically("~", math.Pi, 1e-9))
			Expect(m.Omega()).To(BeNumerically("~", 0, 1e-9))
		})

		It("conserves energy within 1% releasing from the side", func() {
			theta0 := 1.57079
			m := mustBead(0.1, 2.0, 9.8, theta0, 0)
			e0 := 0.1 * 9.8 * 2.0 * (1 + math.Cos(theta0))
			Expect(m.Derived().Total).To(BeNumerically("~", e0, 1e-12))
			Expect(e0).To(BeNumerically("~", 1.96, 1e-4))

			crossedBottom := false
			for i := 0; i < 1000; i++ {
				Expect(m.Step(0.002)).To(Succeed())
				if m.Theta() > math.Pi {
					crossedBottom = true
				}
				Expect(math.Abs(m.Derived().Total-e0) / e0).To(BeNumerically("<", 0.01))
			}
			Expect(crossedBottom).To(BeTrue())
		})

		It("drifts less with a smaller dt", func() {
			coarse := maxDrift(mustBead(0.1, 2.0, 9.8, 1.0, 0), 0.01, 200)
			fine := maxDrift(mustBead(0.1, 2.0, 9.8, 1.0, 0), 0.001, 2000)
			finer := maxDrift(mustBead(0.1, 2.0, 9.8, 1.0, 0), 0.0001, 20000)
			Expect(fine).To(BeNumerically("<", coarse))
			Expect(finer).To(BeNumerically("<", fine))
		})

		It("leaves large-step drift observable without failing", func() {
			drift := maxDrift(mustBead(0.1, 2.0, 9.8, math.Pi/2, 0), 0.5, 50)
			Expect(drift).To(BeNumerically(">", 0.01))
		})

		It("stays on the hoop through full revolutions", func() {
			m := mustBead(0.1, 2.0, 9.8, 0, 6)
			for m.Theta() < 4*math.Pi {
				Expect(m.Step(0.002)).To(Succeed())
				p := m.Position()
				Expect(p.X*p.X + p.Y*p.Y).To(BeNumerically("~", 4.0, 1e-9))
			}
			Expect(math.Abs(m.Theta())).To(BeNumerically(">=", 2*math.Pi))
		})
	})

	Describe("Reset", func() {
		It("moves the bead and refreshes derived values immediately", func() {
			m := mustBead(0.1, 2.0, 9.8, 0.5, 0)
			m.Reset(2.5, -1.25)

			p := m.Position()
			Expect(p.X).To(Equal(2.0 * math.Sin(2.5)))
			Expect(p.Y).To(Equal(2.0 * math.Cos(2.5)))
			Expect(m.Derived().Potential).To(BeNumerically("~", 0.1*9.8*2.0*(1+math.Cos(2.5)), 1e-12))
			Expect(m.Derived().Speed).To(Equal(2.5))
		})

		It("does not wrap the angle", func() {
			m := mustBead(0.1, 2.0, 9.8, 0, 0)
			m.Reset(10*math.Pi+0.1, 0)
			Expect(m.Theta()).To(Equal(10*math.Pi + 0.1))
		})
	})

	Describe("vectors", func() {
		It("gives a tangential velocity", func() {
			m := mustBead(0.1, 2.0, 9.8, 0.7, 1.3)
			v := m.Velocity()
			Expect(v.X).To(BeNumerically("~", 1.3*2.0*math.Cos(0.7), 1e-12))
			Expect(v.Y).To(BeNumerically("~", -1.3*2.0*math.Sin(0.7), 1e-12))
			Expect(v.Dot(m.Position())).To(BeNumerically("~", 0, 1e-12))
			Expect(v.Len()).To(BeNumerically("~", m.Derived().Speed, 1e-12))
		})

		It("points the centripetal direction at the center", func() {
			m := mustBead(0.1, 2.0, 9.8, 2.1, 0)
			c := m.CentripetalDirection()
			Expect(c.Len()).To(BeNumerically("~", 1, 1e-12))
			sum := m.Position().Add(c.Scale(m.Radius()))
			Expect(sum.Len()).To(BeNumerically("~", 0, 1e-12))
		})

		It("reports forces", func() {
			m := mustBead(0.2, 2.0, 9.8, 0.3, 2)
			g := m.GravityForce()
			Expect(g.X).To(BeZero())
			Expect(g.Y).To(BeNumerically("~", -1.96, 1e-12))
			Expect(m.CentripetalForce()).To(BeNumerically("~", 0.2*4*2.0, 1e-12))
		})
	})

	Describe("parameters", func() {
		It("updates mass and gravity and recomputes energy", func() {
			m := mustBead(0.1, 2.0, 9.8, 1.0, 1.0)
			Expect(m.SetMass(0.3)).To(Succeed())
			Expect(m.SetGravity(1.62)).To(Succeed())
			Expect(m.Derived().Potential).To(BeNumerically("~", 0.3*1.62*2.0*(1+math.Cos(1.0)), 1e-12))
		})

		It("rejects invalid mass and gravity", func() {
			m := mustBead(0.1, 2.0, 9.8, 1.0, 1.0)
			Expect(m.SetMass(0)).To(MatchError(physics.ErrInvalidParameter))
			Expect(m.SetGravity(-9.8)).To(MatchError(physics.ErrInvalidParameter))
			Expect(m.Mass()).To(Equal(0.1))
			Expect(m.Gravity()).To(Equal(9.8))
		})
	})

	Describe("as a dynamo system", func() {
		It("matches the stepped equation of motion", func() {
			m := mustBead(0.1, 2.0, 9.8, 0.9, 0.4)
			dx := m.Derive(m.Vector(), 0)
			Expect(dx[0]).To(Equal(0.4))
			Expect(dx[1]).To(BeNumerically("~", 9.8*math.Sin(0.9)/2.0, 1e-12))
			Expect(m.Energy(m.Vector())).To(BeNumerically("~", m.Derived().Total, 1e-12))
		})
	})
})
