package metrics

import (
	"math"

	"github.com/san-kum/hoopsim/internal/dynamo"
)

// PeakSpeed tracks the largest linear speed |ω|·r.
type PeakSpeed struct {
	radius float64
	peak   float64
}

func NewPeakSpeed(radius float64) *PeakSpeed {
	return &PeakSpeed{radius: radius}
}

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(x dynamo.State, t float64) {
	if len(x) < 2 {
		return
	}
	p.peak = math.Max(p.peak, math.Abs(x[1])*p.radius)
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }

// Revolutions counts complete turns around the hoop since the first
// observation. A swinging bead reports zero.
type Revolutions struct {
	start    float64
	farthest float64
	samples  int
}

func NewRevolutions() *Revolutions {
	return &Revolutions{}
}

func (r *Revolutions) Name() string { return "revolutions" }

func (r *Revolutions) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	if r.samples == 0 {
		r.start = x[0]
	}
	r.samples++
	r.farthest = math.Max(r.farthest, math.Abs(x[0]-r.start))
}

func (r *Revolutions) Value() float64 {
	return math.Floor(r.farthest / (2 * math.Pi))
}

func (r *Revolutions) Reset() {
	r.start = 0
	r.farthest = 0
	r.samples = 0
}
