package storage

import (
	"math"

	"github.com/san-kum/hoopsim/internal/physics"
)

// Record is one body's state at one tick, flattened for export.
type Record struct {
	Time        float64 `json:"time"`
	Body        string  `json:"body"`
	Theta       float64 `json:"theta"`
	Omega       float64 `json:"omega"`
	Speed       float64 `json:"speed"`
	Kinetic     float64 `json:"kinetic"`
	Potential   float64 `json:"potential"`
	Total       float64 `json:"total"`
	Centripetal float64 `json:"centripetal"`
}

func NewRecord(t float64, name string, s physics.Sample) Record {
	return Record{
		Time:        t,
		Body:        name,
		Theta:       s.Theta,
		Omega:       s.Omega,
		Speed:       s.Speed,
		Kinetic:     s.Kinetic,
		Potential:   s.Potential,
		Total:       s.Total,
		Centripetal: s.Centripetal,
	}
}

// Decimal places written per field.
const (
	TimePrecision         = 3
	AnglePrecision        = 4
	AngularVelPrecision   = 4
	SpeedPrecision        = 4
	EnergyPrecision       = 6
	AccelerationPrecision = 4
)

// Header is the fixed first row of every records file.
var Header = []string{
	"time_s",
	"body",
	"theta_rad",
	"omega_rad_s",
	"speed_m_s",
	"kinetic_j",
	"potential_j",
	"total_j",
	"centripetal_m_s2",
}

// Rounded returns the record with every field rounded to its documented
// precision, half away from zero.
func (r Record) Rounded() Record {
	return Record{
		Time:        Round(r.Time, TimePrecision),
		Body:        r.Body,
		Theta:       Round(r.Theta, AnglePrecision),
		Omega:       Round(r.Omega, AngularVelPrecision),
		Speed:       Round(r.Speed, SpeedPrecision),
		Kinetic:     Round(r.Kinetic, EnergyPrecision),
		Potential:   Round(r.Potential, EnergyPrecision),
		Total:       Round(r.Total, EnergyPrecision),
		Centripetal: Round(r.Centripetal, AccelerationPrecision),
	}
}

func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ByBody groups records by body name, preserving first-seen order.
func ByBody(records []Record) ([]string, map[string][]Record) {
	order := make([]string, 0)
	groups := make(map[string][]Record)
	for _, r := range records {
		if _, ok := groups[r.Body]; !ok {
			order = append(order, r.Body)
		}
		groups[r.Body] = append(groups[r.Body], r)
	}
	return order, groups
}
