package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/hoopsim/internal/config"
	"github.com/san-kum/hoopsim/internal/dynamo"
	"github.com/san-kum/hoopsim/internal/integrators"
	"github.com/san-kum/hoopsim/internal/metrics"
	"github.com/san-kum/hoopsim/internal/physics"
)

// Comparison is one ball advanced by one integrator.
type Comparison struct {
	Integrator  string
	Body        string
	Steps       int
	FinalTheta  float64
	FinalOmega  float64
	EnergyDrift float64 // largest relative drift seen during the run
	PeakSpeed   float64
	Deviation   float64 // distance in (θ, ω) from the reference integrator's final state
	Failed      bool    // the state went non-finite
}

// ReferenceIntegrator is the integrator Deviation is measured against when
// it is part of a comparison; otherwise the first one named is used.
const ReferenceIntegrator = "rk4"

// Compare runs every ball in cfg under each named integrator concurrently.
// Results are ordered by integrator, then ball.
func Compare(ctx context.Context, cfg *config.Config, names []string) ([]Comparison, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(names) == 0 {
		names = integrators.Names()
	}

	var (
		runs []dynamo.Run
		out  []Comparison
	)
	for _, name := range names {
		for _, b := range cfg.Balls {
			integ, err := integrators.Get(name)
			if err != nil {
				return nil, err
			}
			ms, err := physics.NewMotionState(b.Mass, cfg.Radius, cfg.Gravity, b.Theta, b.Omega)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", b.Name, err)
			}
			sim := dynamo.New(ms, integ)
			sim.AddMetric(metrics.NewEnergyDrift(ms))
			sim.AddMetric(metrics.NewPeakSpeed(cfg.Radius))
			runs = append(runs, dynamo.Run{Sim: sim, X0: ms.Vector()})
			out = append(out, Comparison{Integrator: name, Body: b.Name})
		}
	}

	ref := names[0]
	for _, name := range names {
		if name == ReferenceIntegrator {
			ref = name
		}
	}

	results, err := dynamo.RunAll(ctx, runs, dynamo.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})
	if err != nil {
		return nil, err
	}

	finals := make(map[string]dynamo.State)
	for i, res := range results {
		final := res.States[len(res.States)-1]
		if out[i].Integrator == ref {
			finals[out[i].Body] = final
		}
		out[i].Steps = res.StepsTaken
		out[i].FinalTheta = final[0]
		out[i].FinalOmega = final[1]
		out[i].EnergyDrift = res.Metrics["energy_drift"]
		out[i].PeakSpeed = res.Metrics["peak_speed"]
		out[i].Failed = len(res.Errors) > 0
	}
	for i, res := range results {
		final := res.States[len(res.States)-1]
		out[i].Deviation = final.Sub(finals[out[i].Body]).Norm()
	}
	return out, nil
}
