// Package experiment turns a config into a populated scene, runs it
// headless and compares integrators on the same initial conditions.
package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/hoopsim/internal/config"
	"github.com/san-kum/hoopsim/internal/dynamo"
	"github.com/san-kum/hoopsim/internal/metrics"
	"github.com/san-kum/hoopsim/internal/physics"
	"github.com/san-kum/hoopsim/internal/scene"
	"github.com/san-kum/hoopsim/internal/storage"
)

type Experiment struct {
	cfg   *config.Config
	scene *scene.Scene
	log   *slog.Logger
}

// New validates cfg and builds a halted scene holding every ball.
func New(cfg *config.Config, log *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	policy, err := scene.ParseEditPolicy(cfg.EditPolicy)
	if err != nil {
		return nil, err
	}
	sc, err := scene.New(
		scene.WithGravity(cfg.Gravity),
		scene.WithRadius(cfg.Radius),
		scene.WithEditPolicy(policy),
		scene.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	for _, b := range cfg.Balls {
		if err := sc.Add(b.Name, b.Mass, b.Theta, b.Omega); err != nil {
			return nil, err
		}
	}
	return &Experiment{cfg: cfg, scene: sc, log: log}, nil
}

func (e *Experiment) Scene() *scene.Scene { return e.scene }

// Metadata describes the scene as it stands, so gravity or mass edits made
// after New are reported. ID and Timestamp are left for the store to fill.
func (e *Experiment) Metadata() storage.RunMetadata {
	views := e.scene.Views()
	bodies := make([]storage.BodyMeta, len(views))
	for i, v := range views {
		bodies[i] = storage.BodyMeta{Name: v.Name, Mass: v.Sample.Mass, Theta: v.InitialTheta, Omega: v.InitialOmega}
	}
	return storage.RunMetadata{
		Preset:     e.cfg.Preset,
		Dt:         e.cfg.Dt,
		Duration:   e.cfg.Duration,
		Gravity:    e.scene.Gravity(),
		Radius:     e.scene.Radius(),
		EditPolicy: e.scene.Policy().String(),
		Bodies:     bodies,
	}
}

type Outcome struct {
	Meta    storage.RunMetadata
	Records []storage.Record
	Elapsed time.Duration
}

// RunOptions tune the headless loop.
type RunOptions struct {
	Hz       float64 // ticks per second, <= 0 for as fast as possible
	Parallel bool
}

// Run records the scene from its current state until the configured
// duration and summarizes each body.
func (e *Experiment) Run(ctx context.Context, opts RunOptions) (*Outcome, error) {
	sc := e.scene
	sc.StartRecording()
	sc.Start()
	defer func() {
		sc.Pause()
		sc.StopRecording()
	}()

	e.log.Info("running", "bodies", sc.Len(), "dt", e.cfg.Dt, "duration", e.cfg.Duration)
	start := time.Now()
	err := sc.Loop(ctx, scene.LoopConfig{
		Dt:           e.cfg.Dt,
		Hz:           opts.Hz,
		StepsPerTick: e.cfg.StepsPerFrame,
		Until:        e.cfg.Duration,
		Parallel:     opts.Parallel,
	})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	records := sc.Records()
	meta := e.Metadata()
	meta.Metrics, err = e.summarize(records)
	if err != nil {
		return nil, err
	}
	e.log.Info("run complete", "records", len(records), "elapsed", elapsed)
	return &Outcome{Meta: meta, Records: records, Elapsed: elapsed}, nil
}

// summarize replays each body's trajectory through the run metrics. Keys
// are "<body>.<metric>".
func (e *Experiment) summarize(records []storage.Record) (map[string]float64, error) {
	out := make(map[string]float64)
	order, groups := storage.ByBody(records)
	for _, name := range order {
		v, err := e.scene.Body(name)
		if err != nil {
			return nil, err
		}
		ms, err := physics.NewMotionState(v.Sample.Mass, v.Sample.Radius, v.Sample.Gravity, 0, 0)
		if err != nil {
			return nil, err
		}
		runMetrics := []dynamo.Metric{
			metrics.NewEnergy(ms),
			metrics.NewEnergyDrift(ms),
			metrics.NewPeakSpeed(v.Sample.Radius),
			metrics.NewRevolutions(),
		}
		for _, r := range groups[name] {
			x := dynamo.State{r.Theta, r.Omega}
			for _, m := range runMetrics {
				m.Observe(x, r.Time)
			}
		}
		for _, m := range runMetrics {
			out[name+"."+m.Name()] = m.Value()
		}
	}
	return out, nil
}
