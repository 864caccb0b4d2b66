package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hoopsim/internal/physics"
	"github.com/san-kum/hoopsim/internal/storage"
)

var (
	ErrRunning       = errors.New("scene: edit not allowed while running")
	ErrUnknownBody   = errors.New("scene: unknown body")
	ErrDuplicateBody = errors.New("scene: duplicate body name")
	ErrHalted        = errors.New("scene: halted before reaching the end time")
)

// EditPolicy selects when mass and gravity may change.
type EditPolicy int

const (
	// EditFree allows mass and gravity changes while running.
	EditFree EditPolicy = iota
	// EditHalted allows every edit only while halted.
	EditHalted
)

func (p EditPolicy) String() string {
	switch p {
	case EditFree:
		return "free"
	case EditHalted:
		return "halted"
	default:
		return fmt.Sprintf("EditPolicy(%d)", int(p))
	}
}

// ParseEditPolicy accepts "free" or "halted".
func ParseEditPolicy(s string) (EditPolicy, error) {
	switch s {
	case "free", "":
		return EditFree, nil
	case "halted":
		return EditHalted, nil
	default:
		return 0, fmt.Errorf("unknown edit policy: %s", s)
	}
}

type body struct {
	name    string
	state   *physics.MotionState
	visible bool
	theta0  float64
	omega0  float64
}

// View is a read-only snapshot of one body for renderers.
type View struct {
	Name             string
	Visible          bool
	Sample           physics.Sample
	Position         physics.Vec2
	Velocity         physics.Vec2
	Inward           physics.Vec2 // unit vector toward the center
	Weight           physics.Vec2
	CentripetalForce float64
	// restored by ResetAll
	InitialTheta float64
	InitialOmega float64
}

type Scene struct {
	bodies    []*body
	index     map[string]*body
	gravity   float64
	radius    float64
	policy    EditPolicy
	running   bool
	simTime   float64
	recording bool
	records   []storage.Record
	log       *slog.Logger
}

type Option func(*Scene)

func WithGravity(g float64) Option       { return func(s *Scene) { s.gravity = g } }
func WithRadius(r float64) Option        { return func(s *Scene) { s.radius = r } }
func WithEditPolicy(p EditPolicy) Option { return func(s *Scene) { s.policy = p } }
func WithLogger(l *slog.Logger) Option   { return func(s *Scene) { s.log = l } }

func New(opts ...Option) (*Scene, error) {
	s := &Scene{
		index:   make(map[string]*body),
		gravity: 9.8,
		radius:  2.0,
		policy:  EditFree,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := checkGravity(s.gravity); err != nil {
		return nil, err
	}
	if !(s.radius > 0) || math.IsInf(s.radius, 0) {
		return nil, fmt.Errorf("%w: radius must be positive, got %v", physics.ErrInvalidParameter, s.radius)
	}
	return s, nil
}

// Add places a new bead on the hoop using the scene's radius and gravity.
func (s *Scene) Add(name string, mass, theta, omega float64) error {
	if _, ok := s.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBody, name)
	}
	st, err := physics.NewMotionState(mass, s.radius, s.gravity, theta, omega)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	b := &body{name: name, state: st, visible: true, theta0: theta, omega0: omega}
	s.bodies = append(s.bodies, b)
	s.index[name] = b
	s.log.Debug("body added", "name", name, "mass", mass, "theta", theta, "omega", omega)
	return nil
}

func (s *Scene) Len() int           { return len(s.bodies) }
func (s *Scene) Gravity() float64   { return s.gravity }
func (s *Scene) Radius() float64    { return s.radius }
func (s *Scene) Policy() EditPolicy { return s.policy }
func (s *Scene) Running() bool      { return s.running }
func (s *Scene) SimTime() float64   { return s.simTime }
func (s *Scene) Recording() bool    { return s.recording }

// Names returns body names in insertion order.
func (s *Scene) Names() []string {
	names := make([]string, len(s.bodies))
	for i, b := range s.bodies {
		names[i] = b.name
	}
	return names
}

func (s *Scene) Views() []View {
	views := make([]View, len(s.bodies))
	for i, b := range s.bodies {
		views[i] = b.view()
	}
	return views
}

func (s *Scene) Body(name string) (View, error) {
	b, err := s.lookup(name)
	if err != nil {
		return View{}, err
	}
	return b.view(), nil
}

func (s *Scene) Start() {
	s.running = true
	s.log.Debug("scene started", "t", s.simTime)
}

func (s *Scene) Pause() {
	s.running = false
	s.log.Debug("scene paused", "t", s.simTime)
}

func (s *Scene) Toggle() {
	if s.running {
		s.Pause()
	} else {
		s.Start()
	}
}

// SetGravity broadcasts g to every body so all of them see the same value on
// the next tick.
func (s *Scene) SetGravity(g float64) error {
	if s.running && s.policy == EditHalted {
		return ErrRunning
	}
	if err := checkGravity(g); err != nil {
		return err
	}
	for _, b := range s.bodies {
		if err := b.state.SetGravity(g); err != nil {
			return fmt.Errorf("gravity for %s: %w", b.name, err)
		}
	}
	s.gravity = g
	s.log.Debug("gravity set", "g", g)
	return nil
}

func (s *Scene) SetMass(name string, mass float64) error {
	if s.running && s.policy == EditHalted {
		return ErrRunning
	}
	b, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := b.state.SetMass(mass); err != nil {
		return fmt.Errorf("mass for %s: %w", name, err)
	}
	s.log.Debug("mass set", "name", name, "mass", mass)
	return nil
}

// Reset places a body at a new angle and angular velocity. The values also
// become the body's initial condition for ResetAll.
func (s *Scene) Reset(name string, theta, omega float64) error {
	if s.running {
		return ErrRunning
	}
	b, err := s.lookup(name)
	if err != nil {
		return err
	}
	b.state.Reset(theta, omega)
	b.theta0, b.omega0 = theta, omega
	s.log.Debug("body reset", "name", name, "theta", theta, "omega", omega)
	return nil
}

// ResetAll halts the scene, returns every body to its initial condition and
// clears the clock and captured records.
func (s *Scene) ResetAll() {
	s.running = false
	for _, b := range s.bodies {
		b.state.Reset(b.theta0, b.omega0)
	}
	s.simTime = 0
	s.records = s.records[:0]
	s.log.Debug("scene reset")
}

// SetVisible hides or shows a body. Hidden bodies are neither stepped nor
// recorded.
func (s *Scene) SetVisible(name string, visible bool) error {
	b, err := s.lookup(name)
	if err != nil {
		return err
	}
	b.visible = visible
	return nil
}

// StartRecording discards earlier records and begins capturing one record
// per visible body per tick.
func (s *Scene) StartRecording() {
	s.recording = true
	s.records = s.records[:0]
}

func (s *Scene) StopRecording() {
	s.recording = false
}

func (s *Scene) Records() []storage.Record {
	out := make([]storage.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Tick advances every visible body by dt once. A halted scene is left
// untouched.
func (s *Scene) Tick(dt float64) error {
	if !s.running {
		return nil
	}
	for _, b := range s.bodies {
		if !b.visible {
			continue
		}
		if err := b.state.Step(dt); err != nil {
			return fmt.Errorf("step %s: %w", b.name, err)
		}
	}
	s.afterTick(dt)
	return nil
}

// TickParallel is Tick with each body stepped on its own goroutine. A body's
// step touches only that body's fields.
func (s *Scene) TickParallel(ctx context.Context, dt float64) error {
	if !s.running {
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	for _, b := range s.bodies {
		if !b.visible {
			continue
		}
		b := b
		g.Go(func() error {
			if err := b.state.Step(dt); err != nil {
				return fmt.Errorf("step %s: %w", b.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.afterTick(dt)
	return nil
}

func (s *Scene) afterTick(dt float64) {
	s.simTime += dt
	if !s.recording {
		return
	}
	for _, b := range s.bodies {
		if b.visible {
			s.records = append(s.records, storage.NewRecord(s.simTime, b.name, b.state.Snapshot()))
		}
	}
}

func (s *Scene) lookup(name string) (*body, error) {
	b, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, name)
	}
	return b, nil
}

func (b *body) view() View {
	return View{
		Name:             b.name,
		Visible:          b.visible,
		Sample:           b.state.Snapshot(),
		Position:         b.state.Position(),
		Velocity:         b.state.Velocity(),
		Inward:           b.state.CentripetalDirection(),
		Weight:           b.state.GravityForce(),
		CentripetalForce: b.state.CentripetalForce(),
		InitialTheta:     b.theta0,
		InitialOmega:     b.omega0,
	}
}

func checkGravity(g float64) error {
	if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
		return fmt.Errorf("%w: gravity must be non-negative, got %v", physics.ErrInvalidParameter, g)
	}
	return nil
}
