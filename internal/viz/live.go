package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hoopsim/internal/physics"
	"github.com/san-kum/hoopsim/internal/scene"
	"github.com/san-kum/hoopsim/internal/storage"
)

const (
	canvasWidth     = 48
	canvasHeight    = 24
	historyCapacity = 240
	trailCapacity   = 120

	thetaNudge   = 0.05
	omegaNudge   = 0.1
	gravityNudge = 0.5
	massNudge    = 0.01
	minMass      = 0.01

	// arrow length in meters per m/s and per m/s²
	velocityArrowScale = 0.15
	accelArrowScale    = 0.05
)

type TickMsg time.Time

// Options configures a live Model.
type Options struct {
	Dt            float64
	FPS           int
	StepsPerFrame int // physics steps per frame; 0 derives it from TickRate or Dt
	TickRate      int // physics steps per second; 0 means real time, 1/Dt
	Theme         string
	// Export persists recorded data and returns a description of where it
	// went. Nil disables the export key.
	Export func(records []storage.Record) (string, error)
}

type point struct{ x, y int }

// energyTrace holds recent kinetic, potential and total energy.
type energyTrace struct {
	kinetic, potential, total []float64
}

func (e *energyTrace) push(d physics.Derived) {
	e.kinetic = appendCapped(e.kinetic, d.Kinetic)
	e.potential = appendCapped(e.potential, d.Potential)
	e.total = appendCapped(e.total, d.Total)
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// Model is the Bubble Tea model for a scene. The scene is shared and
// mutated in place.
type Model struct {
	scene         *scene.Scene
	opts          Options
	fps           int
	stepsPerFrame int
	canvas        *Canvas
	theme         Theme
	style         styles
	selected      int
	showVectors   bool
	showHelp      bool
	trails        map[string][]point
	history       map[string]*energyTrace
	status        string
	err           error
}

func NewModel(sc *scene.Scene, opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = 50
	}
	steps := opts.StepsPerFrame
	if steps <= 0 {
		switch {
		case opts.TickRate > 0:
			steps = int(math.Round(float64(opts.TickRate) / float64(fps)))
		case opts.Dt > 0:
			steps = int(math.Round(1 / (opts.Dt * float64(fps))))
		}
	}
	if steps < 1 {
		steps = 1
	}
	theme := GetTheme(opts.Theme)
	return Model{
		scene:         sc,
		opts:          opts,
		fps:           fps,
		stepsPerFrame: steps,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		theme:         theme,
		style:         stylesFor(theme),
		showVectors:   true,
		trails:        make(map[string][]point),
		history:       make(map[string]*energyTrace),
	}
}

// StepsPerFrame is the number of physics steps taken per rendered frame.
func (m Model) StepsPerFrame() int { return m.stepsPerFrame }

// Selected returns the name of the selected bead, or "" for an empty scene.
func (m Model) Selected() string {
	names := m.scene.Names()
	if len(names) == 0 {
		return ""
	}
	return names[m.selected%len(names)]
}

// Status is the last message shown in the footer.
func (m Model) Status() string { return m.status }

// Err is the error that stopped the model, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if err := m.advance(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.Selected()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.scene.Toggle()
		m.status = ""
	case "r":
		m.scene.ResetAll()
		m.clearHistory()
		m.status = "reset"
	case "tab":
		if n := m.scene.Len(); n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case "up", "k":
		m.nudge(sel, thetaNudge, 0)
	case "down", "j":
		m.nudge(sel, -thetaNudge, 0)
	case "right":
		m.nudge(sel, 0, omegaNudge)
	case "left":
		m.nudge(sel, 0, -omegaNudge)
	case "G":
		m.report(m.scene.SetGravity(m.scene.Gravity() + gravityNudge))
	case "g":
		m.report(m.scene.SetGravity(math.Max(0, m.scene.Gravity()-gravityNudge)))
	case "M":
		m.adjustMass(sel, massNudge)
	case "m":
		m.adjustMass(sel, -massNudge)
	case "h":
		if v, err := m.scene.Body(sel); err == nil {
			m.report(m.scene.SetVisible(sel, !v.Visible))
		}
	case "v":
		m.showVectors = !m.showVectors
	case "c":
		if m.scene.Recording() {
			m.scene.StopRecording()
			m.status = fmt.Sprintf("recording stopped, %d rows", len(m.scene.Records()))
		} else {
			m.scene.StartRecording()
			m.status = "recording"
		}
	case "e":
		m.export()
	case "t":
		m.theme = nextTheme(m.theme.Name)
		m.style = stylesFor(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// advance runs one frame worth of physics and samples the energies.
func (m *Model) advance() error {
	if !m.scene.Running() {
		return nil
	}
	dt := m.opts.Dt
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.scene.Tick(dt); err != nil {
			return err
		}
	}
	for _, v := range m.scene.Views() {
		if !v.Visible {
			continue
		}
		tr, ok := m.history[v.Name]
		if !ok {
			tr = &energyTrace{}
			m.history[v.Name] = tr
		}
		tr.push(v.Sample.Derived)
	}
	return nil
}

func (m *Model) nudge(name string, dTheta, dOmega float64) {
	v, err := m.scene.Body(name)
	if err != nil {
		m.report(err)
		return
	}
	if err := m.scene.Reset(name, v.Sample.Theta+dTheta, v.Sample.Omega+dOmega); err != nil {
		m.report(err)
		return
	}
	delete(m.trails, name)
	m.status = fmt.Sprintf("%s θ=%.2f ω=%.2f", name, v.Sample.Theta+dTheta, v.Sample.Omega+dOmega)
}

func (m *Model) adjustMass(name string, delta float64) {
	v, err := m.scene.Body(name)
	if err != nil {
		m.report(err)
		return
	}
	m.report(m.scene.SetMass(name, math.Max(minMass, v.Sample.Mass+delta)))
}

func (m *Model) export() {
	if m.opts.Export == nil {
		m.status = "export unavailable"
		return
	}
	records := m.scene.Records()
	if len(records) == 0 {
		m.status = "nothing recorded, press c first"
		return
	}
	where, err := m.opts.Export(records)
	if err != nil {
		m.status = "export failed: " + err.Error()
		return
	}
	m.status = "exported " + where
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
		m.status = ""
	case errors.Is(err, scene.ErrRunning):
		m.status = "pause first"
	default:
		m.status = err.Error()
	}
}

func (m *Model) clearHistory() {
	m.trails = make(map[string][]point)
	m.history = make(map[string]*energyTrace)
}

// project maps hoop coordinates (meters, y up) to canvas dots.
func (m *Model) project(p physics.Vec2) (int, int) {
	cw, ch := m.canvas.Dots()
	scale := m.pixelsPerMeter()
	return cw/2 + int(math.Round(p.X*scale)), ch/2 - int(math.Round(p.Y*scale))
}

func (m *Model) pixelsPerMeter() float64 {
	cw, ch := m.canvas.Dots()
	r := m.scene.Radius()
	return (float64(min(cw, ch))/2 - 6) / r
}

func (m *Model) draw() {
	m.canvas.Clear()
	cw, ch := m.canvas.Dots()
	cx, cy := cw/2, ch/2
	hoop := int(math.Round(m.scene.Radius() * m.pixelsPerMeter()))
	m.canvas.DrawCircle(cx, cy, hoop)
	m.canvas.Set(cx, cy)

	for _, v := range m.scene.Views() {
		if !v.Visible {
			continue
		}
		bx, by := m.project(v.Position)

		trail := append(m.trails[v.Name], point{bx, by})
		if len(trail) > trailCapacity {
			trail = trail[1:]
		}
		m.trails[v.Name] = trail
		for _, pt := range trail {
			m.canvas.Set(pt.x, pt.y)
		}
		m.canvas.Disc(bx, by, 2)

		if !m.showVectors {
			continue
		}
		m.arrow(v.Position, v.Velocity.Scale(velocityArrowScale))
		m.arrow(v.Position, v.Inward.Scale(v.Sample.Centripetal*accelArrowScale))
		m.arrow(v.Position, physics.Vec2{Y: -v.Sample.Gravity * accelArrowScale})
	}
}

func (m *Model) arrow(from, d physics.Vec2) {
	x0, y0 := m.project(from)
	x1, y1 := m.project(from.Add(d))
	if x0 == x1 && y0 == y1 {
		return
	}
	m.canvas.DrawArrow(x0, y0, x1, y1)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := m.style

	var s strings.Builder
	s.WriteString(st.title.Render("BEAD ON A HOOP") + "\n")

	status := st.paused.Render("HALTED")
	if m.scene.Running() {
		status = st.running.Render("RUNNING")
	}
	if m.scene.Recording() {
		status += "  " + st.recording.Render(fmt.Sprintf("● REC %d", len(m.scene.Records())))
	}
	s.WriteString(status + "\n\n")

	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.3f s", m.scene.SimTime())) + "\n")
	s.WriteString(st.label.Render("Gravity") + st.value.Render(fmt.Sprintf("%.2f m/s²", m.scene.Gravity())) + "\n")
	s.WriteString(st.label.Render("Radius") + st.value.Render(fmt.Sprintf("%.2f m", m.scene.Radius())) + "\n")
	s.WriteString(st.label.Render("Edit") + st.value.Render(m.scene.Policy().String()) + "\n\n")

	sel := m.Selected()
	for _, v := range m.scene.Views() {
		d := v.Sample.Derived
		line := fmt.Sprintf("%-8s m=%.2f θ=%7.3f ω=%7.3f", v.Name, v.Sample.Mass, v.Sample.Theta, v.Sample.Omega)
		switch {
		case v.Name == sel:
			s.WriteString(st.selected.Render("> "+line) + "\n")
		case !v.Visible:
			s.WriteString("  " + st.hidden.Render(line) + "\n")
		default:
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
		if v.Name == sel {
			share := 0.0
			if d.Total > 0 {
				share = d.Kinetic / d.Total
			}
			s.WriteString(fmt.Sprintf("  KE %.4f  PE %.4f  E %.4f J\n", d.Kinetic, d.Potential, d.Total))
			s.WriteString(fmt.Sprintf("  v %.3f m/s  a_c %.3f m/s²\n", d.Speed, d.Centripetal))
			s.WriteString("  KE/E " + st.shareBar(share, 20) + "\n")
		}
	}

	if tr, ok := m.history[sel]; ok && len(tr.total) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{tr.kinetic, tr.potential, tr.total},
			asciigraph.Height(6),
			asciigraph.Width(32),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green),
			asciigraph.Caption("KE / PE / E (J)"),
		)
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + st.status.Render(m.status) + "\n")
	}
	s.WriteString(st.hint.Render("SP:Run R:Reset Tab:Select ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.String(), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space  run / pause            Tab   select bead
  ↑ ↓    θ ± 0.05 (halted)      ← →   ω ± 0.1 (halted)
  g G    gravity ∓ 0.5          m M   mass ∓ 0.01
  h      hide / show bead       v     toggle vectors
  c      record on / off        e     export recording
  r      reset all              t     cycle theme
  ?      this help              q     quit
`
