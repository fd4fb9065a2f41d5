package viz

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/autopark/internal/dynamo"
	"github.com/san-kum/autopark/internal/metrics"
	"github.com/san-kum/autopark/internal/park"
	"github.com/san-kum/autopark/internal/sim"
	"github.com/san-kum/autopark/internal/vehicle"
)

const (
	canvasCols      = 60
	canvasRows      = 18
	historyCapacity = 240
	gainStep        = 0.05
)

type TickMsg time.Time

// RunnerFactory builds a fresh simulated run. It is called on start and on
// every reset.
type RunnerFactory func() (*sim.Runner, error)

// history collects what the maneuver reports between frames.
type history struct {
	output      []float64
	errs        []float64
	last        park.TickRecord
	transitions []string
}

func (h *history) OnTick(rec park.TickRecord) {
	h.last = rec
	if rec.Found {
		return
	}
	h.output = appendCapped(h.output, float64(rec.Output))
	h.errs = appendCapped(h.errs, float64(rec.Error))
}

func (h *history) OnTransition(from, to park.State) {
	h.transitions = append(h.transitions, fmt.Sprintf("%s -> %s", from, to))
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[len(s)-historyCapacity:]
	}
	return s
}

// Model is the live view of one simulated parking maneuver. Every TickMsg
// advances the maneuver by StepsPerFrame units of work.
type Model struct {
	factory       RunnerFactory
	runner        *sim.Runner
	metrics       metrics.Set
	hist          *history
	canvas        *Canvas
	view          Viewport
	running       bool
	err           error
	stepsPerFrame int
	paramKeys     []string
	selected      int
	gains         map[string]float64
	showHelp      bool
	title         string
}

func NewModel(title string, factory RunnerFactory) (Model, error) {
	m := Model{
		factory:       factory,
		canvas:        NewCanvas(canvasCols, canvasRows),
		running:       true,
		stepsPerFrame: 2,
		title:         title,
	}
	if err := m.reset(); err != nil {
		return m, err
	}
	params := m.runner.Maneuver.Steering.GetParams()
	for k := range params {
		m.paramKeys = append(m.paramKeys, k)
	}
	sort.Strings(m.paramKeys)
	return m, nil
}

// reset rebuilds the run and reapplies any gains tuned so far.
func (m *Model) reset() error {
	r, err := m.factory()
	if err != nil {
		return err
	}
	for k, v := range m.gains {
		if err := r.Maneuver.Steering.SetParam(k, v); err != nil {
			return err
		}
	}
	m.runner = r
	m.hist = &history{}
	m.metrics = metrics.Default()
	r.Maneuver.AddObserver(m.hist)
	r.Maneuver.AddObserver(m.metrics)
	m.err = nil
	m.view = viewportFor(r.World.Options())
	m.draw()
	return nil
}

func viewportFor(opts sim.Options) Viewport {
	g := opts.Geometry
	depth := g.WallOffset + g.SlotDepth + 0.05
	v := Viewport{MinX: -0.2, MaxX: g.GapEnd() + 0.6, MinY: -0.15, MaxY: depth}
	if g.Side == vehicle.Right {
		v.MinY, v.MaxY = -depth, 0.15
	}
	return v
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the maneuver.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(gainStep)
		case "down", "j":
			m.adjustParam(-gainStep)
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, 64)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam nudges the selected gain. Gains start at zero, so the step
// is additive.
func (m *Model) adjustParam(delta float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	var tuner dynamo.Configurable = m.runner.Maneuver.Steering
	key := m.paramKeys[m.selected]
	val := math.Max(0, tuner.GetParams()[key]+delta)
	if err := tuner.SetParam(key, val); err != nil {
		m.err = err
		return
	}
	if m.gains == nil {
		m.gains = make(map[string]float64)
	}
	m.gains[key] = val
}

func (m *Model) step() {
	if m.err != nil || m.Done() {
		return
	}
	for i := 0; i < m.stepsPerFrame && !m.Done(); i++ {
		if err := m.runner.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
}

// Done reports whether the maneuver has finished.
func (m Model) Done() bool { return m.runner.Maneuver.State() == park.Done }

func (m Model) Err() error { return m.err }

func (m *Model) draw() {
	m.canvas.Clear()
	w := m.runner.World
	g := w.Options().Geometry
	s := 1.0
	if g.Side == vehicle.Right {
		s = -1
	}
	y0 := s * g.WallOffset
	y1 := s * (g.WallOffset + g.SlotDepth)
	m.view.Line(m.canvas, m.view.MinX, y0, g.GapStart, y0)
	m.view.Line(m.canvas, g.GapEnd(), y0, m.view.MaxX, y0)
	m.view.Line(m.canvas, g.GapStart, y0, g.GapStart, y1)
	m.view.Line(m.canvas, g.GapEnd(), y0, g.GapEnd(), y1)
	m.view.Line(m.canvas, g.GapStart, y1, g.GapEnd(), y1)

	for _, p := range w.Trace() {
		x, y := m.view.Project(m.canvas, p.X, p.Y)
		m.canvas.Set(x, y)
	}
	m.drawVehicle(w.Pose(), w.Options())
}

func (m *Model) drawVehicle(p sim.Pose, opts sim.Options) {
	hl, hw := opts.HalfLength, opts.HalfWidth
	c, sn := math.Cos(p.Theta), math.Sin(p.Theta)
	corner := func(lx, ly float64) (float64, float64) {
		return p.X + lx*c - ly*sn, p.Y + lx*sn + ly*c
	}
	pts := [][2]float64{{hl, hw}, {hl, -hw}, {-hl, -hw}, {-hl, hw}}
	for i := range pts {
		ax, ay := corner(pts[i][0], pts[i][1])
		j := (i + 1) % len(pts)
		bx, by := corner(pts[j][0], pts[j][1])
		m.view.Line(m.canvas, ax, ay, bx, by)
	}
	fx, fy := corner(hl*1.6, 0)
	m.view.Line(m.canvas, p.X, p.Y, fx, fy)
}

func (m Model) status() (string, string) {
	switch {
	case m.err != nil && errors.Is(m.err, sim.ErrNoSpace):
		return "NO SPACE", "error"
	case m.err != nil:
		return "ERROR", "error"
	case m.Done() && m.runner.World.Parked():
		return "PARKED", "ok"
	case m.Done():
		return "DONE (outside slot)", "error"
	case !m.running:
		return "PAUSED", "paused"
	}
	return strings.ToUpper(strings.ReplaceAll(m.runner.Maneuver.State().String(), "_", " ")), "running"
}

func (m Model) View() string {
	w := m.runner.World
	man := m.runner.Maneuver
	rec := m.hist.last

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.title)) + "\n")
	status, kind := m.status()
	s.WriteString(statusStyle(kind).Render(status) + "\n")
	if m.err != nil {
		s.WriteString(keyHint().Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n")

	if len(m.hist.output) > 1 {
		chart := asciigraph.Plot(m.hist.output, asciigraph.Height(5), asciigraph.Width(40),
			asciigraph.LowerBound(-200), asciigraph.UpperBound(200), asciigraph.Caption("mv"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle().Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", float64(w.Elapsed())/1000))
	row("Tick", fmt.Sprintf("%d (x%d)", man.Ticks(), m.stepsPerFrame))
	row("Raw", fmt.Sprintf("%d", rec.Raw))
	row("Filtered", fmt.Sprintf("%d", rec.Filtered))
	row("Error", fmt.Sprintf("%d", rec.Error))
	row("MV", fmt.Sprintf("%d (pd %d)", rec.Output, rec.Steering))
	left, right := w.Command()
	row("Motors", fmt.Sprintf("%d / %d", left, right))
	row("Stabilized", fmt.Sprintf("%v", man.Stabilized()))
	row("Reinits", fmt.Sprintf("%d", man.Steering.Reinits()))
	confirm := man.Params.ConfirmTicks
	if confirm > 0 {
		s.WriteString(labelStyle.Render("Gap") + ProgressBar(float64(man.GapTicks())/float64(confirm), 20) +
			valueStyle().Render(fmt.Sprintf(" %d/%d", man.GapTicks(), confirm)) + "\n")
	}

	s.WriteString("\nMETRICS\n")
	values := m.metrics.Values()
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		s.WriteString("  " + labelStyle.Render(k) + valueStyle().Render(fmt.Sprintf("%.3f", values[k])) + "\n")
	}

	s.WriteString("\nGAINS\n")
	gains := man.Steering.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-4s %.2f", k, gains[k])
		if i == m.selected {
			s.WriteString(activeParamStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	if n := len(m.hist.transitions); n > 0 {
		s.WriteString("\n" + keyHint().Render(m.hist.transitions[n-1]) + "\n")
	}
	s.WriteString(keyHint().Render("\nSP:Pause R:Reset Q:Quit ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsView)
	if m.showHelp {
		return `
  Space    pause / resume
  R        rebuild the run (tuned gains are kept)
  Q        quit
  Tab      select gain
  Up/K     raise gain
  Down/J   lower gain
  + / -    steps per frame
  T        cycle themes
  ?        toggle this help
` + "\n" + mainView
	}
	return mainView
}
