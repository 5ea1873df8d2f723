package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tearline/internal/config"
	"github.com/san-kum/tearline/internal/cutter"
	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/storage"
	"github.com/san-kum/tearline/internal/world"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
	pointerStep     = 0.02 // meters per keypress
)

type TickMsg time.Time

// Model is the interactive view: one world, a braille canvas, and a
// keyboard-driven pointer standing in for the mouse.
type Model struct {
	cfg *config.Config
	w   *world.World
	rec *storage.Recorder

	canvas  *Canvas
	proj    cutter.Ortho
	pointer geom.Vec3
	pressed bool
	down    bool // edge: pressed this tick
	up      bool // edge: released this tick

	running  bool
	showHelp bool

	stretchHistory []float64
	err            error
}

// NewModel builds a world from cfg and wraps it for the terminal.
func NewModel(cfg *config.Config) Model {
	m := Model{
		cfg:     cfg,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		proj:    cutter.Ortho{Scale: geom.Vec2{X: 1000, Y: 1000}, Offset: geom.Vec2{Y: 300}},
		running: true,
	}
	m.rebuild()
	return m
}

// rebuild spawns a fresh world from the config.
func (m *Model) rebuild() {
	opts := world.DefaultOptions()
	opts.Tuning = m.cfg.Tuning()
	opts.Projector = m.proj
	w, err := world.New(opts)
	if err != nil {
		m.err = err
		return
	}

	root := geom.Vec3{X: m.cfg.Stem.RootX, Y: m.cfg.Stem.RootY}
	down := geom.Vec3{Y: -1}
	line := w.SpawnStem(root, down, m.cfg.Stem.Particles, m.cfg.Stem.Spacing)

	params := m.cfg.Follower.Params()
	every := m.cfg.Follower.Every
	if every < 1 {
		every = 1
	}
	for actor := every; actor < m.cfg.Stem.Particles; actor += every {
		at := root.Add(down.Scale(float64(actor) * m.cfg.Stem.Spacing))
		if _, err := w.SpawnFollower(line, actor, at, params); err != nil {
			m.err = err
			return
		}
	}

	rec := storage.NewRecorder(w.Time)
	w.Events().SubscribeFracture(rec)
	w.Events().SubscribeImpact(rec)
	w.Events().SubscribeCut(rec)

	m.w = w
	m.rec = rec
	m.pointer = root.Add(down.Scale(float64(m.cfg.Stem.Particles/2) * m.cfg.Stem.Spacing))
	m.pressed = false
	m.stretchHistory = m.stretchHistory[:0]
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			m.running = !m.running
		case "r":
			m.rebuild()
		case "?":
			m.showHelp = !m.showHelp
		case " ":
			if m.pressed {
				m.pressed = false
				m.up = true
			} else {
				m.pressed = true
				m.down = true
			}
		case "up", "k":
			m.pointer.Y += pointerStep
		case "down", "j":
			m.pointer.Y -= pointerStep
		case "left", "h":
			m.pointer.X -= pointerStep
		case "right", "l":
			m.pointer.X += pointerStep
		}
	case TickMsg:
		if m.running && m.err == nil {
			in := world.Pointer{
				Down:   m.down,
				Held:   m.pressed,
				Up:     m.up,
				World:  m.pointer,
				Screen: m.proj.Project(m.pointer),
			}
			m.w.Step(m.cfg.Dt, in)
			m.down, m.up = false, false
			m.sample()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// sample appends the tick's peak stretch for the side graph.
func (m *Model) sample() {
	peak := 0.0
	for _, f := range m.w.Followers() {
		if s := f.Stretch(); s > peak {
			peak = s
		}
	}
	m.stretchHistory = append(m.stretchHistory, peak)
	if len(m.stretchHistory) > historyCapacity {
		m.stretchHistory = m.stretchHistory[1:]
	}
}

// toCanvas maps world coordinates to braille sub-pixels. The visible box
// is one meter wide centered on the stem root, floor at the bottom.
func (m *Model) toCanvas(p geom.Vec3) (int, int) {
	x := (p.X - m.cfg.Stem.RootX + 0.5) * float64(canvasWidth*2)
	y := (1 - p.Y) * float64(canvasHeight*4)
	return int(x), int(y)
}

func (m *Model) draw() {
	m.canvas.Clear()

	// ground
	_, gy := m.toCanvas(geom.Vec3{Y: m.cfg.Stem.Ground})
	m.canvas.DrawLine(0, gy, canvasWidth*2-1, gy)

	sim := m.w.Solver()
	for _, l := range sim.Lines() {
		if !sim.LineReady(l) {
			continue
		}
		for _, el := range l.Elements() {
			pa, oka := sim.ParticlePosition(l, el.A)
			pb, okb := sim.ParticlePosition(l, el.B)
			if !oka || !okb {
				continue
			}
			ax, ay := m.toCanvas(pa)
			bx, by := m.toCanvas(pb)
			m.canvas.DrawLine(ax, ay, bx, by)
		}
	}

	for _, f := range m.w.Followers() {
		if f.Disabled() {
			continue
		}
		x, y := m.toCanvas(f.Position())
		m.canvas.Mark(x, y, markerFor(f.State()))
	}

	px, py := m.toCanvas(m.pointer)
	if m.pressed {
		m.canvas.Mark(px, py, '+')
	} else {
		m.canvas.Mark(px, py, '·')
	}
}

func markerFor(s dynamo.FollowerState) rune {
	switch s {
	case dynamo.RidingIdle:
		return '●'
	case dynamo.HeldAttached, dynamo.HeldDetached:
		return '◆'
	default:
		return '○'
	}
}

func (m Model) View() string {
	if m.err != nil {
		return warnStyle.Render("setup failed: "+m.err.Error()) + "\n"
	}
	m.draw()

	var s strings.Builder
	s.WriteString(titleStyle.Render("TEARLINE") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(statusStyle.Render(status) + "\n\n")

	if len(m.stretchHistory) > 1 {
		chart := asciigraph.Plot(m.stretchHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("stretch"))
		s.WriteString(chart + "\n\n")
	}

	s.WriteString(labelStyle.Render("time    ") + fmt.Sprintf("%.2fs", m.w.Time()) + "\n")
	s.WriteString(labelStyle.Render("pieces  ") + fmt.Sprintf("%d", len(m.w.Solver().Lines())) + "\n")
	riding, held, free := 0, 0, 0
	for _, f := range m.w.Followers() {
		switch f.State() {
		case dynamo.RidingIdle:
			riding++
		case dynamo.HeldAttached, dynamo.HeldDetached:
			held++
		case dynamo.Free:
			free++
		}
	}
	s.WriteString(labelStyle.Render("leaves  ") + fmt.Sprintf("%d riding  %d held  %d free", riding, held, free) + "\n")
	s.WriteString(labelStyle.Render("plucked ") + fmt.Sprintf("%d", m.rec.Count("fracture")) + "\n")
	s.WriteString(labelStyle.Render("cuts    ") + fmt.Sprintf("%d", m.rec.Count("cut")) + "\n")

	s.WriteString(helpStyle.Render("\narrows:move  space:press/release  p:pause  r:reset  ?:help  q:quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.canvas.String()),
		panelStyle.Render(s.String()))

	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Move the pointer onto a leaf and press space to grab it. Pull past
  the break distance and hold: the leaf tears off and falls. Press
  space away from any leaf, then move while pressed, to slice the
  stem where your path crosses it. Space again releases.
`
