package viz

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mdsim/internal/md"
)

const (
	liveWidth       = 60
	liveHeight      = 24
	historyCapacity = 600
)

// Snapshot stores positions at a specific time for replay.
type Snapshot struct {
	Pos    []md.Vec3
	Time   float64
	Energy float64
}

var planeNames = []string{"xy", "xz", "yz"}

type TickMsg time.Time

// Model drives a live simulation view: the integrator advances a few
// steps per frame while the canvas shows the particles in the box.
type Model struct {
	sys     *md.System
	vv      *md.VelocityVerlet
	initial *md.System
	name    string

	t        float64
	steps    int
	wallHits int
	e0       float64

	canvas *Canvas
	camera *Camera
	use3D  bool
	plane  int

	running      bool
	showHelp     bool
	stepsPerTick int

	energyHistory []float64
	speedHistory  []float64
	history       []Snapshot
	playHead      int

	recording bool
	frames    []*image.Paletted
}

// NewModel primes the forces and prepares the visualization state.
func NewModel(sys *md.System, vv *md.VelocityVerlet, name string) Model {
	vv.ComputeForces(sys)
	return Model{
		sys:           sys,
		vv:            vv,
		initial:       sys.Clone(),
		name:          name,
		e0:            sys.TotalEnergy(),
		canvas:        NewCanvas(liveWidth, liveHeight),
		camera:        NewCamera(),
		running:       true,
		stepsPerTick:  1,
		energyHistory: make([]float64, 0, historyCapacity),
		speedHistory:  make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "p", "tab":
			m.plane = (m.plane + 1) % len(planeNames)
		case "3":
			m.use3D = !m.use3D
		case "up", "k":
			m.vv.Dt *= 1.05
		case "down", "j":
			m.vv.Dt *= 0.95
		case ".":
			if m.stepsPerTick < 32 {
				m.stepsPerTick *= 2
			}
		case ",":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "g":
			if m.recording {
				SaveGIF(m.frames, "simulation.gif")
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.stepsPerTick; i++ {
					m.step()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, Rasterize(m.canvas))
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step advances the simulation by one timestep.
func (m *Model) step() {
	m.wallHits += m.vv.Step(m.sys)
	m.steps++
	m.t += m.vv.Dt

	energy := m.sys.TotalEnergy()
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	m.speedHistory = append(m.speedHistory, m.sys.MaxSpeed())
	if len(m.speedHistory) > historyCapacity {
		m.speedHistory = m.speedHistory[1:]
	}

	snap := Snapshot{Pos: clonePos(m.sys.Pos), Time: m.t, Energy: energy}
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) > 0 {
			m.playHead = len(m.history) - 1
			m.running = false
		} else {
			return
		}
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial state.
func (m *Model) reset() {
	m.sys = m.initial.Clone()
	m.vv.ComputeForces(m.sys)
	m.e0 = m.sys.TotalEnergy()
	m.t = 0
	m.steps = 0
	m.wallHits = 0
	m.energyHistory = m.energyHistory[:0]
	m.speedHistory = m.speedHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
}

func clonePos(pos []md.Vec3) []md.Vec3 {
	c := make([]md.Vec3, len(pos))
	copy(c, pos)
	return c
}

// draw renders the current positions onto the canvas.
func (m *Model) draw() {
	pos := m.sys.Pos
	if m.playHead >= 0 && m.playHead < len(m.history) {
		pos = m.history[m.playHead].Pos
	}

	m.canvas.Clear()
	if m.use3D {
		wf := BoxWireframe(m.vv.Box)
		wf.AddParticles(pos, m.vv.Box, 1)
		// slow rotate unless user is steering the camera
		if m.camera.RotX == 0 && m.camera.RotZ == 0 {
			m.camera.RotY += 0.005
		}
		Render3D(m.canvas, wf, m.camera)
		return
	}
	drawFrame2D(m.canvas, pos, m.vv.Box, m.plane)
}

func planeCoords(p md.Vec3, box md.Box, plane int) (float64, float64, float64, float64) {
	switch plane {
	case 1:
		return p.X, p.Z, box.Half.X, box.Half.Z
	case 2:
		return p.Y, p.Z, box.Half.Y, box.Half.Z
	default:
		return p.X, p.Y, box.Half.X, box.Half.Y
	}
}

// drawFrame2D projects positions onto the chosen plane with the box
// outline around them.
func drawFrame2D(c *Canvas, pos []md.Vec3, box md.Box, plane int) {
	cw, ch := c.Width*2, c.Height*4
	x0, y0, x1, y1 := 1, 1, cw-2, ch-2
	c.DrawRect(x0, y0, x1, y1)

	spanX, spanY := float64(x1-x0), float64(y1-y0)
	for _, p := range pos {
		u, v, hu, hv := planeCoords(p, box, plane)
		px := x0 + int((u+hu)/(2*hu)*spanX)
		py := y0 + int(spanY-(v+hv)/(2*hv)*spanY)
		c.FillCircle(px, py, 1)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	headerStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true).MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Text)
	canvasStyle := lipgloss.NewStyle().Padding(1, 2)
	statsStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(CurrentTheme.Muted).
		Padding(1, 2).
		Width(44)
	graphStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Padding(1, 0)

	t, energy := m.t, 0.0
	if len(m.energyHistory) > 0 {
		energy = m.energyHistory[len(m.energyHistory)-1]
	}

	status := StatusRunning.Render("RUNNING")
	if m.playHead != -1 {
		offset := 0.0
		if len(m.history) > 0 {
			snap := m.history[m.playHead]
			t, energy = snap.Time, snap.Energy
			offset = snap.Time - m.history[len(m.history)-1].Time
		}
		status = StatusPaused.Render(fmt.Sprintf("REPLAY (%.1f)", offset))
	} else if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += "  " + StatusRecording.Render("● REC")
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("total energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	drift := 0.0
	if m.e0 != 0 {
		drift = math.Abs(energy-m.e0) / math.Abs(m.e0)
	}
	view := planeNames[m.plane]
	if m.use3D {
		view = "3d"
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", t)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f", energy)) + "\n")
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e", drift)) + "\n")
	s.WriteString(labelStyle.Render("Temperature") + valueStyle.Render(fmt.Sprintf("%.4f", m.sys.Temperature())) + "\n")
	s.WriteString(labelStyle.Render("Wall hits") + valueStyle.Render(fmt.Sprintf("%d", m.wallHits)) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", m.sys.N())) + "\n")
	s.WriteString(labelStyle.Render("Timestep") + valueStyle.Render(fmt.Sprintf("%.4f", m.vv.Dt)) + "\n")
	s.WriteString(labelStyle.Render("Steps/frame") + valueStyle.Render(fmt.Sprintf("%d", m.stepsPerTick)) + "\n")
	s.WriteString(labelStyle.Render("View") + valueStyle.Render(view) + "\n")

	if len(m.speedHistory) > 1 {
		s.WriteString("\n" + MetricLabel.Render("max speed") + "\n")
		s.WriteString(SparklineChart(m.speedHistory, 30) + "\n")
	}

	s.WriteString("\n" + Separator(30) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reset Q:Quit\nP:Plane 3:3D T:Theme G:Record\n[ ]:Time-Travel ↑↓:Timestep ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  P / Tab  - Cycle projection plane   ║
║  3        - Toggle 3D box view       ║
║  X/Y/Z    - Rotate camera (3D)       ║
║  +/-      - Zoom camera (3D)         ║
║  Up/K     - Increase timestep (+5%)  ║
║  Down/J   - Decrease timestep (-5%)  ║
║  , / .    - Halve/double step rate   ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// RunLive starts the live simulation view.
func RunLive(sys *md.System, vv *md.VelocityVerlet, name string) error {
	_, err := tea.NewProgram(NewModel(sys, vv, name), tea.WithAltScreen()).Run()
	return err
}
