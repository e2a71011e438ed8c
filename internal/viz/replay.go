package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mdsim/internal/md"
)

// ReplayModel steps through a stored trajectory without re-integrating.
type ReplayModel struct {
	frames [][]md.Vec3
	times  []float64
	box    md.Box
	name   string

	idx     int
	playing bool

	canvas *Canvas
	camera *Camera
	use3D  bool
	plane  int
}

func NewReplayModel(frames [][]md.Vec3, times []float64, box md.Box, name string) ReplayModel {
	return ReplayModel{
		frames:  frames,
		times:   times,
		box:     box,
		name:    name,
		playing: true,
		canvas:  NewCanvas(liveWidth, liveHeight),
		camera:  NewCamera(),
	}
}

func (m ReplayModel) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.idx = 0
		case "[":
			m.playing = false
			if m.idx > 0 {
				m.idx--
			}
		case "]":
			m.playing = false
			if m.idx < len(m.frames)-1 {
				m.idx++
			}
		case "p", "tab":
			m.plane = (m.plane + 1) % len(planeNames)
		case "3":
			m.use3D = !m.use3D
		case "t":
			NextTheme()
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
		if m.playing && len(m.frames) > 0 {
			m.idx = (m.idx + 1) % len(m.frames)
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m ReplayModel) View() string {
	if len(m.frames) == 0 {
		return "no frames"
	}

	m.canvas.Clear()
	if m.use3D {
		wf := BoxWireframe(m.box)
		wf.AddParticles(m.frames[m.idx], m.box, 1)
		Render3D(m.canvas, wf, m.camera)
	} else {
		drawFrame2D(m.canvas, m.frames[m.idx], m.box, m.plane)
	}

	headerStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true)
	t := 0.0
	if m.idx < len(m.times) {
		t = m.times[m.idx]
	}

	status := StatusPaused.Render("PAUSED")
	if m.playing {
		status = StatusRunning.Render("PLAYING")
	}

	denom := len(m.frames) - 1
	if denom < 1 {
		denom = 1
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "  " + status + "\n")
	s.WriteString(m.canvas.String())
	s.WriteString(ProgressBar(float64(m.idx)/float64(denom), 60) + "\n")
	s.WriteString(MetricLabel.Render(fmt.Sprintf("frame %d/%d", m.idx+1, len(m.frames))) +
		MetricValue.Render(fmt.Sprintf("  t=%.3f", t)) + "\n")
	s.WriteString(KeyHint.Render("SP:Play [ ]:Step R:Rewind P:Plane 3:3D Q:Quit"))
	return s.String()
}

// RunReplay plays back a stored trajectory.
func RunReplay(frames [][]md.Vec3, times []float64, box md.Box, name string) error {
	if len(frames) == 0 {
		return fmt.Errorf("viz: no frames to replay")
	}
	_, err := tea.NewProgram(NewReplayModel(frames, times, box, name), tea.WithAltScreen()).Run()
	return err
}
