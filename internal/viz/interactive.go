package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mdsim/internal/config"
)

var (
	menuTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	menuError  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

var presetInfo = map[string]string{
	"demo":    "dilute random gas",
	"pair":    "two-body encounter",
	"crystal": "cold cubic lattice",
	"dense":   "hot dense lattice",
	"sparse":  "dilute drifting gas",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field exposes one tunable config entry to the editor.
type field struct {
	name  string
	nudge float64
	get   func(c *config.Config) float64
	set   func(c *config.Config, v float64)
}

var fields = []field{
	{"particles", 1,
		func(c *config.Config) float64 { return float64(c.Particles) },
		func(c *config.Config, v float64) { c.Particles = int(v) }},
	{"steps", 100,
		func(c *config.Config) float64 { return float64(c.Steps) },
		func(c *config.Config, v float64) { c.Steps = int(v) }},
	{"dt", 0.001,
		func(c *config.Config) float64 { return c.Dt },
		func(c *config.Config, v float64) { c.Dt = v }},
	{"box_half", 0.5,
		func(c *config.Config) float64 { return c.BoxHalf },
		func(c *config.Config, v float64) { c.BoxHalf = v }},
	{"epsilon", 0.1,
		func(c *config.Config) float64 { return c.Epsilon },
		func(c *config.Config, v float64) { c.Epsilon = v }},
	{"sigma", 0.1,
		func(c *config.Config) float64 { return c.Sigma },
		func(c *config.Config, v float64) { c.Sigma = v }},
	{"cutoff", 0.1,
		func(c *config.Config) float64 { return c.Cutoff },
		func(c *config.Config, v float64) { c.Cutoff = v }},
	{"mass", 0.1,
		func(c *config.Config) float64 { return c.Mass },
		func(c *config.Config, v float64) { c.Mass = v }},
	{"seed", 1,
		func(c *config.Config) float64 { return float64(c.Seed) },
		func(c *config.Config, v float64) { c.Seed = int64(v) }},
	{"margin", 0.1,
		func(c *config.Config) float64 { return c.Margin },
		func(c *config.Config, v float64) { c.Margin = v }},
	{"max_speed", 0.1,
		func(c *config.Config) float64 { return c.MaxSpeed },
		func(c *config.Config, v float64) { c.MaxSpeed = v }},
	{"spacing", 0.1,
		func(c *config.Config) float64 { return c.Spacing },
		func(c *config.Config, v float64) { c.Spacing = v }},
}

// App is the interactive entry point: pick a preset, tune it, watch it.
type App struct {
	state  int
	cursor int

	presets  []string
	selected string
	cfg      *config.Config

	fieldCursor int
	editing     bool
	editBuf     string
	errMsg      string

	live Model
}

func NewApp() App {
	return App{
		state:   stateMenu,
		presets: config.ListPresets(),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	default:
		if a.state == stateSim {
			newLive, cmd := a.live.Update(msg)
			a.live = newLive.(Model)
			return a, cmd
		}
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case stateMenu:
		return a.menuKey(msg)
	case stateConfig:
		return a.configKey(msg)
	case stateSim:
		newLive, cmd := a.live.Update(msg)
		a.live = newLive.(Model)
		return a, cmd
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.selected = a.presets[a.cursor]
		a.cfg = config.GetPreset(a.selected)
		a.state, a.fieldCursor, a.errMsg = stateConfig, 0, ""
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(a.editBuf, "%f", &val)
			fields[a.fieldCursor].set(a.cfg, val)
			a.editing, a.editBuf = false, ""
		case "escape":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					a.editBuf += string(c)
				}
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "escape":
		a.state = stateMenu
	case "up", "k":
		if a.fieldCursor > 0 {
			a.fieldCursor--
		}
	case "down", "j":
		if a.fieldCursor < len(fields)-1 {
			a.fieldCursor++
		}
	case "enter", " ":
		f := fields[a.fieldCursor]
		a.editing, a.editBuf = true, fmt.Sprintf("%g", f.get(a.cfg))
	case "left", "h":
		f := fields[a.fieldCursor]
		f.set(a.cfg, f.get(a.cfg)-f.nudge)
	case "right", "l":
		f := fields[a.fieldCursor]
		f.set(a.cfg, f.get(a.cfg)+f.nudge)
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (tea.Model, tea.Cmd) {
	if err := a.cfg.Validate(); err != nil {
		a.errMsg = err.Error()
		return a, nil
	}
	a.errMsg = ""
	a.live = NewModel(a.cfg.NewSystem(), a.cfg.NewIntegrator(), a.selected)
	a.state = stateSim
	return a, a.live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return ""
}

func (a App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("MDSIM") + "\n")
	b.WriteString("    " + menuSub.Render("molecular dynamics sandbox") + "\n")
	b.WriteString("    " + menuSub.Render("──────────────────────────") + "\n\n")

	for i, name := range a.presets {
		desc := presetInfo[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				menuCursor.Render("▸"),
				menuActive.Render(fmt.Sprintf("%-10s", name)),
				menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n",
				menuDim.Render(fmt.Sprintf("%-10s", name)),
				menuDimmer.Render(desc)))
		}
	}

	b.WriteString("\n    " + menuKey.Render("j/k") + menuDim.Render(" navigate  ") +
		menuKey.Render("enter") + menuDim.Render(" select  ") +
		menuKey.Render("q") + menuDim.Render(" quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(a.selected)) + "\n")
	b.WriteString("    " + menuSub.Render(presetInfo[a.selected]) + "\n")
	b.WriteString("    " + menuSub.Render("──────────────────────────") + "\n\n")

	for i, f := range fields {
		valStr := fmt.Sprintf("%10.4g", f.get(a.cfg))
		if a.editing && i == a.fieldCursor {
			valStr = fmt.Sprintf("%10s", a.editBuf+"_")
		}
		if i == a.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n",
				menuCursor.Render("▸"),
				menuActive.Render(fmt.Sprintf("%-10s", f.name)),
				menuDesc.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n",
				menuDim.Render(fmt.Sprintf("%-10s", f.name)),
				menuDimmer.Render(valStr)))
		}
	}

	if a.errMsg != "" {
		b.WriteString("\n    " + menuError.Render(a.errMsg) + "\n")
	}

	b.WriteString("\n    " + menuKey.Render("j/k") + menuDim.Render(" select  ") +
		menuKey.Render("h/l") + menuDim.Render(" adjust  ") +
		menuKey.Render("enter") + menuDim.Render(" edit  ") +
		menuKey.Render("s") + menuDim.Render(" start  ") +
		menuKey.Render("esc") + menuDim.Render(" back") + "\n")
	return b.String()
}

// RunInteractive starts the preset browser.
func RunInteractive() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen()).Run()
	return err
}
