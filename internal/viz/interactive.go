package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/engine"
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	menuError    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

const (
	stateMenu = iota
	stateSim
)

// picker lists the configuration presets and launches the live view for the
// chosen one.
type picker struct {
	state   int
	cursor  int
	presets []string
	catalog *catalog.Catalog
	opts    Options
	live    Model
	err     error
}

func NewPicker(cat *catalog.Catalog, opts Options) tea.Model {
	return &picker{
		state:   stateMenu,
		presets: config.ListPresets(),
		catalog: cat,
		opts:    opts,
	}
}

func (m *picker) Init() tea.Cmd { return nil }

func (m *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m, m.launch()
	}
	return m, nil
}

func (m *picker) launch() tea.Cmd {
	cfg := config.GetPreset(m.presets[m.cursor])
	cfg.AutoStart = true
	s, err := engine.NewSession(cfg, m.catalog)
	if err != nil {
		m.err = err
		return nil
	}
	opts := m.opts
	opts.FPS = cfg.FPS
	m.live = NewModel(s, opts)
	m.state = stateSim
	return m.live.Init()
}

func (m *picker) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("ORRERY") + "\n    " + menuSub.Render("schematic solar system") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := config.PresetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-10s", name)), menuInactive.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + menuError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuSub.Render(" navigate  ") + menuKey.Render("enter") + menuSub.Render(" launch  ") + menuKey.Render("q") + menuSub.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive shows the preset picker and then the live view.
func RunInteractive(cat *catalog.Catalog, opts Options) error {
	_, err := tea.NewProgram(NewPicker(cat, opts), tea.WithAltScreen()).Run()
	return err
}
