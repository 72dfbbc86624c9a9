package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orrery/internal/engine"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	historyCapacity = 600
	speedStep       = 1.25
	rotateStep      = 0.1
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Options configure the live view.
type Options struct {
	FPS     int
	Width   int
	Height  int
	Theme   string
	GIFPath string
}

// Model is the bubbletea program state. The simulation itself lives in the
// session; the model only owns view state.
type Model struct {
	session  *engine.Session
	scope    *Scope
	snap     scene.Snapshot
	interval time.Duration
	lastTick time.Time
	frame    int

	selected int
	history  []float64

	recording bool
	frames    []*image.Paletted
	gifPath   string
	showHelp  bool
	err       error
}

func NewModel(s *engine.Session, opts Options) Model {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "orrery.gif"
	}
	if opts.Theme != "" {
		SetTheme(opts.Theme)
	}

	sc := NewScope(opts.Width, opts.Height)
	sc.Selected = 0
	snap := s.Frame()
	sc.Camera.Fit(snap.Extent())

	return Model{
		session:  s,
		scope:    sc,
		snap:     snap,
		interval: engine.Interval(opts.FPS),
		history:  make([]float64, 0, historyCapacity),
		gifPath:  opts.GIFPath,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and advances the session on ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		now := time.Time(msg)
		dt := m.interval.Seconds()
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick).Seconds()
		}
		m.lastTick = now
		m.advance(dt)
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cam := m.scope.Camera
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.saveGIF()
		}
		return m, tea.Quit
	case "s":
		m.session.Start()
	case "p":
		m.session.Pause()
	case " ":
		if m.session.Controller().Running() {
			m.session.Pause()
		} else {
			m.session.Start()
		}
	case "r":
		m.session.Reset()
		m.history = m.history[:0]
	case "+", "=":
		m.session.SetSpeed(m.session.Speed() * speedStep)
	case "-", "_":
		m.session.SetSpeed(m.session.Speed() / speedStep)
	case "tab":
		m.selectBody(1)
	case "shift+tab":
		m.selectBody(-1)
	case "x", "up":
		cam.RotateX(rotateStep)
	case "X", "down":
		cam.RotateX(-rotateStep)
	case "y", "right":
		cam.RotateY(rotateStep)
	case "Y", "left":
		cam.RotateY(-rotateStep)
	case "z":
		cam.ZoomIn()
	case "Z":
		cam.ZoomOut()
	case "a":
		m.scope.Axes = !m.scope.Axes
	case "t":
		SetTheme(NextTheme(CurrentTheme.Name).Name)
		m.scope.Theme = CurrentTheme
	case "g":
		if m.recording {
			m.saveGIF()
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = make([]*image.Paletted, 0)
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	m.snap = m.session.Frame()
	return m, nil
}

func (m *Model) selectBody(dir int) {
	n := len(m.snap.Bodies)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
	m.scope.Selected = m.selected
	m.history = m.history[:0]
}

func (m *Model) advance(dt float64) {
	m.snap = m.session.Advance(dt)
	m.frame++
	if !m.snap.Running || m.selected >= len(m.snap.Bodies) {
		return
	}
	m.history = append(m.history, m.snap.Bodies[m.selected].Position.X())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// Snapshot is the frame currently on screen.
func (m Model) Snapshot() scene.Snapshot { return m.snap }

// History is the x coordinate trace of the selected body since the last
// reset or selection change.
func (m Model) History() []float64 { return m.history }

func (m Model) Selected() int { return m.selected }

func (m Model) Recording() bool { return m.recording }

// Err is the last recording error, if any.
func (m Model) Err() error { return m.err }

// View renders the TUI interface.
func (m Model) View() string {
	m.scope.Draw(m.snap)
	canvasView := canvasStyle.Render(m.scope.Canvas.Render())

	theme := m.scope.Theme
	st := theme.Styles()
	var s strings.Builder
	s.WriteString(GradientText("ORRERY", theme.Primary, theme.Secondary) + "\n")
	s.WriteString(theme.Separator(36) + "\n\n")

	status := st.Paused.Render("■ PAUSED")
	if m.snap.Running {
		status = st.Running.Render(Spinner(m.frame) + " RUNNING")
	} else if m.snap.Elapsed == 0 {
		status = st.Paused.Render("■ STOPPED")
	}
	if m.recording {
		status += "  " + st.Recording.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	speed := m.session.Speed()
	row("Elapsed", fmt.Sprintf("%.2f", m.snap.Elapsed))
	row("Speed", fmt.Sprintf("%.2fx ", speed)+theme.SpeedGauge(speed, playback.MinSpeedFactor, playback.MaxSpeedFactor, 12))
	row("Zoom", fmt.Sprintf("%.2fx", m.scope.Camera.Zoom))
	s.WriteString("\n")

	if m.selected < len(m.snap.Bodies) {
		b := m.snap.Bodies[m.selected]
		base := m.session.Builder().Options().AngularRateBase
		s.WriteString(Swatch(ParseColor(b.Body.DisplayColor, theme.BodyColor())) + " " + st.Value.Render(b.Body.Name) + "\n")
		row("Angle", fmt.Sprintf("%.1f°", degrees(b.Angle)))
		row("Period", fmt.Sprintf("%.1f", orbit.Period(b.Body.RelativeDistance, base)))
		row("Position", fmt.Sprintf("(%.1f, %.1f)", b.Position.X(), b.Position.Y()))
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("x"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Play/Pause R:Reset Q:Quit\nTAB:Body +/-:Speed Z:Zoom\nT:Theme G:Record ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  S / P    - Start / Pause            ║
║  Space    - Toggle start and pause   ║
║  R        - Reset to t = 0           ║
║  + / -    - Faster / slower          ║
║  Tab      - Select next body         ║
║  X/Y/Arr  - Rotate camera            ║
║  z / Z    - Zoom in / out            ║
║  A        - Toggle axes              ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`

func degrees(rad float64) float64 {
	d := math.Mod(rad*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func (m *Model) palette() color.Palette {
	p := color.Palette{color.Black, color.White}
	p = append(p, themeColor(m.scope.Theme.Orbit), themeColor(m.scope.Theme.Star), themeColor(m.scope.Theme.Sun))
	for _, b := range m.snap.Bodies {
		if len(p) == 256 {
			break
		}
		p = append(p, ParseColor(b.Body.DisplayColor, themeColor(m.scope.Theme.Text)))
	}
	return p
}

func (m *Model) captureFrame() {
	m.scope.Draw(m.snap)
	c := m.scope.Canvas
	charW, charH := 8, 16
	pal := m.palette()
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), pal)
	dotW, dotH := charW/2, charH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := c.Grid[row][col] - brailleBlank
			if pattern <= 0 {
				continue
			}
			idx := uint8(1)
			if c.colored[row][col] {
				idx = uint8(pal.Index(c.Colors[row][col]))
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&rune(pixelMap[dy][dx]) == 0 {
						continue
					}
					baseX, baseY := col*charW+dx*dotW, row*charH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+px, baseY+py, idx)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if err := WriteGIF(m.gifPath, m.frames, m.interval); err != nil {
		m.err = err
		slog.Error("save recording", "path", m.gifPath, "err", err)
	}
}

// WriteGIF encodes frames as a looping animation with the given frame
// delay. An empty frame list writes nothing.
func WriteGIF(path string, frames []*image.Paletted, delay time.Duration) error {
	if len(frames) == 0 {
		return nil
	}
	cs := int(delay / (10 * time.Millisecond))
	if cs < 1 {
		cs = 1
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, cs)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("viz: create %s: %w", path, err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("viz: encode gif: %w", err)
	}
	return nil
}

// Run starts the live view on the alternate screen and blocks until quit.
func Run(s *engine.Session, opts Options) error {
	_, err := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen()).Run()
	return err
}
