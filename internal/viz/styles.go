package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles are the side panel styles derived from one theme.
type Styles struct {
	Running   lipgloss.Style
	Paused    lipgloss.Style
	Recording lipgloss.Style
	Value     lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Running:   lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Paused:    lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Recording: lipgloss.NewStyle().Bold(true).Foreground(t.Error).Blink(true),
		Value:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:     lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		Muted:     lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// GradientText colours each rune of text along a Lab blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, b := themeColor(start), themeColor(end)

	var sb strings.Builder
	for i, r := range runes {
		f := 0.0
		if len(runes) > 1 {
			f = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLab(b, f).Clamped()
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return sb.String()
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func Spinner(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}

// SpeedGauge draws a width-cell bar for speed on the playback range, shaded
// from the theme's success colour at the slow end to its error colour at
// the fast end.
func (t Theme) SpeedGauge(speed, lo, hi float64, width int) string {
	f := SpeedFraction(speed, lo, hi)
	filled := int(math.Round(f * float64(width)))
	filled = max(0, min(filled, width))

	clr := themeColor(t.Success).BlendLab(themeColor(t.Error), f).Clamped()
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(clr.Hex())).Render(strings.Repeat("█", filled))
	return bar + lipgloss.NewStyle().Foreground(t.Muted).Render(strings.Repeat("░", width-filled))
}

// SpeedFraction maps a speed factor within [lo, hi] onto 0..1 on a log
// scale, so 1x sits near the middle of the default range.
func SpeedFraction(speed, lo, hi float64) float64 {
	if speed <= lo {
		return 0
	}
	if speed >= hi {
		return 1
	}
	return math.Log(speed/lo) / math.Log(hi/lo)
}

func (t Theme) Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return lipgloss.NewStyle().Foreground(t.Muted).Render(left + " ◆ " + right)
}

// Swatch renders a single coloured dot for a body legend.
func Swatch(c colorful.Color) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("●")
}
