package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Orbit     lipgloss.Color
	Star      lipgloss.Color
	Sun       lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:      "deepspace",
		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#bb9af7"),
		Accent:    lipgloss.Color("#e0af68"),
		Text:      lipgloss.Color("#c0caf5"),
		Muted:     lipgloss.Color("#565f89"),
		Orbit:     lipgloss.Color("#3b4261"),
		Star:      lipgloss.Color("#a9b1d6"),
		Sun:       lipgloss.Color("#fdb813"),
		Success:   lipgloss.Color("#9ece6a"),
		Warning:   lipgloss.Color("#ff9e64"),
		Error:     lipgloss.Color("#f7768e"),
	}

	ThemePhosphor = Theme{
		Name:      "phosphor",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Orbit:     lipgloss.Color("#006600"),
		Star:      lipgloss.Color("#00aa00"),
		Sun:       lipgloss.Color("#ccff66"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeChart = Theme{
		Name:      "chart",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Orbit:     lipgloss.Color("#444444"),
		Star:      lipgloss.Color("#777777"),
		Sun:       lipgloss.Color("#ffcc00"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeNebula = Theme{
		Name:      "nebula",
		Primary:   lipgloss.Color("#ff6b6b"),
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Orbit:     lipgloss.Color("#5a3d5c"),
		Star:      lipgloss.Color("#d6a2e8"),
		Sun:       lipgloss.Color("#ff9f43"),
		Success:   lipgloss.Color("#5fd068"),
		Warning:   lipgloss.Color("#ffc048"),
		Error:     lipgloss.Color("#ff4757"),
	}

	// Default theme
	CurrentTheme = ThemeDeepSpace

	Themes = []Theme{
		ThemeDeepSpace,
		ThemePhosphor,
		ThemeChart,
		ThemeNebula,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDeepSpace
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// ParseColor converts a hex string into a colour, using fallback when the
// string is empty or malformed.
func ParseColor(hex string, fallback colorful.Color) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	return c
}

func themeColor(c lipgloss.Color) colorful.Color {
	return ParseColor(string(c), colorful.Color{R: 1, G: 1, B: 1})
}

// SunColor is the fallback colour for a sun without a display colour.
func (t Theme) SunColor() colorful.Color { return themeColor(t.Sun) }

// BodyColor is the fallback colour for a body without a display colour.
func (t Theme) BodyColor() colorful.Color { return themeColor(t.Text) }
