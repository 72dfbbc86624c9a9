package config

import "sort"

// Presets tune how the same catalog is laid out and paced.
var Presets = map[string]func(*Config){
	"classic": func(c *Config) {},
	"compact": func(c *Config) {
		c.Scale.Distance = 4
		c.Scale.Radius = 0.1
		c.Background.Extent = 80
	},
	"wide": func(c *Config) {
		c.Scale.Distance = 25
		c.Scale.Radius = 0.35
		c.Background.Points = 400
		c.Background.Extent = 400
	},
	"fast": func(c *Config) {
		c.SpeedFactor = 8
		c.AngularRateBase = 0.25
		c.AutoStart = true
	},
	"inner": func(c *Config) {
		c.Scale.Distance = 40
		c.Scale.Radius = 0.5
		c.AngularRateBase = 0.05
	},
}

// PresetInfo is a one-line description per preset.
var PresetInfo = map[string]string{
	"classic": "original scales and pace",
	"compact": "tight orbits, big planets",
	"wide":    "spread out, dense starfield",
	"fast":    "eight times the pace, starts running",
	"inner":   "zoomed on the rocky planets",
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
