package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSpeedFactor      = 1.0
	DefaultDistanceScale    = 10.0
	DefaultRadiusScale      = 0.2
	DefaultAngularRateBase  = 0.1
	DefaultSpinRate         = 1.0
	DefaultBackgroundPoints = 200
	DefaultBackgroundExtent = 150.0
	DefaultFPS              = 20
	DefaultListen           = ":8080"
	DefaultDataDir          = ".orrery"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Catalog         string           `yaml:"catalog"`
	SpeedFactor     float64          `yaml:"speed_factor"`
	AngularRateBase float64          `yaml:"angular_rate_base"`
	SpinRate        float64          `yaml:"spin_rate"`
	Scale           ScaleConfig      `yaml:"scale"`
	Background      BackgroundConfig `yaml:"background"`
	Seed            int64            `yaml:"seed"`
	FPS             int              `yaml:"fps"`
	AutoStart       bool             `yaml:"autostart"`
	DataDir         string           `yaml:"data_dir"`
	Server          ServerConfig     `yaml:"server"`
	Logging         LoggingConfig    `yaml:"logging"`
}

type ScaleConfig struct {
	Distance float64 `yaml:"distance"`
	Radius   float64 `yaml:"radius"`
}

type BackgroundConfig struct {
	Points int     `yaml:"points"`
	Extent float64 `yaml:"extent"`
}

type ServerConfig struct {
	Listen         string   `yaml:"listen"`
	CommandRate    float64  `yaml:"command_rate"`
	CommandBurst   int      `yaml:"command_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TrustProxy     bool     `yaml:"trust_proxy"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		SpeedFactor:     DefaultSpeedFactor,
		AngularRateBase: DefaultAngularRateBase,
		SpinRate:        DefaultSpinRate,
		Scale: ScaleConfig{
			Distance: DefaultDistanceScale,
			Radius:   DefaultRadiusScale,
		},
		Background: BackgroundConfig{
			Points: DefaultBackgroundPoints,
			Extent: DefaultBackgroundExtent,
		},
		FPS:     DefaultFPS,
		DataDir: DefaultDataDir,
		Server: ServerConfig{
			Listen:         DefaultListen,
			CommandRate:    5,
			CommandBurst:   10,
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values that would make the scene degenerate. The speed
// factor is not range-checked here; playback clamps it.
func (c *Config) Validate() error {
	switch {
	case !positive(c.SpeedFactor):
		return fmt.Errorf("%w: speed_factor must be a positive finite number, got %g", ErrInvalidConfig, c.SpeedFactor)
	case !positive(c.Scale.Distance):
		return fmt.Errorf("%w: scale.distance must be a positive finite number, got %g", ErrInvalidConfig, c.Scale.Distance)
	case !positive(c.Scale.Radius):
		return fmt.Errorf("%w: scale.radius must be a positive finite number, got %g", ErrInvalidConfig, c.Scale.Radius)
	case !positive(c.AngularRateBase):
		return fmt.Errorf("%w: angular_rate_base must be a positive finite number, got %g", ErrInvalidConfig, c.AngularRateBase)
	case c.SpinRate != 0 && !positive(c.SpinRate):
		return fmt.Errorf("%w: spin_rate must be zero or a positive finite number, got %g", ErrInvalidConfig, c.SpinRate)
	case c.Background.Points < 0:
		return fmt.Errorf("%w: background.points must not be negative, got %d", ErrInvalidConfig, c.Background.Points)
	case !positive(c.Background.Extent):
		return fmt.Errorf("%w: background.extent must be a positive finite number, got %g", ErrInvalidConfig, c.Background.Extent)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	return nil
}

// positive is false for NaN and both infinities.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
