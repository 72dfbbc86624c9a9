package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Scale.Distance != 10 || cfg.Scale.Radius != 0.2 {
		t.Errorf("unexpected scales: %+v", cfg.Scale)
	}
	if cfg.Background.Points != 200 {
		t.Errorf("expected 200 background points, got %d", cfg.Background.Points)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero speed", func(c *Config) { c.SpeedFactor = 0 }},
		{"zero distance scale", func(c *Config) { c.Scale.Distance = 0 }},
		{"negative radius scale", func(c *Config) { c.Scale.Radius = -1 }},
		{"zero rate", func(c *Config) { c.AngularRateBase = 0 }},
		{"negative spin", func(c *Config) { c.SpinRate = -1 }},
		{"negative points", func(c *Config) { c.Background.Points = -5 }},
		{"zero extent", func(c *Config) { c.Background.Extent = 0 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"NaN speed", func(c *Config) { c.SpeedFactor = math.NaN() }},
		{"NaN distance scale", func(c *Config) { c.Scale.Distance = math.NaN() }},
		{"infinite distance scale", func(c *Config) { c.Scale.Distance = math.Inf(1) }},
		{"NaN radius scale", func(c *Config) { c.Scale.Radius = math.NaN() }},
		{"infinite rate", func(c *Config) { c.AngularRateBase = math.Inf(1) }},
		{"NaN spin", func(c *Config) { c.SpinRate = math.NaN() }},
		{"infinite extent", func(c *Config) { c.Background.Extent = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	data := []byte("speed_factor: 4\nscale:\n  distance: 25\nseed: 7\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.SpeedFactor != 4 || cfg.Scale.Distance != 25 || cfg.Seed != 7 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Scale.Radius != DefaultRadiusScale {
		t.Errorf("default radius scale lost, got %f", cfg.Scale.Radius)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("scale:\n  distance: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	cfg := GetPreset("wide")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Scale != cfg.Scale || loaded.Background != cfg.Background {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("compact")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Scale.Distance != 4 {
		t.Errorf("expected distance scale 4, got %f", cfg.Scale.Distance)
	}
	if cfg.SpeedFactor != DefaultSpeedFactor {
		t.Error("preset should keep untouched defaults")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, n := range names {
		if err := GetPreset(n).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", n, err)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvSpeed, "3.5")
	t.Setenv(EnvSeed, "42")
	t.Setenv(EnvListen, ":9999")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env failed: %v", err)
	}
	if cfg.SpeedFactor != 3.5 || cfg.Seed != 42 || cfg.Server.Listen != ":9999" {
		t.Errorf("env not applied: %+v", cfg)
	}

	t.Setenv(EnvRadiusScale, "big")
	if err := cfg.ApplyEnv(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNonFiniteEnvScaleRejected(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Inf"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv(EnvDistanceScale, v)
			cfg := DefaultConfig()
			if err := cfg.ApplyEnv(); err != nil {
				if errors.Is(err, ErrInvalidConfig) {
					return
				}
				t.Fatalf("unexpected error: %v", err)
			}
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("distance scale %v passed validation", cfg.Scale.Distance)
			}
		})
	}
}

func TestLoadRejectsNaNScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	if err := os.WriteFile(path, []byte("scale:\n  radius: .nan\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("ORRERY_DISTANCE_SCALE=12.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDistanceScale, "")
	os.Unsetenv(EnvDistanceScale)

	if err := LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load env failed: %v", err)
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Scale.Distance != 12.5 {
		t.Errorf("expected 12.5 from env file, got %f", cfg.Scale.Distance)
	}
}
