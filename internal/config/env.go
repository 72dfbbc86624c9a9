package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvSpeed         = "ORRERY_SPEED"
	EnvDistanceScale = "ORRERY_DISTANCE_SCALE"
	EnvRadiusScale   = "ORRERY_RADIUS_SCALE"
	EnvSeed          = "ORRERY_SEED"
	EnvListen        = "ORRERY_LISTEN"
	EnvLogLevel      = "ORRERY_LOG_LEVEL"
	EnvCatalog       = "ORRERY_CATALOG"
)

// LoadEnv loads dotenv files into the process environment. Missing files are
// skipped; variables already set are left alone.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from ORRERY_* variables.
func (c *Config) ApplyEnv() error {
	if err := envFloat(EnvSpeed, &c.SpeedFactor); err != nil {
		return err
	}
	if err := envFloat(EnvDistanceScale, &c.Scale.Distance); err != nil {
		return err
	}
	if err := envFloat(EnvRadiusScale, &c.Scale.Radius); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvSeed, err)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv(EnvListen); ok {
		c.Server.Listen = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvCatalog); ok {
		c.Catalog = v
	}
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	*dst = f
	return nil
}
