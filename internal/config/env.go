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
	EnvDataDir = "HOOPSIM_DATA"
	EnvGravity = "HOOPSIM_GRAVITY"
	EnvRadius  = "HOOPSIM_RADIUS"
	EnvDt      = "HOOPSIM_DT"
)

// LoadEnv reads KEY=value pairs from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides physical settings from HOOPSIM_* variables.
func (c *Config) ApplyEnv() error {
	for _, o := range []struct {
		key string
		dst *float64
	}{
		{EnvGravity, &c.Gravity},
		{EnvRadius, &c.Radius},
		{EnvDt, &c.Dt},
	} {
		raw, ok := os.LookupEnv(o.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", o.key, err)
		}
		*o.dst = v
	}
	return c.Validate()
}

// DataDir returns HOOPSIM_DATA or fallback.
func DataDir(fallback string) string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return fallback
}
