package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt            = 0.002
	DefaultDuration      = 10.0
	DefaultGravity       = 9.8
	DefaultRadius        = 2.0
	DefaultFrameRate     = 500
	DefaultStepsPerFrame = 1
	DefaultEditPolicy    = "free"
)

type Config struct {
	Preset        string       `yaml:"preset,omitempty"`
	Gravity       float64      `yaml:"gravity"`
	Radius        float64      `yaml:"radius"`
	Dt            float64      `yaml:"dt"`
	Duration      float64      `yaml:"duration"`
	FrameRate     int          `yaml:"frame_rate"` // live physics steps per second, 0 paces to dt
	StepsPerFrame int          `yaml:"steps_per_frame"`
	EditPolicy    string       `yaml:"edit_policy"`
	Balls         []BallConfig `yaml:"balls"`
}

type BallConfig struct {
	Name  string  `yaml:"name"`
	Mass  float64 `yaml:"mass"`
	Theta float64 `yaml:"theta"`
	Omega float64 `yaml:"omega"`
}

// DefaultConfig is the three-ball lab.
func DefaultConfig() *Config {
	return &Config{
		Gravity:       DefaultGravity,
		Radius:        DefaultRadius,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		FrameRate:     DefaultFrameRate,
		StepsPerFrame: DefaultStepsPerFrame,
		EditPolicy:    DefaultEditPolicy,
		Balls: []BallConfig{
			{Name: "ball1", Mass: 0.1, Theta: 0.5},
			{Name: "ball2", Mass: 0.15, Theta: 1.0},
			{Name: "ball3", Mass: 0.2, Theta: -0.5},
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base; keys absent from the file
// keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

func (c *Config) Clone() *Config {
	cp := *c
	cp.Balls = append([]BallConfig(nil), c.Balls...)
	return &cp
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return fmt.Errorf("radius must be positive, got %v", c.Radius)
	}
	if !(c.Gravity >= 0) || math.IsInf(c.Gravity, 0) {
		return fmt.Errorf("gravity must be non-negative, got %v", c.Gravity)
	}
	if c.FrameRate < 0 {
		return fmt.Errorf("frame_rate must not be negative, got %d", c.FrameRate)
	}
	switch c.EditPolicy {
	case "free", "halted", "":
	default:
		return fmt.Errorf("edit_policy must be free or halted, got %q", c.EditPolicy)
	}
	if len(c.Balls) == 0 {
		return fmt.Errorf("at least one ball is required")
	}
	seen := make(map[string]bool, len(c.Balls))
	for i, b := range c.Balls {
		if b.Name == "" {
			return fmt.Errorf("ball %d has no name", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate ball name %q", b.Name)
		}
		seen[b.Name] = true
		if !(b.Mass > 0) {
			return fmt.Errorf("ball %s: mass must be positive, got %v", b.Name, b.Mass)
		}
	}
	return nil
}
