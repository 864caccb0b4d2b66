package config

import "sort"

var Presets = map[string]*Config{
	"lab": DefaultConfig(),
	"energy_conservation": {
		Gravity: DefaultGravity, Radius: DefaultRadius, Dt: DefaultDt, Duration: 10.0,
		FrameRate: DefaultFrameRate, StepsPerFrame: 1, EditPolicy: "free",
		Balls: []BallConfig{
			{Name: "ball1", Mass: 0.1, Theta: 1.57},
		},
	},
	"mass_comparison": {
		Gravity: DefaultGravity, Radius: DefaultRadius, Dt: DefaultDt, Duration: 10.0,
		FrameRate: DefaultFrameRate, StepsPerFrame: 1, EditPolicy: "free",
		Balls: []BallConfig{
			{Name: "light", Mass: 0.1, Theta: 1.0},
			{Name: "medium", Mass: 0.2, Theta: 1.0},
			{Name: "heavy", Mass: 0.3, Theta: 1.0},
		},
	},
	"phase_difference": {
		Gravity: DefaultGravity, Radius: DefaultRadius, Dt: DefaultDt, Duration: 10.0,
		FrameRate: DefaultFrameRate, StepsPerFrame: 1, EditPolicy: "free",
		Balls: []BallConfig{
			{Name: "ball1", Mass: 0.1, Theta: 0.5},
			{Name: "ball2", Mass: 0.1, Theta: 1.0},
			{Name: "ball3", Mass: 0.1, Theta: 1.5},
		},
	},
	"initial_velocity": {
		Gravity: DefaultGravity, Radius: DefaultRadius, Dt: DefaultDt, Duration: 10.0,
		FrameRate: DefaultFrameRate, StepsPerFrame: 1, EditPolicy: "halted",
		Balls: []BallConfig{
			{Name: "slow", Mass: 0.1, Theta: 0, Omega: 1},
			{Name: "medium", Mass: 0.1, Theta: 0, Omega: 2},
			{Name: "fast", Mass: 0.1, Theta: 0, Omega: 3},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := cfg.Clone()
	c.Preset = name
	return c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Environment is a named gravity setting.
type Environment struct {
	Name        string
	Description string
	Gravity     float64
}

var Environments = []Environment{
	{Name: "standard", Description: "classic gravity-driven hoop", Gravity: 9.8},
	{Name: "space", Description: "no gravity, uniform circular motion", Gravity: 0},
	{Name: "moon", Description: "low gravity", Gravity: 1.62},
	{Name: "earth", Description: "standard surface gravity", Gravity: 9.81},
	{Name: "high_gravity", Description: "Jupiter-like surface", Gravity: 24.8},
	{Name: "jupiter", Description: "Jupiter surface gravity", Gravity: 24.79},
}

func GetEnvironment(name string) (Environment, bool) {
	for _, e := range Environments {
		if e.Name == name {
			return e, true
		}
	}
	return Environment{}, false
}
