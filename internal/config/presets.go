package config

import "sort"

// Presets tweak DefaultConfig for common scenarios.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"tight": func(c *Config) {
		c.Parking.ConfirmTicks = 20
		c.Sim.GapWidth = 0.3
	},
	"noisy": func(c *Config) {
		c.Sim.NoiseStdDev = 800
		c.Sim.DropoutRate = 0.05
		c.Steering.Retries = 2
	},
	"closed_loop": func(c *Config) {
		c.Reverse.Strategy = ReverseRearDistance
		c.Reverse.StopDistance = 60000
		c.Reverse.MaxPolls = 100
	},
	"smooth": func(c *Config) {
		c.Steering.Filter = FilterEMA
		c.Steering.Alpha = 0.3
	},
	"right": func(c *Config) {
		c.Parking.Side = "right"
	},
	"euler": func(c *Config) {
		c.Sim.Integrator = "euler"
		c.Sim.Step = 0.001
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
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
