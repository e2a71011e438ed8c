package config

import "sort"

var Presets = map[string]*Config{
	"demo": {
		Particles: 10, Steps: 500, Dt: 0.005, BoxHalf: 5,
		Epsilon: 1, Sigma: 1, Cutoff: 2.5, Mass: 1, Seed: 42,
		Init: "random", Margin: 2, MaxSpeed: 2,
	},
	"pair": {
		Particles: 2, Steps: 2000, Dt: 0.001, BoxHalf: 25,
		Epsilon: 1, Sigma: 1, Cutoff: 2.5, Mass: 1, Seed: 1,
		Init: "pair", Spacing: 1.5,
	},
	"crystal": {
		Particles: 64, Steps: 2000, Dt: 0.002, BoxHalf: 6,
		Epsilon: 1, Sigma: 1, Cutoff: 2.5, Mass: 1, Seed: 7,
		Init: "lattice", Spacing: 1.5, MaxSpeed: 0.5, ZeroMomentum: true,
	},
	"dense": {
		Particles: 125, Steps: 1000, Dt: 0.002, BoxHalf: 4,
		Epsilon: 1, Sigma: 1, Cutoff: 2.5, Mass: 1, Seed: 11,
		Init: "lattice", Spacing: 1.2, MaxSpeed: 1.5, ZeroMomentum: true, Workers: 4,
	},
	"sparse": {
		Particles: 20, Steps: 1000, Dt: 0.002, BoxHalf: 8,
		Epsilon: 1, Sigma: 1, Cutoff: 2.5, Mass: 1, Seed: 3,
		Init: "random", Margin: 2, MaxSpeed: 3,
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not
// exist. Callers may mutate the copy freely.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
