package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Particles != 10 {
		t.Errorf("expected 10 particles, got %d", cfg.Particles)
	}
	if cfg.Dt != 0.005 {
		t.Errorf("expected dt 0.005, got %f", cfg.Dt)
	}
	if cfg.Cutoff != 2.5 {
		t.Errorf("expected cutoff 2.5, got %f", cfg.Cutoff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Particles = 32
	cfg.Init = "lattice"
	cfg.Spacing = 1.7
	cfg.ZeroMomentum = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Particles != 32 || loaded.Init != "lattice" || loaded.Spacing != 1.7 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if !loaded.ZeroMomentum {
		t.Error("round trip lost zero_momentum")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("particles: 4\nsteps: 50\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Particles != 4 || cfg.Steps != 50 {
		t.Errorf("explicit fields not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Cutoff != DefaultCutoff || cfg.Init != "random" {
		t.Errorf("defaults not preserved for omitted fields: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero particles", func(c *Config) { c.Particles = 0 }},
		{"negative steps", func(c *Config) { c.Steps = -1 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero box", func(c *Config) { c.BoxHalf = 0 }},
		{"zero epsilon", func(c *Config) { c.Epsilon = 0 }},
		{"negative sigma", func(c *Config) { c.Sigma = -1 }},
		{"zero cutoff", func(c *Config) { c.Cutoff = 0 }},
		{"zero mass", func(c *Config) { c.Mass = 0 }},
		{"margin swallows box", func(c *Config) { c.Margin = 5 }},
		{"negative max speed", func(c *Config) { c.MaxSpeed = -1 }},
		{"dt outruns box", func(c *Config) { c.Dt = 10; c.MaxSpeed = 2 }},
		{"unknown init", func(c *Config) { c.Init = "spiral" }},
		{"lattice zero spacing", func(c *Config) { c.Init = "lattice"; c.Spacing = 0 }},
		{"lattice overflows box", func(c *Config) {
			c.Init = "lattice"
			c.Particles = 1000
			c.Spacing = 2
		}},
		{"pair wrong count", func(c *Config) { c.Init = "pair"; c.Particles = 3 }},
		{"pair spacing too wide", func(c *Config) {
			c.Init = "pair"
			c.Particles = 2
			c.Spacing = 11
		}},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("demo")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Particles != 10 || cfg.Steps != 500 {
		t.Errorf("demo preset has %d particles, %d steps", cfg.Particles, cfg.Steps)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	a := GetPreset("demo")
	a.Particles = 999

	if b := GetPreset("demo"); b.Particles == 999 {
		t.Error("mutating a fetched preset leaked into the registry")
	}
}

func TestPresetsAllValid(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %q does not validate: %v", name, err)
		}
	}
}

func TestListPresetsSorted(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestNewSystemModes(t *testing.T) {
	t.Run("pair", func(t *testing.T) {
		cfg := GetPreset("pair")
		sys := cfg.NewSystem()

		if sys.N() != 2 {
			t.Fatalf("N = %d, expected 2", sys.N())
		}
		d := sys.Pos[1].Sub(sys.Pos[0]).Norm()
		if math.Abs(d-cfg.Spacing) > 1e-12 {
			t.Errorf("pair separation %v, expected %v", d, cfg.Spacing)
		}
		if sys.Vel[0].Norm() != 0 || sys.Vel[1].Norm() != 0 {
			t.Error("pair should start at rest")
		}
	})

	t.Run("random respects bounds", func(t *testing.T) {
		cfg := DefaultConfig()
		sys := cfg.NewSystem()

		limit := cfg.BoxHalf - cfg.Margin
		for i := range sys.Pos {
			p := sys.Pos[i]
			if math.Abs(p.X) > limit || math.Abs(p.Y) > limit || math.Abs(p.Z) > limit {
				t.Errorf("particle %d at %v violates margin", i, p)
			}
		}
	})

	t.Run("mass applied", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mass = 2.5
		sys := cfg.NewSystem()

		for i := range sys.Mass {
			if sys.Mass[i] != 2.5 {
				t.Fatalf("mass[%d] = %v", i, sys.Mass[i])
			}
		}
	})

	t.Run("zero momentum", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ZeroMomentum = true
		sys := cfg.NewSystem()

		if p := sys.Momentum(); p.Norm() > 1e-12 {
			t.Errorf("momentum %v, expected 0", p)
		}
	})

	t.Run("deterministic for seed", func(t *testing.T) {
		cfg := DefaultConfig()
		a, b := cfg.NewSystem(), cfg.NewSystem()

		for i := range a.Pos {
			if a.Pos[i] != b.Pos[i] || a.Vel[i] != b.Vel[i] {
				t.Fatalf("same config produced different systems at %d", i)
			}
		}
	})
}

func TestNewIntegrator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.ValidateState = true

	vv := cfg.NewIntegrator()
	if vv.Dt != cfg.Dt {
		t.Errorf("dt = %v, expected %v", vv.Dt, cfg.Dt)
	}
	if vv.Workers != 4 || !vv.ValidateState {
		t.Errorf("worker/validation settings not carried: %+v", vv)
	}
	if vv.Field.Cutoff != cfg.Cutoff {
		t.Errorf("field cutoff = %v, expected %v", vv.Field.Cutoff, cfg.Cutoff)
	}
}
