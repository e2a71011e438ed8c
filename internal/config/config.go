package config

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/md"
)

const (
	DefaultParticles = 10
	DefaultSteps     = 500
	DefaultDt        = 0.005
	DefaultBoxHalf   = 5.0
	DefaultEpsilon   = 1.0
	DefaultSigma     = 1.0
	DefaultCutoff    = 2.5
	DefaultMass      = 1.0
	DefaultSeed      = 42
	DefaultMargin    = 2.0
	DefaultMaxSpeed  = 2.0
	DefaultSpacing   = 1.5
)

// Config describes one simulation run. Lengths are in units of σ,
// energies in units of ε, and the box spans [-box_half, box_half]
// along each axis.
type Config struct {
	Particles int     `yaml:"particles"`
	Steps     int     `yaml:"steps"`
	Dt        float64 `yaml:"dt"`
	BoxHalf   float64 `yaml:"box_half"`
	Epsilon   float64 `yaml:"epsilon"`
	Sigma     float64 `yaml:"sigma"`
	Cutoff    float64 `yaml:"cutoff"`
	Mass      float64 `yaml:"mass"`
	Seed      int64   `yaml:"seed"`

	// Init selects the starting arrangement: "random" scatters
	// particles with margin and max_speed, "lattice" places them on a
	// grid with the given spacing, "pair" puts two particles spacing
	// apart at rest.
	Init         string  `yaml:"init"`
	Margin       float64 `yaml:"margin"`
	MaxSpeed     float64 `yaml:"max_speed"`
	Spacing      float64 `yaml:"spacing"`
	ZeroMomentum bool    `yaml:"zero_momentum"`

	Workers       int  `yaml:"workers"`
	ValidateState bool `yaml:"validate_state"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles: DefaultParticles,
		Steps:     DefaultSteps,
		Dt:        DefaultDt,
		BoxHalf:   DefaultBoxHalf,
		Epsilon:   DefaultEpsilon,
		Sigma:     DefaultSigma,
		Cutoff:    DefaultCutoff,
		Mass:      DefaultMass,
		Seed:      DefaultSeed,
		Init:      "random",
		Margin:    DefaultMargin,
		MaxSpeed:  DefaultMaxSpeed,
		Spacing:   DefaultSpacing,
		Workers:   1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Validate rejects configurations that cannot produce a well-posed
// run. Everything is checked up front so a run never starts on bad
// parameters.
func (c *Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("particles must be positive, got %d", c.Particles)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.BoxHalf <= 0 {
		return fmt.Errorf("box_half must be positive, got %f", c.BoxHalf)
	}
	if c.Epsilon <= 0 || c.Sigma <= 0 || c.Cutoff <= 0 {
		return fmt.Errorf("epsilon, sigma and cutoff must be positive, got %f/%f/%f",
			c.Epsilon, c.Sigma, c.Cutoff)
	}
	if c.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %f", c.Mass)
	}

	switch c.Init {
	case "random":
		if c.Margin < 0 || c.Margin >= c.BoxHalf {
			return fmt.Errorf("margin must be in [0, box_half), got %f", c.Margin)
		}
		if c.MaxSpeed < 0 {
			return fmt.Errorf("max_speed must be non-negative, got %f", c.MaxSpeed)
		}
		// The reflector handles one wall crossing per step; a particle
		// faster than box_half/dt would overshoot it.
		if c.MaxSpeed*c.Dt >= c.BoxHalf {
			return fmt.Errorf("dt %f too long for max_speed %f in box_half %f",
				c.Dt, c.MaxSpeed, c.BoxHalf)
		}
	case "lattice":
		if c.Spacing <= 0 {
			return fmt.Errorf("spacing must be positive, got %f", c.Spacing)
		}
		side := int(math.Ceil(math.Cbrt(float64(c.Particles))))
		if extent := float64(side-1) / 2 * c.Spacing; extent >= c.BoxHalf {
			return fmt.Errorf("lattice of %d particles at spacing %f does not fit box_half %f",
				c.Particles, c.Spacing, c.BoxHalf)
		}
	case "pair":
		if c.Particles != 2 {
			return fmt.Errorf("pair init requires exactly 2 particles, got %d", c.Particles)
		}
		if c.Spacing <= 0 || c.Spacing >= 2*c.BoxHalf {
			return fmt.Errorf("pair spacing must be in (0, 2*box_half), got %f", c.Spacing)
		}
	default:
		return fmt.Errorf("unknown init mode %q", c.Init)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

func (c *Config) Field() md.LennardJones {
	return md.LennardJones{Epsilon: c.Epsilon, Sigma: c.Sigma, Cutoff: c.Cutoff}
}

func (c *Config) Box() md.Box {
	return md.Cube(c.BoxHalf)
}

// NewSystem builds the starting particle state for this
// configuration. The same config and seed always produce the same
// system.
func (c *Config) NewSystem() *md.System {
	rng := rand.New(rand.NewSource(c.Seed))

	var sys *md.System
	switch c.Init {
	case "lattice":
		sys = md.LatticeSystem(c.Particles, c.Spacing)
		addRandomVelocities(sys, c.MaxSpeed, rng)
	case "pair":
		sys = md.NewSystem(2)
		sys.Pos[0] = md.Vec3{X: -c.Spacing / 2}
		sys.Pos[1] = md.Vec3{X: c.Spacing / 2}
	default:
		sys = md.RandomSystem(c.Particles, c.Box(), c.Margin, c.MaxSpeed, rng)
	}

	for i := range sys.Mass {
		sys.Mass[i] = c.Mass
	}
	if c.ZeroMomentum {
		sys.ZeroMomentum()
	}
	return sys
}

func addRandomVelocities(sys *md.System, maxSpeed float64, rng *rand.Rand) {
	if maxSpeed <= 0 {
		return
	}
	for i := range sys.Vel {
		sys.Vel[i] = md.Vec3{
			X: (2*rng.Float64() - 1) * maxSpeed,
			Y: (2*rng.Float64() - 1) * maxSpeed,
			Z: (2*rng.Float64() - 1) * maxSpeed,
		}
	}
}

// NewIntegrator builds the velocity Verlet stepper for this
// configuration.
func (c *Config) NewIntegrator() *md.VelocityVerlet {
	vv := md.NewVelocityVerlet(c.Dt, c.Field(), c.Box())
	vv.Workers = c.Workers
	vv.ValidateState = c.ValidateState
	return vv
}
