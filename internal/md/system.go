package md

import (
	"math"
	"math/rand"
)

// System holds the particle state as parallel slices indexed by
// particle. Potential carries the pair energy recorded by the most
// recent force evaluation.
type System struct {
	Pos   []Vec3
	Vel   []Vec3
	Force []Vec3
	Mass  []float64

	Potential float64
}

// NewSystem creates a system of n particles at the origin with zero
// velocity and unit mass.
func NewSystem(n int) *System {
	masses := make([]float64, n)
	for i := range masses {
		masses[i] = 1.0
	}
	return &System{
		Pos:   make([]Vec3, n),
		Vel:   make([]Vec3, n),
		Force: make([]Vec3, n),
		Mass:  masses,
	}
}

// RandomSystem places n unit-mass particles uniformly inside box,
// inset by margin from every wall, with velocity components drawn
// uniformly from [-maxSpeed, maxSpeed].
func RandomSystem(n int, box Box, margin, maxSpeed float64, rng *rand.Rand) *System {
	sys := NewSystem(n)
	for i := 0; i < n; i++ {
		sys.Pos[i] = Vec3{
			X: uniform(rng, margin-box.Half.X, box.Half.X-margin),
			Y: uniform(rng, margin-box.Half.Y, box.Half.Y-margin),
			Z: uniform(rng, margin-box.Half.Z, box.Half.Z-margin),
		}
		sys.Vel[i] = Vec3{
			X: uniform(rng, -maxSpeed, maxSpeed),
			Y: uniform(rng, -maxSpeed, maxSpeed),
			Z: uniform(rng, -maxSpeed, maxSpeed),
		}
	}
	return sys
}

// LatticeSystem places n unit-mass particles at rest on a cubic grid
// with the given spacing, centered at the origin.
func LatticeSystem(n int, spacing float64) *System {
	sys := NewSystem(n)
	side := int(math.Ceil(math.Cbrt(float64(n))))
	offset := float64(side-1) / 2.0
	i := 0
	for x := 0; x < side && i < n; x++ {
		for y := 0; y < side && i < n; y++ {
			for z := 0; z < side && i < n; z++ {
				sys.Pos[i] = Vec3{
					X: (float64(x) - offset) * spacing,
					Y: (float64(y) - offset) * spacing,
					Z: (float64(z) - offset) * spacing,
				}
				i++
			}
		}
	}
	return sys
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func (s *System) N() int { return len(s.Pos) }

func (s *System) Clone() *System {
	c := &System{
		Pos:       make([]Vec3, len(s.Pos)),
		Vel:       make([]Vec3, len(s.Vel)),
		Force:     make([]Vec3, len(s.Force)),
		Mass:      make([]float64, len(s.Mass)),
		Potential: s.Potential,
	}
	copy(c.Pos, s.Pos)
	copy(c.Vel, s.Vel)
	copy(c.Force, s.Force)
	copy(c.Mass, s.Mass)
	return c
}

func (s *System) KineticEnergy() float64 {
	ke := 0.0
	for i := range s.Vel {
		ke += 0.5 * s.Mass[i] * s.Vel[i].Norm2()
	}
	return ke
}

// TotalEnergy is the kinetic energy plus the potential recorded by the
// last force evaluation.
func (s *System) TotalEnergy() float64 {
	return s.KineticEnergy() + s.Potential
}

// Temperature returns 2·KE/(3N) in reduced units (k_B = 1).
func (s *System) Temperature() float64 {
	n := s.N()
	if n == 0 {
		return 0
	}
	return 2 * s.KineticEnergy() / (3 * float64(n))
}

func (s *System) Momentum() Vec3 {
	var p Vec3
	for i := range s.Vel {
		p = p.Add(s.Vel[i].Scale(s.Mass[i]))
	}
	return p
}

func (s *System) MaxSpeed() float64 {
	max := 0.0
	for i := range s.Vel {
		if v := s.Vel[i].Norm(); v > max {
			max = v
		}
	}
	return max
}

// ZeroMomentum subtracts the center-of-mass velocity so the total
// momentum becomes zero.
func (s *System) ZeroMomentum() {
	total := 0.0
	for _, m := range s.Mass {
		total += m
	}
	if total == 0 {
		return
	}
	drift := s.Momentum().Scale(1 / total)
	for i := range s.Vel {
		s.Vel[i] = s.Vel[i].Sub(drift)
	}
}

// IsValid reports whether all positions and velocities are finite.
func (s *System) IsValid() bool {
	for i := range s.Pos {
		if !s.Pos[i].IsFinite() || !s.Vel[i].IsFinite() {
			return false
		}
	}
	return true
}
