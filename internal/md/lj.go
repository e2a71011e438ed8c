package md

import "math"

// LennardJones is the truncated 12-6 pair potential
//
//	U(r) = 4ε[(σ/r)^12 − (σ/r)^6]   for r < Cutoff
//	U(r) = 0                        for r ≥ Cutoff
//
// with the force magnitude F(r) = 24ε[2(σ/r)^12 − (σ/r)^6]/r directed
// along the line between the pair. Interactions at zero separation are
// not guarded; they produce Inf/NaN that propagate through the state.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64
}

func (lj LennardJones) Validate() error {
	if lj.Epsilon <= 0 || lj.Sigma <= 0 || lj.Cutoff <= 0 {
		return ErrBadField
	}
	return nil
}

// Potential returns U(r) for a single pair at separation r.
func (lj LennardJones) Potential(r float64) float64 {
	if r >= lj.Cutoff {
		return 0
	}
	sr := lj.Sigma / r
	s6 := sr * sr * sr * sr * sr * sr
	return 4 * lj.Epsilon * (s6*s6 - s6)
}

// ForceMag returns F(r) for a single pair at separation r. Positive
// values are repulsive.
func (lj LennardJones) ForceMag(r float64) float64 {
	if r >= lj.Cutoff {
		return 0
	}
	sr := lj.Sigma / r
	s6 := sr * sr * sr * sr * sr * sr
	return 24 * lj.Epsilon * (2*s6*s6 - s6) / r
}

// PairForce returns the force on the particle at offset d from its
// partner, together with the pair potential energy. The force on the
// partner is the exact negation.
func (lj LennardJones) PairForce(d Vec3) (Vec3, float64) {
	r2 := d.Norm2()
	if r2 >= lj.Cutoff*lj.Cutoff {
		return Vec3{}, 0
	}
	inv := 1.0 / r2
	s2 := lj.Sigma * lj.Sigma * inv
	s6 := s2 * s2 * s2
	s12 := s6 * s6
	coef := 24 * lj.Epsilon * (2*s12 - s6) * inv
	return d.Scale(coef), 4 * lj.Epsilon * (s12 - s6)
}

// Minimum returns the separation r_min = 2^(1/6)σ at which the pair
// force vanishes.
func (lj LennardJones) Minimum() float64 {
	return math.Pow(2, 1.0/6.0) * lj.Sigma
}
