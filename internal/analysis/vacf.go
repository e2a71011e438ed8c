package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/mdsim/internal/md"
)

// VACF holds the normalized velocity autocorrelation curve.
type VACF struct {
	Lags   []float64 // lag times
	Values []float64 // correlation per lag, Values[0] == 1
}

// VelocityAutocorrelation computes the VACF from finite-difference
// velocities between consecutive frames, averaged over every time origin
// and normalized so the zero-lag value is one. Frames that straddle a
// wall bounce contribute the post-reflection velocity.
func VelocityAutocorrelation(frames [][]md.Vec3, dt float64) *VACF {
	tot := len(frames) - 1
	if tot < 1 || dt <= 0 {
		return nil
	}
	n := len(frames[0])
	if n == 0 {
		return nil
	}

	vel := make([][]md.Vec3, tot)
	for i := range vel {
		vel[i] = make([]md.Vec3, n)
		for k := 0; k < n; k++ {
			vel[i][k] = frames[i+1][k].Sub(frames[i][k]).Scale(1 / dt)
		}
	}

	res := make([]float64, tot)
	for i := 0; i < tot; i++ {
		for j := i; j < tot; j++ {
			lag := j - i
			for k := 0; k < n; k++ {
				res[lag] += vel[i][k].Dot(vel[j][k])
			}
		}
	}
	for lag := range res {
		res[lag] /= float64((tot - lag) * n)
	}

	if c0 := res[0]; c0 != 0 {
		for lag := range res {
			res[lag] /= c0
		}
	}

	vacf := &VACF{
		Lags:   make([]float64, tot),
		Values: res,
	}
	for i := range vacf.Lags {
		vacf.Lags[i] = float64(i) * dt
	}
	return vacf
}

// Spectrum returns the magnitude spectrum of the correlation curve up to
// the Nyquist frequency, a proxy for the vibrational density of states.
func (v *VACF) Spectrum() []float64 {
	coeffs := fft.FFTReal(v.Values)
	out := make([]float64, len(coeffs)/2)
	for i := range out {
		out[i] = cmplx.Abs(coeffs[i])
	}
	return out
}
