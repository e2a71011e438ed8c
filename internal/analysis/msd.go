package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mdsim/internal/md"
)

// MSD holds the mean squared displacement curve.
type MSD struct {
	Lags   []float64 // lag times
	Values []float64 // average squared displacement per lag
}

// MeanSquaredDisplacement computes the MSD over every time origin in the
// trajectory. Each lag averages across all origin pairs and all particles,
// so late lags carry fewer samples than early ones.
func MeanSquaredDisplacement(frames [][]md.Vec3, dt float64) *MSD {
	tot := len(frames)
	if tot < 2 || dt <= 0 {
		return nil
	}
	n := len(frames[0])
	if n == 0 {
		return nil
	}

	res := make([]float64, tot-1)
	for i := 0; i < tot-1; i++ {
		for j := i + 1; j < tot; j++ {
			lag := j - i - 1
			for k := 0; k < n; k++ {
				d := frames[j][k].Sub(frames[i][k])
				res[lag] += d.Norm2()
			}
		}
	}

	msd := &MSD{
		Lags:   make([]float64, tot-1),
		Values: res,
	}
	for i := range res {
		res[i] /= float64((tot - 1 - i) * n)
		msd.Lags[i] = float64(i+1) * dt
	}
	return msd
}

// DiffusionCoefficient estimates the self-diffusion coefficient from the
// Einstein relation msd(t) = 6*D*t, fitting the second half of the curve
// to skip the short-time ballistic regime.
func (m *MSD) DiffusionCoefficient() float64 {
	half := len(m.Lags) / 2
	if len(m.Lags)-half < 2 {
		half = 0
	}
	if len(m.Lags)-half < 2 {
		return 0
	}
	_, slope := stat.LinearRegression(m.Lags[half:], m.Values[half:], nil, false)
	return slope / 6
}
