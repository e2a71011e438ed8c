package analysis

import (
	"context"

	"github.com/san-kum/mdsim/internal/md"
)

// SweepPoint records integrator behavior at one timestep value.
type SweepPoint struct {
	Dt       float64
	Drift    float64
	WallHits int
	Err      error
}

// TimestepSweep reruns the same initial condition at each timestep value
// and records the relative energy drift, showing where the integrator
// loses stability. The setup closure must return a fresh system and
// integrator per call so runs stay independent.
func TimestepSweep(
	ctx context.Context,
	dts []float64,
	steps int,
	setup func(dt float64) (*md.System, *md.VelocityVerlet),
) []SweepPoint {
	results := make([]SweepPoint, 0, len(dts))

	for _, dt := range dts {
		sys, vv := setup(dt)
		res, err := vv.Run(ctx, sys, steps)

		point := SweepPoint{Dt: dt, Err: err}
		if res != nil {
			point.Drift = res.EnergyDrift
			point.WallHits = res.WallHits
			if point.Err == nil && len(res.Errors) > 0 {
				point.Err = res.Errors[0]
			}
		}
		results = append(results, point)
	}

	return results
}
