package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mdsim/internal/md"
)

// RDF holds the radial distribution function g(r).
type RDF struct {
	Bins   []float64 // bin centers
	Values []float64 // g(r) per bin
}

// RadialDistribution histograms pair separations across all frames and
// normalizes each shell against the ideal gas expectation at the run's
// density. Separations are binned out to the smallest box half-width;
// without periodic wrapping the tail falls below one as shells leave
// the box, so the curve is most meaningful at short range.
func RadialDistribution(frames [][]md.Vec3, box md.Box, bins int) *RDF {
	if len(frames) == 0 || bins <= 0 {
		return nil
	}
	n := len(frames[0])
	if n < 2 {
		return nil
	}

	rMax := math.Min(box.Half.X, math.Min(box.Half.Y, box.Half.Z))
	if rMax <= 0 {
		return nil
	}
	dr := rMax / float64(bins)
	edges := floats.Span(make([]float64, bins+1), 0, rMax)

	counts := make([]float64, bins)
	for _, f := range frames {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				r := f[j].Sub(f[i]).Norm()
				if r >= rMax {
					continue
				}
				counts[int(r/dr)]++
			}
		}
	}

	pairDensity := float64(n*(n-1)/2) / box.Volume()
	perShell := pairDensity * float64(len(frames))

	rdf := &RDF{
		Bins:   make([]float64, bins),
		Values: make([]float64, bins),
	}
	for b := range counts {
		rc := (edges[b] + edges[b+1]) / 2
		rdf.Bins[b] = rc
		ideal := perShell * 4 * math.Pi * rc * rc * dr
		if ideal > 0 {
			rdf.Values[b] = counts[b] / ideal
		}
	}
	return rdf
}
