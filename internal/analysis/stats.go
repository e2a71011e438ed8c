package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for a scalar series.
type Summary struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Summarize computes basic statistics over the series.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	return Summary{
		Mean: stat.Mean(xs, nil),
		Std:  stat.StdDev(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
	}
}
