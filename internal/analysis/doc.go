// Package analysis provides trajectory post-processing tools.
//
// The package computes the standard observables from stored runs:
//
//   - [MeanSquaredDisplacement]: sliding-origin MSD with a self-diffusion estimate
//   - [VelocityAutocorrelation]: normalized VACF and its magnitude spectrum
//   - [RadialDistribution]: pair separation histogram normalized to g(r)
//   - [Summarize]: descriptive statistics for scalar series
//
// # Diffusion
//
// The self-diffusion coefficient follows from the Einstein relation:
//
//	msd := analysis.MeanSquaredDisplacement(frames, dt)
//	d := msd.DiffusionCoefficient()
package analysis
