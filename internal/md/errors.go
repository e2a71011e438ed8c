package md

import "errors"

// Domain errors for simulation setup and stepping.
var (
	// ErrNoParticles indicates a run was requested on an empty system.
	ErrNoParticles = errors.New("md: system has no particles")

	// ErrBadMass indicates a non-positive particle mass.
	ErrBadMass = errors.New("md: particle mass must be positive")

	// ErrBadTimestep indicates a non-positive integration timestep.
	ErrBadTimestep = errors.New("md: timestep must be positive")

	// ErrBadSteps indicates a non-positive step count.
	ErrBadSteps = errors.New("md: step count must be positive")

	// ErrBadBox indicates a box with a non-positive half-extent.
	ErrBadBox = errors.New("md: box half-extents must be positive")

	// ErrBadField indicates non-positive potential parameters.
	ErrBadField = errors.New("md: potential parameters must be positive")

	// ErrInvalidState indicates NaN or Inf in positions or velocities.
	ErrInvalidState = errors.New("md: invalid state (NaN or Inf detected)")
)

// StepError wraps an error with the step at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return e.Wrapped.Error()
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
