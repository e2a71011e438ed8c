package md

import (
	"context"
	"math"
)

// Recorder receives a position snapshot after every completed step.
// Implementations must copy the slice if they retain it.
type Recorder interface {
	Record(step int, t float64, pos []Vec3)
}

// Metric observes the system after every completed step and reduces
// the observations to a single value.
type Metric interface {
	Name() string
	Observe(sys *System, t float64)
	Value() float64
	Reset()
}

// VelocityVerlet advances a system with the velocity Verlet scheme:
// half-kick with the current forces, drift, wall reflection, force
// recomputation at the new positions, then the closing half-kick.
type VelocityVerlet struct {
	Dt      float64
	Field   LennardJones
	Box     Box
	Workers int

	// ValidateState halts a run when positions or velocities stop
	// being finite. Off by default; bad values then propagate.
	ValidateState bool

	metrics   []Metric
	recorders []Recorder
}

func NewVelocityVerlet(dt float64, field LennardJones, box Box) *VelocityVerlet {
	return &VelocityVerlet{
		Dt:    dt,
		Field: field,
		Box:   box,
	}
}

func (vv *VelocityVerlet) AddMetric(m Metric)     { vv.metrics = append(vv.metrics, m) }
func (vv *VelocityVerlet) AddRecorder(r Recorder) { vv.recorders = append(vv.recorders, r) }

// ComputeForces refreshes sys.Force and sys.Potential at the current
// positions.
func (vv *VelocityVerlet) ComputeForces(sys *System) {
	if vv.Workers > 1 {
		sys.Potential = vv.Field.AccumulateParallel(sys.Pos, sys.Force, vv.Workers)
		return
	}
	sys.Potential = vv.Field.Accumulate(sys.Pos, sys.Force)
}

// Step advances the system by one timestep and returns the number of
// particles reflected off a wall. sys.Force must hold the forces for
// the current positions; Run and ComputeForces establish this.
func (vv *VelocityVerlet) Step(sys *System) int {
	half := 0.5 * vv.Dt
	hits := 0

	for i := range sys.Pos {
		inv := 1.0 / sys.Mass[i]
		sys.Vel[i] = sys.Vel[i].Add(sys.Force[i].Scale(half * inv))
		sys.Pos[i] = sys.Pos[i].Add(sys.Vel[i].Scale(vv.Dt))

		p, v := vv.Box.Reflect(sys.Pos[i], sys.Vel[i])
		if p != sys.Pos[i] {
			hits++
		}
		sys.Pos[i], sys.Vel[i] = p, v
	}

	vv.ComputeForces(sys)

	for i := range sys.Vel {
		inv := 1.0 / sys.Mass[i]
		sys.Vel[i] = sys.Vel[i].Add(sys.Force[i].Scale(half * inv))
	}
	return hits
}

// Result collects per-run diagnostics. Trajectory frames go to any
// attached Recorder instead.
type Result struct {
	StepsTaken    int
	WallHits      int
	InitialEnergy float64
	FinalEnergy   float64
	EnergyDrift   float64
	Times         []float64
	Kinetic       []float64
	Potential     []float64
	Metrics       map[string]float64
	Errors        []error
}

// Total returns the per-step total energy series.
func (r *Result) Total() []float64 {
	total := make([]float64, len(r.Kinetic))
	for i := range total {
		total[i] = r.Kinetic[i] + r.Potential[i]
	}
	return total
}

// Run integrates sys forward by the given number of steps, recording
// snapshots and metric observations after each step. The relative
// drift of total energy between the first and last state is reported
// in the result.
func (vv *VelocityVerlet) Run(ctx context.Context, sys *System, steps int) (*Result, error) {
	if err := vv.validate(sys, steps); err != nil {
		return nil, err
	}

	result := &Result{
		Times:     make([]float64, 0, steps),
		Kinetic:   make([]float64, 0, steps),
		Potential: make([]float64, 0, steps),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range vv.metrics {
		m.Reset()
	}

	vv.ComputeForces(sys)
	result.InitialEnergy = sys.TotalEnergy()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.WallHits += vv.Step(sys)
		t := float64(i+1) * vv.Dt
		result.StepsTaken++

		if vv.ValidateState && !sys.IsValid() {
			result.Errors = append(result.Errors, &StepError{
				Step:    i,
				Time:    t,
				Wrapped: ErrInvalidState,
			})
			break
		}

		result.Times = append(result.Times, t)
		result.Kinetic = append(result.Kinetic, sys.KineticEnergy())
		result.Potential = append(result.Potential, sys.Potential)

		for _, r := range vv.recorders {
			r.Record(i, t, sys.Pos)
		}
		for _, m := range vv.metrics {
			m.Observe(sys, t)
		}
	}

	result.FinalEnergy = sys.TotalEnergy()
	if result.InitialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy-result.InitialEnergy) /
			math.Abs(result.InitialEnergy)
	}

	for _, m := range vv.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (vv *VelocityVerlet) validate(sys *System, steps int) error {
	if vv.Dt <= 0 {
		return ErrBadTimestep
	}
	if steps <= 0 {
		return ErrBadSteps
	}
	if sys.N() == 0 {
		return ErrNoParticles
	}
	for _, m := range sys.Mass {
		if m <= 0 {
			return ErrBadMass
		}
	}
	if err := vv.Field.Validate(); err != nil {
		return err
	}
	return vv.Box.Validate()
}
