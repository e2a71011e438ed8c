package md

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

// latticeGas builds a mild, well-separated starting state: grid
// positions with small random velocities. Keeps pair forces bounded so
// integration tests stay numerically tame.
func latticeGas(n int, spacing, vmax float64, seed int64) *System {
	sys := LatticeSystem(n, spacing)
	rng := rand.New(rand.NewSource(seed))
	for i := range sys.Vel {
		sys.Vel[i] = Vec3{
			X: uniform(rng, -vmax, vmax),
			Y: uniform(rng, -vmax, vmax),
			Z: uniform(rng, -vmax, vmax),
		}
	}
	sys.ZeroMomentum()
	return sys
}

func TestStepFreeParticleDrift(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	vv := NewVelocityVerlet(0.25, lj, Cube(100))

	sys := NewSystem(1)
	sys.Vel[0] = Vec3{1, -2, 0.5}
	vv.ComputeForces(sys)

	for i := 0; i < 4; i++ {
		vv.Step(sys)
	}

	// A lone particle feels no force: straight-line motion for t=1.
	if !vecClose(sys.Pos[0], Vec3{1, -2, 0.5}, 1e-12) {
		t.Errorf("position = %v, expected {1 -2 0.5}", sys.Pos[0])
	}
	if !vecClose(sys.Vel[0], Vec3{1, -2, 0.5}, 1e-12) {
		t.Errorf("velocity changed: %v", sys.Vel[0])
	}
}

func TestStepWallBounce(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	vv := NewVelocityVerlet(0.1, lj, Cube(5))

	sys := NewSystem(1)
	sys.Pos[0] = Vec3{4.9, 0, 0}
	sys.Vel[0] = Vec3{3, 0, 0}
	vv.ComputeForces(sys)

	hits := vv.Step(sys)

	// Drift carries the particle to 5.2; the wall mirrors it to 4.8
	// and flips the velocity.
	if hits != 1 {
		t.Errorf("hits = %d, expected 1", hits)
	}
	if !vecClose(sys.Pos[0], Vec3{4.8, 0, 0}, 1e-12) {
		t.Errorf("position = %v, expected {4.8 0 0}", sys.Pos[0])
	}
	if !vecClose(sys.Vel[0], Vec3{-3, 0, 0}, 1e-12) {
		t.Errorf("velocity = %v, expected {-3 0 0}", sys.Vel[0])
	}
}

func TestRunBouncingParticleBookkeeping(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	vv := NewVelocityVerlet(0.125, lj, Cube(1))

	// Speed 2 with dt 0.125 moves exactly 0.25 per step, so every
	// value below is binary-exact: wall crossings land on steps 5,
	// 13 and 21.
	sys := NewSystem(1)
	sys.Vel[0] = Vec3{2, 0, 0}

	result, err := vv.Run(context.Background(), sys, 24)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.WallHits != 3 {
		t.Errorf("wall hits = %d, expected 3", result.WallHits)
	}
	if sys.Pos[0].X != 0 {
		t.Errorf("final x = %v, expected 0", sys.Pos[0].X)
	}
	if sys.Vel[0].X != -2 {
		t.Errorf("final vx = %v, expected -2", sys.Vel[0].X)
	}

	// Elastic walls leave the kinetic energy untouched.
	if result.EnergyDrift != 0 {
		t.Errorf("energy drift = %v, expected exactly 0", result.EnergyDrift)
	}
}

func TestRunConfinesParticles(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	box := Cube(5)
	vv := NewVelocityVerlet(0.005, lj, box)

	sys := latticeGas(27, 1.8, 1, 5)
	rec := &frameCheck{box: box, t: t}
	vv.AddRecorder(rec)

	if _, err := vv.Run(context.Background(), sys, 400); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if rec.frames != 400 {
		t.Errorf("recorded %d frames, expected 400", rec.frames)
	}
}

type frameCheck struct {
	box    Box
	t      *testing.T
	frames int
}

func (fc *frameCheck) Record(step int, time float64, pos []Vec3) {
	fc.frames++
	for i, p := range pos {
		if !fc.box.Contains(p) {
			fc.t.Errorf("step %d: particle %d escaped to %v", step, i, p)
			return
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}

	run := func() *System {
		vv := NewVelocityVerlet(0.005, lj, Cube(5))
		sys := latticeGas(27, 1.8, 1, 9)
		if _, err := vv.Run(context.Background(), sys, 200); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return sys
	}

	a, b := run(), run()
	for i := range a.Pos {
		if a.Pos[i] != b.Pos[i] || a.Vel[i] != b.Vel[i] {
			t.Fatalf("runs diverged at particle %d: %v vs %v", i, a.Pos[i], b.Pos[i])
		}
	}
}

func TestRunParallelMatchesSerial(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}

	run := func(workers int) *System {
		vv := NewVelocityVerlet(0.002, lj, Cube(6))
		vv.Workers = workers
		sys := latticeGas(128, 1.5, 0.5, 21)
		if _, err := vv.Run(context.Background(), sys, 50); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return sys
	}

	serial, parallel := run(1), run(4)
	for i := range serial.Pos {
		if serial.Pos[i].Sub(parallel.Pos[i]).Norm() > 1e-8 {
			t.Fatalf("particle %d: serial %v, parallel %v",
				i, serial.Pos[i], parallel.Pos[i])
		}
	}
}

func TestRunSeriesAndTimes(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	vv := NewVelocityVerlet(0.01, lj, Cube(5))
	sys := latticeGas(8, 1.8, 0.5, 3)

	result, err := vv.Run(context.Background(), sys, 100)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("StepsTaken = %d, expected 100", result.StepsTaken)
	}
	if len(result.Times) != 100 || len(result.Kinetic) != 100 || len(result.Potential) != 100 {
		t.Fatalf("series lengths %d/%d/%d, expected 100 each",
			len(result.Times), len(result.Kinetic), len(result.Potential))
	}
	if math.Abs(result.Times[0]-0.01) > 1e-15 || math.Abs(result.Times[99]-1.0) > 1e-12 {
		t.Errorf("times start %v end %v, expected 0.01 and 1.0",
			result.Times[0], result.Times[99])
	}

	total := result.Total()
	for i := range total {
		want := result.Kinetic[i] + result.Potential[i]
		if total[i] != want {
			t.Fatalf("Total()[%d] = %v, expected %v", i, total[i], want)
		}
	}
}

type countingMetric struct {
	observations int
}

func (c *countingMetric) Name() string { return "observations" }

func (c *countingMetric) Observe(sys *System, t float64) {
	c.observations++
}

func (c *countingMetric) Value() float64 { return float64(c.observations) }

func (c *countingMetric) Reset() { c.observations = 0 }

func TestRunMetrics(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	vv := NewVelocityVerlet(0.01, lj, Cube(5))

	m := &countingMetric{observations: 99}
	vv.AddMetric(m)

	sys := latticeGas(8, 1.8, 0.5, 4)
	result, err := vv.Run(context.Background(), sys, 50)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got, ok := result.Metrics["observations"]; !ok || got != 50 {
		t.Errorf("metric value = %v (present %v), expected 50 after reset", got, ok)
	}
}

func TestRunValidation(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	box := Cube(5)

	badMass := NewSystem(2)
	badMass.Mass[1] = 0

	tests := []struct {
		name  string
		vv    *VelocityVerlet
		sys   *System
		steps int
		want  error
	}{
		{"zero dt", NewVelocityVerlet(0, lj, box), NewSystem(2), 10, ErrBadTimestep},
		{"negative dt", NewVelocityVerlet(-0.1, lj, box), NewSystem(2), 10, ErrBadTimestep},
		{"zero steps", NewVelocityVerlet(0.01, lj, box), NewSystem(2), 0, ErrBadSteps},
		{"empty system", NewVelocityVerlet(0.01, lj, box), NewSystem(0), 10, ErrNoParticles},
		{"zero mass", NewVelocityVerlet(0.01, lj, box), badMass, 10, ErrBadMass},
		{"bad field", NewVelocityVerlet(0.01, LennardJones{}, box), NewSystem(2), 10, ErrBadField},
		{"bad box", NewVelocityVerlet(0.01, lj, Cube(0)), NewSystem(2), 10, ErrBadBox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.vv.Run(context.Background(), tt.sys, tt.steps)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestRunContextCancel(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	vv := NewVelocityVerlet(0.01, lj, Cube(5))
	sys := latticeGas(8, 1.8, 0.5, 6)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := vv.Run(ctx, sys, 1000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected zero steps before cancellation took effect")
	}
}

func TestRunValidateStateHalts(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	vv := NewVelocityVerlet(0.01, lj, Cube(5))
	vv.ValidateState = true

	// Coincident particles divide by zero separation; the resulting
	// NaN forces poison the state on the first step.
	sys := NewSystem(2)

	result, err := vv.Run(context.Background(), sys, 100)
	if err != nil {
		t.Fatalf("run returned setup error: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %d", len(result.Errors))
	}
	if !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Errorf("recorded error %v does not wrap ErrInvalidState", result.Errors[0])
	}
	if result.StepsTaken != 1 {
		t.Errorf("StepsTaken = %d, expected halt after first step", result.StepsTaken)
	}

	var stepErr *StepError
	if !errors.As(result.Errors[0], &stepErr) || stepErr.Step != 0 {
		t.Errorf("expected StepError at step 0, got %+v", result.Errors[0])
	}
}

func TestEnsembleRunsReplicas(t *testing.T) {
	lj := LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	base := NewVelocityVerlet(0.005, lj, Cube(5))

	ens := NewEnsemble(base, func(seed int64) *System {
		return latticeGas(8, 1.8, 0.5, seed)
	}, 4, 100)

	results, err := ens.Run(context.Background(), 50)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, expected 4", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 50 {
			t.Errorf("replica %d took %d steps, expected 50", i, r.StepsTaken)
		}
	}

	// Different seeds, different trajectories.
	if results[0].FinalEnergy == results[1].FinalEnergy {
		t.Error("replicas with different seeds produced identical energies")
	}
}
