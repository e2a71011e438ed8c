package metrics

import "github.com/san-kum/mdsim/internal/md"

// MaxSpeed tracks the fastest particle speed seen over the run, a
// quick check that the timestep stayed adequate.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(sys *md.System, t float64) {
	if v := sys.MaxSpeed(); v > m.max {
		m.max = v
	}
}

func (m *MaxSpeed) Value() float64 {
	return m.max
}

func (m *MaxSpeed) Reset() {
	m.max = 0
}

// MeanSpeed averages the per-particle speed across all observations.
type MeanSpeed struct {
	name    string
	total   float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(sys *md.System, t float64) {
	n := sys.N()
	if n == 0 {
		return
	}
	sum := 0.0
	for i := range sys.Vel {
		sum += sys.Vel[i].Norm()
	}
	m.total += sum / float64(n)
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.total = 0
	m.samples = 0
}
