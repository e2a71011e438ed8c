package metrics

import (
	"math"

	"github.com/san-kum/mdsim/internal/md"
)

// EnergyDrift tracks the worst relative deviation of total energy
// from the first observed value.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(sys *md.System, t float64) {
	energy := sys.TotalEnergy()

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MeanTemperature averages the instantaneous temperature over the run.
type MeanTemperature struct {
	name    string
	total   float64
	samples int
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(sys *md.System, t float64) {
	m.total += sys.Temperature()
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanTemperature) Reset() {
	m.total = 0
	m.samples = 0
}
