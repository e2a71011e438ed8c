// Package automation runs scripted sequences of simulations described
// in a YAML scenario file, saving each run to the store.
package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/trajectory"
)

// Scenario defines a scripted simulation sequence.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is a single run in a scenario. Zero-valued fields keep
// the preset's value.
type ScenarioRun struct {
	Label     string  `yaml:"label"`
	Preset    string  `yaml:"preset"`
	Particles int     `yaml:"particles"`
	Steps     int     `yaml:"steps"`
	Dt        float64 `yaml:"dt"`
	Seed      int64   `yaml:"seed"`
	MaxSpeed  float64 `yaml:"max_speed"`
	Workers   int     `yaml:"workers"`
}

// Outcome summarizes one completed scenario run.
type Outcome struct {
	Label    string
	RunID    string
	Steps    int
	WallHits int
	Drift    float64
	Elapsed  time.Duration
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// configFor resolves one scenario run against its preset.
func configFor(run ScenarioRun) (*config.Config, error) {
	name := run.Preset
	if name == "" {
		name = "demo"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}

	if run.Particles > 0 {
		cfg.Particles = run.Particles
	}
	if run.Steps > 0 {
		cfg.Steps = run.Steps
	}
	if run.Dt > 0 {
		cfg.Dt = run.Dt
	}
	if run.Seed != 0 {
		cfg.Seed = run.Seed
	}
	if run.MaxSpeed > 0 {
		cfg.MaxSpeed = run.MaxSpeed
	}
	if run.Workers > 0 {
		cfg.Workers = run.Workers
	}

	return cfg, cfg.Validate()
}

// RunScenario executes all runs in order and saves each to the store.
// The first failure stops the scenario; completed outcomes are still
// returned.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		label := run.Label
		if label == "" {
			label = fmt.Sprintf("run %d", i+1)
		}
		fmt.Printf("running %d/%d: %s\n", i+1, len(scenario.Runs), label)

		cfg, err := configFor(run)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		sys := cfg.NewSystem()
		vv := cfg.NewIntegrator()
		vv.AddMetric(metrics.NewEnergyDrift())
		vv.AddMetric(metrics.NewMeanTemperature())
		vv.AddMetric(metrics.NewMaxSpeed())

		rec := trajectory.NewMemory(cfg.Steps)
		vv.AddRecorder(rec)

		start := time.Now()
		result, err := vv.Run(ctx, sys, cfg.Steps)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		runID, err := st.Save(cfg, result, rec.Frames())
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		outcomes = append(outcomes, Outcome{
			Label:    label,
			RunID:    runID,
			Steps:    result.StepsTaken,
			WallHits: result.WallHits,
			Drift:    result.EnergyDrift,
			Elapsed:  time.Since(start),
		})
	}

	return outcomes, nil
}
