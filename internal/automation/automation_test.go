package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mdsim/internal/storage"
)

const sampleScenario = `
name: stability check
description: two short runs at different timesteps
runs:
  - label: fine
    preset: pair
    steps: 20
    dt: 0.001
  - label: coarse
    preset: pair
    steps: 20
    dt: 0.002
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, sampleScenario))
	if err != nil {
		t.Fatal(err)
	}

	if s.Name != "stability check" {
		t.Errorf("Name = %q", s.Name)
	}
	if len(s.Runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(s.Runs))
	}
	if s.Runs[0].Label != "fine" || s.Runs[0].Dt != 0.001 {
		t.Errorf("first run = %+v", s.Runs[0])
	}
	if s.Runs[1].Steps != 20 || s.Runs[1].Preset != "pair" {
		t.Errorf("second run = %+v", s.Runs[1])
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigForOverrides(t *testing.T) {
	cfg, err := configFor(ScenarioRun{Preset: "pair", Steps: 50, Dt: 0.002, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Steps != 50 || cfg.Dt != 0.002 || cfg.Seed != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// untouched fields keep the preset's values
	if cfg.Particles != 2 || cfg.Init != "pair" {
		t.Errorf("preset values lost: %+v", cfg)
	}
}

func TestConfigForUnknownPreset(t *testing.T) {
	if _, err := configFor(ScenarioRun{Preset: "nope"}); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunScenario(t *testing.T) {
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	scenario := &Scenario{
		Name: "test",
		Runs: []ScenarioRun{
			{Label: "only", Preset: "pair", Steps: 10},
		},
	}

	outcomes, err := RunScenario(context.Background(), scenario, st)
	if err != nil {
		t.Fatal(err)
	}

	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	o := outcomes[0]
	if o.Label != "only" || o.RunID == "" || o.Steps != 10 {
		t.Errorf("outcome = %+v", o)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != o.RunID {
		t.Errorf("store has %d runs", len(runs))
	}
}

func TestRunScenarioBadRun(t *testing.T) {
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	scenario := &Scenario{
		Runs: []ScenarioRun{
			{Label: "good", Preset: "pair", Steps: 5},
			{Label: "bad", Preset: "missing"},
		},
	}

	outcomes, err := RunScenario(context.Background(), scenario, st)
	if err == nil {
		t.Fatal("expected error from unknown preset")
	}
	if len(outcomes) != 1 {
		t.Errorf("got %d outcomes before failure, want 1", len(outcomes))
	}
}
