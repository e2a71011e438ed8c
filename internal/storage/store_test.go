package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/trajectory"
)

func sampleRun() (*config.Config, *md.Result, [][]md.Vec3) {
	cfg := config.DefaultConfig()
	cfg.Particles = 2

	result := &md.Result{
		StepsTaken:  2,
		WallHits:    1,
		EnergyDrift: 0.002,
		Times:       []float64{0.005, 0.01},
		Kinetic:     []float64{1.5, 1.4},
		Potential:   []float64{-0.5, -0.4},
		Metrics:     map[string]float64{"max_speed": 2.5},
	}
	frames := [][]md.Vec3{
		{{X: 1, Y: 2, Z: 3}, {X: -1, Y: -2, Z: -3}},
		{{X: 1.1, Y: 2.1, Z: 3.1}, {X: -1.1, Y: -2.1, Z: -3.1}},
	}
	return cfg, result, frames
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result, frames := sampleRun()
	runID, err := st.Save(cfg, result, frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Particles != 2 || meta.Seed != cfg.Seed {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.WallHits != 1 || meta.EnergyDrift != 0.002 {
		t.Errorf("run summary mismatch: %+v", meta)
	}
	if meta.Metrics["max_speed"] != 2.5 {
		t.Errorf("metrics not persisted: %v", meta.Metrics)
	}
}

func TestStoreFrameRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result, frames := sampleRun()
	runID, err := st.Save(cfg, result, frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, times, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(loaded) != 2 || len(times) != 2 {
		t.Fatalf("got %d frames, %d times, expected 2 each", len(loaded), len(times))
	}

	// Stored with six decimal places.
	for i := range frames {
		for j := range frames[i] {
			if math.Abs(loaded[i][j].X-frames[i][j].X) > 1e-6 ||
				math.Abs(loaded[i][j].Y-frames[i][j].Y) > 1e-6 ||
				math.Abs(loaded[i][j].Z-frames[i][j].Z) > 1e-6 {
				t.Errorf("frame %d particle %d: got %v, expected %v",
					i, j, loaded[i][j], frames[i][j])
			}
		}
	}
	if math.Abs(times[1]-0.01) > 1e-6 {
		t.Errorf("time[1] = %v, expected 0.01", times[1])
	}
}

func TestStoreEnergiesRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result, frames := sampleRun()
	runID, err := st.Save(cfg, result, frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	times, kinetic, potential, err := st.LoadEnergies(runID)
	if err != nil {
		t.Fatalf("load energies failed: %v", err)
	}
	if len(times) != 2 || len(kinetic) != 2 || len(potential) != 2 {
		t.Fatalf("series lengths %d/%d/%d, expected 2",
			len(times), len(kinetic), len(potential))
	}
	if math.Abs(kinetic[0]-1.5) > 1e-6 || math.Abs(potential[1]+0.4) > 1e-6 {
		t.Errorf("energy values corrupted: %v %v", kinetic, potential)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, result, frames := sampleRun()
	if _, err := st.Save(cfg, result, frames); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(cfg, result, frames); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result, frames := sampleRun()
	runID, err := st.Save(cfg, result, frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "trajectory.csv", "energies.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestRunWriterStreams(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	rw, err := st.Begin()
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	// Drive the writer through the bounded stream, as a long run would.
	stream := trajectory.NewStream(rw, 4)
	pos := []md.Vec3{{X: 0.5}}
	for i := 0; i < 10; i++ {
		pos[0].X = float64(i)
		stream.Record(i, float64(i+1)*0.01, pos)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("stream close: %v", err)
	}

	cfg, result, _ := sampleRun()
	if err := rw.Finish(cfg, result); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	frames, times, err := st.LoadFrames(rw.RunID())
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 10 {
		t.Fatalf("streamed %d frames, expected 10", len(frames))
	}
	for i := range frames {
		if math.Abs(frames[i][0].X-float64(i)) > 1e-6 {
			t.Errorf("frame %d out of order: %v", i, frames[i][0])
		}
		if math.Abs(times[i]-float64(i+1)*0.01) > 1e-6 {
			t.Errorf("time %d = %v", i, times[i])
		}
	}

	meta, err := st.Load(rw.RunID())
	if err != nil {
		t.Fatalf("metadata missing after finish: %v", err)
	}
	if meta.ID != rw.RunID() {
		t.Errorf("metadata id %q, expected %q", meta.ID, rw.RunID())
	}
}
