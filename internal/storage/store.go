package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/trajectory"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Particles   int                `json:"particles"`
	Steps       int                `json:"steps"`
	Dt          float64            `json:"dt"`
	BoxHalf     float64            `json:"box_half"`
	Epsilon     float64            `json:"epsilon"`
	Sigma       float64            `json:"sigma"`
	Cutoff      float64            `json:"cutoff"`
	Mass        float64            `json:"mass"`
	Seed        int64              `json:"seed"`
	Init        string             `json:"init"`
	WallHits    int                `json:"wall_hits"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

func newRunID() string {
	return fmt.Sprintf("lj_%d", time.Now().UnixNano())
}

func metadataFor(runID string, cfg *config.Config, result *md.Result) RunMetadata {
	return RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Particles:   cfg.Particles,
		Steps:       result.StepsTaken,
		Dt:          cfg.Dt,
		BoxHalf:     cfg.BoxHalf,
		Epsilon:     cfg.Epsilon,
		Sigma:       cfg.Sigma,
		Cutoff:      cfg.Cutoff,
		Mass:        cfg.Mass,
		Seed:        cfg.Seed,
		Init:        cfg.Init,
		WallHits:    result.WallHits,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
}

// Save writes a completed run to a fresh directory: metadata.json,
// trajectory.csv with one row per frame, and energies.csv with the
// per-step energy series.
func (s *Store) Save(cfg *config.Config, result *md.Result, frames [][]md.Vec3) (string, error) {
	runID := newRunID()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(runDir, metadataFor(runID, cfg, result)); err != nil {
		return "", err
	}
	if err := writeTrajectory(runDir, result.Times, frames); err != nil {
		return "", err
	}
	if err := writeEnergies(runDir, result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(runDir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func trajectoryHeader(particles int) []string {
	header := []string{"time"}
	for i := 0; i < particles; i++ {
		header = append(header,
			fmt.Sprintf("p%dx", i), fmt.Sprintf("p%dy", i), fmt.Sprintf("p%dz", i))
	}
	return header
}

func frameRow(t float64, pos []md.Vec3) []string {
	row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
	for _, p := range pos {
		row = append(row,
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
			strconv.FormatFloat(p.Z, 'f', 6, 64))
	}
	return row
}

func writeTrajectory(runDir string, times []float64, frames [][]md.Vec3) error {
	f, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if len(frames) == 0 {
		return nil
	}

	if err := w.Write(trajectoryHeader(len(frames[0]))); err != nil {
		return err
	}
	for i, frame := range frames {
		t := 0.0
		if i < len(times) {
			t = times[i]
		}
		if err := w.Write(frameRow(t, frame)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeEnergies(runDir string, result *md.Result) error {
	f, err := os.Create(filepath.Join(runDir, "energies.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "kinetic", "potential", "total"}); err != nil {
		return err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Kinetic[i], 'f', 6, 64),
			strconv.FormatFloat(result.Potential[i], 'f', 6, 64),
			strconv.FormatFloat(result.Kinetic[i]+result.Potential[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads a stored trajectory back as position snapshots.
func (s *Store) LoadFrames(runID string) ([][]md.Vec3, []float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]md.Vec3{}, []float64{}, nil
	}

	frames := make([][]md.Vec3, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 4 || (len(record)-1)%3 != 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		frame := make([]md.Vec3, 0, (len(record)-1)/3)
		ok := true
		for j := 1; j+2 < len(record); j += 3 {
			x, errX := strconv.ParseFloat(record[j], 64)
			y, errY := strconv.ParseFloat(record[j+1], 64)
			z, errZ := strconv.ParseFloat(record[j+2], 64)
			if errX != nil || errY != nil || errZ != nil {
				ok = false
				break
			}
			frame = append(frame, md.Vec3{X: x, Y: y, Z: z})
		}
		if !ok {
			continue
		}

		times = append(times, t)
		frames = append(frames, frame)
	}

	return frames, times, nil
}

// LoadEnergies reads the per-step energy series of a stored run.
func (s *Store) LoadEnergies(runID string) (times, kinetic, potential []float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "energies.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 3 {
			continue
		}
		t, errT := strconv.ParseFloat(record[0], 64)
		ke, errK := strconv.ParseFloat(record[1], 64)
		pe, errP := strconv.ParseFloat(record[2], 64)
		if errT != nil || errK != nil || errP != nil {
			continue
		}
		times = append(times, t)
		kinetic = append(kinetic, ke)
		potential = append(potential, pe)
	}

	return times, kinetic, potential, nil
}

// RunWriter streams frames of an in-progress run straight to disk. It
// satisfies [trajectory.Sink], so it can sit behind a
// [trajectory.Stream] for runs too large to buffer.
type RunWriter struct {
	runID  string
	runDir string
	file   *os.File
	w      *csv.Writer
	wrote  bool
}

// Begin creates the run directory and opens trajectory.csv for
// incremental writing. Call Finish to complete the run on disk.
func (s *Store) Begin() (*RunWriter, error) {
	runID := newRunID()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return nil, err
	}

	return &RunWriter{
		runID:  runID,
		runDir: runDir,
		file:   f,
		w:      csv.NewWriter(f),
	}, nil
}

func (rw *RunWriter) RunID() string { return rw.runID }

func (rw *RunWriter) WriteFrame(frame trajectory.Frame) error {
	if !rw.wrote {
		if err := rw.w.Write(trajectoryHeader(len(frame.Pos))); err != nil {
			return err
		}
		rw.wrote = true
	}
	if err := rw.w.Write(frameRow(frame.Time, frame.Pos)); err != nil {
		return err
	}
	rw.w.Flush()
	return rw.w.Error()
}

// Finish writes metadata and energies for the streamed run and closes
// the trajectory file.
func (rw *RunWriter) Finish(cfg *config.Config, result *md.Result) error {
	rw.w.Flush()
	if err := rw.w.Error(); err != nil {
		rw.file.Close()
		return err
	}
	if err := rw.file.Close(); err != nil {
		return err
	}

	if err := writeMetadata(rw.runDir, metadataFor(rw.runID, cfg, result)); err != nil {
		return err
	}
	return writeEnergies(rw.runDir, result)
}
