// Package export converts stored runs into interchange formats:
// indented JSON for scripting and NumPy .npy arrays for analysis
// toolchains that expect a (steps, particles, 3) trajectory tensor.
package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/storage"
)

type ExportData struct {
	ID          string             `json:"id"`
	Particles   int                `json:"particles"`
	Steps       int                `json:"steps"`
	Dt          float64            `json:"dt"`
	BoxHalf     float64            `json:"box_half"`
	Epsilon     float64            `json:"epsilon"`
	Sigma       float64            `json:"sigma"`
	Cutoff      float64            `json:"cutoff"`
	WallHits    int                `json:"wall_hits"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Times       []float64          `json:"times"`
	Frames      [][][3]float64     `json:"frames"`
}

func buildExportData(meta *storage.RunMetadata, frames [][]md.Vec3, times []float64) ExportData {
	data := ExportData{
		ID:          meta.ID,
		Particles:   meta.Particles,
		Steps:       len(frames),
		Dt:          meta.Dt,
		BoxHalf:     meta.BoxHalf,
		Epsilon:     meta.Epsilon,
		Sigma:       meta.Sigma,
		Cutoff:      meta.Cutoff,
		WallHits:    meta.WallHits,
		EnergyDrift: meta.EnergyDrift,
		Metrics:     meta.Metrics,
		Times:       times,
		Frames:      make([][][3]float64, len(frames)),
	}

	for i, frame := range frames {
		rows := make([][3]float64, len(frame))
		for j, p := range frame {
			rows[j] = [3]float64{p.X, p.Y, p.Z}
		}
		data.Frames[i] = rows
	}
	return data
}

func writeJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, meta *storage.RunMetadata, frames [][]md.Vec3, times []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeJSON(file, buildExportData(meta, frames, times))
}

func ExportJSONStdout(meta *storage.RunMetadata, frames [][]md.Vec3, times []float64) error {
	return writeJSON(os.Stdout, buildExportData(meta, frames, times))
}
