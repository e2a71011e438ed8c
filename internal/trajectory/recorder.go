// Package trajectory collects position snapshots produced by a run.
// Memory keeps every frame in RAM; Stream hands frames to a sink
// through a bounded queue for runs too long to hold in memory.
package trajectory

import "github.com/san-kum/mdsim/internal/md"

// Frame is one recorded snapshot.
type Frame struct {
	Step int
	Time float64
	Pos  []md.Vec3
}

// Memory retains all frames in order. Snapshots are copied, so later
// mutation of the source slices cannot corrupt recorded history.
type Memory struct {
	frames []Frame
}

func NewMemory(capacity int) *Memory {
	return &Memory{frames: make([]Frame, 0, capacity)}
}

func (m *Memory) Record(step int, t float64, pos []md.Vec3) {
	snap := make([]md.Vec3, len(pos))
	copy(snap, pos)
	m.frames = append(m.frames, Frame{Step: step, Time: t, Pos: snap})
}

func (m *Memory) Len() int { return len(m.frames) }

func (m *Memory) Frame(i int) Frame { return m.frames[i] }

// Frames returns the recorded positions in step order.
func (m *Memory) Frames() [][]md.Vec3 {
	out := make([][]md.Vec3, len(m.frames))
	for i, f := range m.frames {
		out[i] = f.Pos
	}
	return out
}

// Times returns the recorded times in step order.
func (m *Memory) Times() []float64 {
	out := make([]float64, len(m.frames))
	for i, f := range m.frames {
		out[i] = f.Time
	}
	return out
}
