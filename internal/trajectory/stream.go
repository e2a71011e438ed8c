package trajectory

import (
	"sync"

	"github.com/san-kum/mdsim/internal/md"
)

// Sink consumes frames as they are produced, typically writing them
// to disk.
type Sink interface {
	WriteFrame(f Frame) error
}

// Stream forwards frames to a sink from a dedicated goroutine. Record
// blocks once the queue is full, which throttles the producer instead
// of growing memory without bound. After the sink returns an error,
// remaining frames are discarded and Close reports the error.
type Stream struct {
	ch   chan Frame
	done chan struct{}

	mu  sync.Mutex
	err error
}

func NewStream(sink Sink, depth int) *Stream {
	if depth < 1 {
		depth = 1
	}
	s := &Stream{
		ch:   make(chan Frame, depth),
		done: make(chan struct{}),
	}
	go s.drain(sink)
	return s
}

func (s *Stream) drain(sink Sink) {
	defer close(s.done)
	for f := range s.ch {
		if s.failed() {
			continue
		}
		if err := sink.WriteFrame(f); err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}
}

func (s *Stream) failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err != nil
}

func (s *Stream) Record(step int, t float64, pos []md.Vec3) {
	snap := make([]md.Vec3, len(pos))
	copy(snap, pos)
	s.ch <- Frame{Step: step, Time: t, Pos: snap}
}

// Close waits for queued frames to reach the sink and returns the
// first sink error, if any. Record must not be called after Close.
func (s *Stream) Close() error {
	close(s.ch)
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
