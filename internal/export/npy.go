package export

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/mdsim/internal/md"
)

// NPY format version 1.0: magic, version, little-endian header
// length, then a Python dict literal padded with spaces so the data
// section starts on a 64-byte boundary.
var npyMagic = []byte("\x93NUMPY")

func npyHeader(steps, particles int) []byte {
	dict := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d, 3), }",
		steps, particles)

	prefix := len(npyMagic) + 2 + 2
	pad := (64 - (prefix+len(dict)+1)%64) % 64
	body := dict + strings.Repeat(" ", pad) + "\n"

	header := make([]byte, 0, prefix+len(body))
	header = append(header, npyMagic...)
	header = append(header, 0x01, 0x00)
	header = binary.LittleEndian.AppendUint16(header, uint16(len(body)))
	header = append(header, body...)
	return header
}

// WriteNPY writes frames as a float64 array of shape
// (steps, particles, 3) in C order, the layout numpy.load expects.
func WriteNPY(w io.Writer, frames [][]md.Vec3) error {
	particles := 0
	if len(frames) > 0 {
		particles = len(frames[0])
	}

	if _, err := w.Write(npyHeader(len(frames), particles)); err != nil {
		return err
	}

	row := make([]byte, particles*3*8)
	for _, frame := range frames {
		if len(frame) != particles {
			return fmt.Errorf("export: frame has %d particles, expected %d",
				len(frame), particles)
		}
		off := 0
		for _, p := range frame {
			binary.LittleEndian.PutUint64(row[off:], math.Float64bits(p.X))
			binary.LittleEndian.PutUint64(row[off+8:], math.Float64bits(p.Y))
			binary.LittleEndian.PutUint64(row[off+16:], math.Float64bits(p.Z))
			off += 24
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func ExportNPY(path string, frames [][]md.Vec3) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteNPY(file, frames)
}
