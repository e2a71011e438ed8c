package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/mdsim/internal/md"
)

// FrameToSVG renders one frame as a scatter plot of particle positions
// projected onto the XY plane, with the box outline drawn for reference.
func FrameToSVG(frame []md.Vec3, box md.Box, size int) string {
	if len(frame) == 0 || size <= 0 {
		return ""
	}

	pad := float64(size) * 0.05
	span := float64(size) - 2*pad
	hx, hy := box.Half.X, box.Half.Y

	var sb strings.Builder

	// SVG header plus the confinement box
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#333333"/>
<g fill="#00ff00">
`, size, size, size, size, pad, pad, span, span))

	r := float64(size) * 0.01
	if r < 2 {
		r = 2
	}

	for _, p := range frame {
		cx := pad + (p.X+hx)/(2*hx)*span
		cy := pad + span - (p.Y+hy)/(2*hy)*span
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, r))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PathToSVG traces one particle's XY positions across frames as a polyline.
func PathToSVG(frames [][]md.Vec3, particle, width, height int, strokeColor string) string {
	if len(frames) < 2 || particle < 0 {
		return ""
	}
	for _, f := range frames {
		if particle >= len(f) {
			return ""
		}
	}

	// Find bounds
	first := frames[0][particle]
	minX, maxX := first.X, first.X
	minY, maxY := first.Y, first.Y
	for _, f := range frames {
		p := f[particle]
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, f := range frames {
		p := f[particle]
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// ExportSVG writes one particle's trajectory path to an SVG file.
func ExportSVG(path string, frames [][]md.Vec3, particle int) error {
	svg := PathToSVG(frames, particle, 800, 600, "#00ff00")
	if svg == "" {
		return fmt.Errorf("export: no path to render for particle %d", particle)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
