package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/mdsim/internal/md"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)

	c.Set(0, 0)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("Grid[0][0] = %x, want 2801", c.Grid[0][0])
	}
	c.Set(1, 0)
	if c.Grid[0][0] != 0x2809 {
		t.Errorf("Grid[0][0] = %x, want 2809", c.Grid[0][0])
	}

	// col 1, row 1, bottom-left dot
	c.Set(2, 7)
	if c.Grid[1][1] != 0x2840 {
		t.Errorf("Grid[1][1] = %x, want 2840", c.Grid[1][1])
	}

	// out of range is a no-op
	c.Set(-1, 0)
	c.Set(8, 0)
	c.Set(0, 8)

	c.Clear()
	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != 0x2800 {
				t.Fatalf("Clear left Grid[%d][%d] = %x", i, j, c.Grid[i][j])
			}
		}
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(4, 2)
	s := c.String()
	if strings.Count(s, "\n") != 2 {
		t.Errorf("String has %d newlines, want 2", strings.Count(s, "\n"))
	}
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if len([]rune(line)) != 4 {
			t.Errorf("line width = %d runes, want 4", len([]rune(line)))
		}
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	if c.Grid[0][0]&0x1 == 0 {
		t.Error("start pixel not set")
	}
	if c.Grid[1][3]&0x80 == 0 {
		t.Error("end pixel not set")
	}
}

func TestFillCircle(t *testing.T) {
	c := NewCanvas(4, 2)
	c.FillCircle(3, 3, 0)
	lit := 0
	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != 0x2800 {
				lit++
			}
		}
	}
	if lit != 1 {
		t.Errorf("radius 0 lit %d cells, want 1", lit)
	}
}

func TestProjectCenter(t *testing.T) {
	cam := NewCamera()
	x, y, depth, ok := cam.Project(Vec3{}, 120, 96)
	if !ok {
		t.Fatal("origin should be visible")
	}
	if x != 60 || y != 48 {
		t.Errorf("projected to (%d,%d), want (60,48)", x, y)
	}
	if depth != 0 {
		t.Errorf("depth = %v, want 0", depth)
	}
}

func TestCameraZoomClamp(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom > 10 {
		t.Errorf("Zoom = %v, want <= 10", cam.Zoom)
	}
	for i := 0; i < 100; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom < 0.1 {
		t.Errorf("Zoom = %v, want >= 0.1", cam.Zoom)
	}
}

func TestBoxWireframe(t *testing.T) {
	box := md.Cube(2)
	wf := BoxWireframe(box)
	if len(wf.Edges) != 12 {
		t.Fatalf("box has %d edges, want 12", len(wf.Edges))
	}
	for i, e := range wf.Edges {
		if e.Radius != 0 {
			t.Errorf("edge %d has radius %d", i, e.Radius)
		}
		for _, v := range []Vec3{e.Start, e.End} {
			if absFloat(v.X) != 1 || absFloat(v.Y) != 1 || absFloat(v.Z) != 1 {
				t.Errorf("edge %d vertex %v not on unit cube", i, v)
			}
		}
	}

	wf.AddParticles([]md.Vec3{{X: 2, Y: 2, Z: 2}, {}}, box, 2)
	if len(wf.Edges) != 14 {
		t.Fatalf("after AddParticles got %d edges, want 14", len(wf.Edges))
	}
	p := wf.Edges[12]
	if p.Radius != 2 || p.Start != (Vec3{1, 1, 1}) || p.Start != p.End {
		t.Errorf("particle edge = %+v", p)
	}
}

func TestPlaneCoords(t *testing.T) {
	p := md.Vec3{X: 1, Y: 2, Z: 3}
	box := md.Box{Half: md.Vec3{X: 4, Y: 5, Z: 6}}

	cases := []struct {
		plane        int
		u, v, hu, hv float64
	}{
		{0, 1, 2, 4, 5},
		{1, 1, 3, 4, 6},
		{2, 2, 3, 5, 6},
	}
	for _, c := range cases {
		u, v, hu, hv := planeCoords(p, box, c.plane)
		if u != c.u || v != c.v || hu != c.hu || hv != c.hv {
			t.Errorf("plane %d: got (%v,%v,%v,%v), want (%v,%v,%v,%v)",
				c.plane, u, v, hu, hv, c.u, c.v, c.hu, c.hv)
		}
	}
}

func TestRasterize(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	img := Rasterize(c)
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("image is %dx%d, want 32x32", b.Dx(), b.Dy())
	}
	if img.ColorIndexAt(1, 1) == img.ColorIndexAt(31, 31) {
		t.Error("lit dot should differ from empty background")
	}
}

func TestSaveGIFNoFrames(t *testing.T) {
	if err := SaveGIF(nil, "unused.gif"); err == nil {
		t.Error("expected error for empty frame list")
	}
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
