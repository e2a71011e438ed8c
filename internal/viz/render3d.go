package viz

import (
	"math"
	"sort"

	"github.com/san-kum/mdsim/internal/md"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Camera manages 3D projection to a 2D plane.
type Camera struct {
	Position         Vec3
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Position: Vec3{0, 0, 5}, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts 3D world coordinates to 2D screen coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	dist := c.Position.Z
	if rot.Z >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
	Radius     int
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe              { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3)      { w.Edges = append(w.Edges, Edge{s, e, 0}) }
func (w *Wireframe) AddPoint(p Vec3, r int) { w.Edges = append(w.Edges, Edge{p, p, r}) }
func (w *Wireframe) Clear()                 { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	radius         int
}

// Render3D draws the wireframe to the canvas using a simple painter's
// algorithm. Point edges render as discs sized by their radius.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Radius})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.FillCircle(e.x1, e.y1, e.radius)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// BoxWireframe builds the twelve edges of a simulation box, normalized
// so the longest half-width maps to one world unit.
func BoxWireframe(box md.Box) *Wireframe {
	w := NewWireframe()
	n := normScale(box)
	sx, sy, sz := box.Half.X*n, box.Half.Y*n, box.Half.Z*n
	v := []Vec3{
		{-sx, -sy, -sz}, {sx, -sy, -sz}, {sx, sy, -sz}, {-sx, sy, -sz},
		{-sx, -sy, sz}, {sx, -sy, sz}, {sx, sy, sz}, {-sx, sy, sz},
	}
	ei := [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range ei {
		w.AddEdge(v[e[0]], v[e[1]])
	}
	return w
}

// AddParticles appends one point per particle, scaled into the box's
// normalized coordinates.
func (w *Wireframe) AddParticles(pos []md.Vec3, box md.Box, radius int) {
	n := normScale(box)
	for _, p := range pos {
		w.AddPoint(Vec3{p.X * n, p.Y * n, p.Z * n}, radius)
	}
}

func normScale(box md.Box) float64 {
	h := math.Max(box.Half.X, math.Max(box.Half.Y, box.Half.Z))
	if h == 0 {
		return 1
	}
	return 1 / h
}
