package md

// Box is a closed rectangular container centered at the origin with
// half-extents Half along each axis. Walls are hard and reflecting.
type Box struct {
	Half Vec3
}

// Cube returns a box with the same half-extent along every axis.
func Cube(half float64) Box {
	return Box{Half: Vec3{half, half, half}}
}

func (b Box) Validate() error {
	if b.Half.X <= 0 || b.Half.Y <= 0 || b.Half.Z <= 0 {
		return ErrBadBox
	}
	return nil
}

// Reflect mirrors a position that has crossed a wall back inside and
// flips the corresponding velocity component. At most one reflection
// per axis is applied, so a particle that overshoots by more than a
// full box width in one step is not fully recovered; keep v·dt small
// against the half-extents.
func (b Box) Reflect(p, v Vec3) (Vec3, Vec3) {
	p.X, v.X = reflectAxis(p.X, v.X, b.Half.X)
	p.Y, v.Y = reflectAxis(p.Y, v.Y, b.Half.Y)
	p.Z, v.Z = reflectAxis(p.Z, v.Z, b.Half.Z)
	return p, v
}

func reflectAxis(p, v, h float64) (float64, float64) {
	if p > h {
		return 2*h - p, -v
	}
	if p < -h {
		return -2*h - p, -v
	}
	return p, v
}

// Contains reports whether p lies inside the box or on a wall.
func (b Box) Contains(p Vec3) bool {
	return p.X >= -b.Half.X && p.X <= b.Half.X &&
		p.Y >= -b.Half.Y && p.Y <= b.Half.Y &&
		p.Z >= -b.Half.Z && p.Z <= b.Half.Z
}

// Width returns the full extent along each axis.
func (b Box) Width() Vec3 {
	return b.Half.Scale(2)
}

func (b Box) Volume() float64 {
	w := b.Width()
	return w.X * w.Y * w.Z
}
