package metrics

import "github.com/san-kum/mdsim/internal/md"

// Confinement scores the fraction of observations in which every
// particle sat inside the box. Anything below 1.0 means the reflector
// lost a particle.
type Confinement struct {
	name       string
	box        md.Box
	violations int
	samples    int
}

func NewConfinement(box md.Box) *Confinement {
	return &Confinement{name: "confinement", box: box}
}

func (c *Confinement) Name() string {
	return c.name
}

func (c *Confinement) Observe(sys *md.System, t float64) {
	c.samples++
	for i := range sys.Pos {
		if !c.box.Contains(sys.Pos[i]) {
			c.violations++
			break
		}
	}
}

func (c *Confinement) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Confinement) Reset() {
	c.violations = 0
	c.samples = 0
}
