package md_test

import (
	"context"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/md"
)

func gasSystem(n int, spacing, vmax float64, seed int64) *md.System {
	sys := md.LatticeSystem(n, spacing)
	rng := rand.New(rand.NewSource(seed))
	for i := range sys.Vel {
		sys.Vel[i] = md.Vec3{
			X: (2*rng.Float64() - 1) * vmax,
			Y: (2*rng.Float64() - 1) * vmax,
			Z: (2*rng.Float64() - 1) * vmax,
		}
	}
	sys.ZeroMomentum()
	return sys
}

var _ = Describe("Pair interactions", func() {
	var lj md.LennardJones

	BeforeEach(func() {
		lj = md.LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}
	})

	It("computes equal and opposite forces on a pair", func() {
		pos := []md.Vec3{{X: -0.5}, {X: 0.5}}
		f := make([]md.Vec3, 2)
		lj.Accumulate(pos, f)

		Expect(f[0].X).To(Equal(-f[1].X))
		Expect(f[0].Y).To(BeZero())
		Expect(f[0].X).To(BeNumerically("<", 0), "particles at σ separation repel")
	})

	It("vanishes at and beyond the cutoff", func() {
		Expect(lj.Potential(2.5)).To(BeZero())
		Expect(lj.ForceMag(2.5)).To(BeZero())
		Expect(lj.Potential(7)).To(BeZero())
	})

	It("has the well bottom at 2^(1/6)σ with depth ε", func() {
		rmin := lj.Minimum()
		Expect(rmin).To(BeNumerically("~", math.Pow(2, 1.0/6.0), 1e-12))
		Expect(lj.Potential(rmin)).To(BeNumerically("~", -1, 1e-12))
		Expect(lj.ForceMag(rmin)).To(BeNumerically("~", 0, 1e-12))
	})
})

var _ = Describe("Energy conservation", func() {
	lj := md.LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}

	It("holds to a fraction of a percent for a bound pair", func() {
		sys := md.NewSystem(2)
		sys.Pos[0] = md.Vec3{X: -0.75}
		sys.Pos[1] = md.Vec3{X: 0.75}

		vv := md.NewVelocityVerlet(0.001, lj, md.Cube(50))
		result, err := vv.Run(context.Background(), sys, 1000)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.WallHits).To(BeZero())
		Expect(result.EnergyDrift).To(BeNumerically("<", 5e-3))
	})

	It("keeps drift under one percent for a mixing gas", func() {
		sys := gasSystem(27, 1.8, 1, 42)
		vv := md.NewVelocityVerlet(0.002, lj, md.Cube(5))

		result, err := vv.Run(context.Background(), sys, 500)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.EnergyDrift).To(BeNumerically("<", 0.01))
	})

	It("keeps drift small across an ensemble of seeds", func() {
		base := md.NewVelocityVerlet(0.002, lj, md.Cube(5))
		ens := md.NewEnsemble(base, func(seed int64) *md.System {
			return gasSystem(27, 1.8, 1, seed)
		}, 4, 1000)

		results, err := ens.Run(context.Background(), 200)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for _, r := range results {
			Expect(r.EnergyDrift).To(BeNumerically("<", 0.01))
		}
	})
})

var _ = Describe("Momentum conservation", func() {
	lj := md.LennardJones{Epsilon: 1, Sigma: 1, Cutoff: 2.5}

	It("keeps total momentum at zero away from the walls", func() {
		sys := gasSystem(27, 1.8, 1, 7)
		vv := md.NewVelocityVerlet(0.002, lj, md.Cube(1000))

		result, err := vv.Run(context.Background(), sys, 200)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.WallHits).To(BeZero())

		p := sys.Momentum()
		Expect(p.X).To(BeNumerically("~", 0, 1e-9))
		Expect(p.Y).To(BeNumerically("~", 0, 1e-9))
		Expect(p.Z).To(BeNumerically("~", 0, 1e-9))
	})

	It("trades momentum with the container at each reflection", func() {
		sys := md.NewSystem(1)
		sys.Vel[0] = md.Vec3{X: 2}

		vv := md.NewVelocityVerlet(0.125, lj, md.Cube(1))
		result, err := vv.Run(context.Background(), sys, 8)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.WallHits).To(Equal(1))
		Expect(sys.Momentum().X).To(Equal(-2.0))
	})
})
