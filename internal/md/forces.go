package md

import "sync"

// Pair forces are evaluated once per unordered pair and applied with
// opposite signs to both particles. The parallel path partitions the
// outer loop across workers into private force buffers and reduces
// them in worker order, so results are deterministic for a fixed
// worker count.

const parallelMinParticles = 64

// Accumulate overwrites f with the net Lennard-Jones force on each
// particle in pos and returns the total pair potential energy.
func (lj LennardJones) Accumulate(pos []Vec3, f []Vec3) float64 {
	for i := range f {
		f[i] = Vec3{}
	}
	return lj.accumulateRange(pos, f, 0, len(pos))
}

// AccumulateParallel is Accumulate with the outer pair loop split
// across workers. Falls back to the serial path for small systems.
func (lj LennardJones) AccumulateParallel(pos []Vec3, f []Vec3, workers int) float64 {
	n := len(pos)
	if workers <= 1 || n < parallelMinParticles {
		return lj.Accumulate(pos, f)
	}
	if workers > n {
		workers = n
	}

	bufs := make([][]Vec3, workers)
	pots := make([]float64, workers)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			lo := w * chunk
			hi := lo + chunk
			if hi > n {
				hi = n
			}
			buf := make([]Vec3, n)
			pots[w] = lj.accumulateRange(pos, buf, lo, hi)
			bufs[w] = buf
		}(w)
	}
	wg.Wait()

	for i := range f {
		f[i] = Vec3{}
	}
	pot := 0.0
	for w := 0; w < workers; w++ {
		for i, fw := range bufs[w] {
			f[i] = f[i].Add(fw)
		}
		pot += pots[w]
	}
	return pot
}

// accumulateRange handles pairs (i, j) with lo <= i < hi and i < j < n,
// adding force contributions into f without clearing it.
func (lj LennardJones) accumulateRange(pos []Vec3, f []Vec3, lo, hi int) float64 {
	cut2 := lj.Cutoff * lj.Cutoff
	sig2 := lj.Sigma * lj.Sigma
	pot := 0.0

	for i := lo; i < hi; i++ {
		for j := i + 1; j < len(pos); j++ {
			d := pos[i].Sub(pos[j])
			r2 := d.Norm2()
			if r2 >= cut2 {
				continue
			}

			inv := 1.0 / r2
			s2 := sig2 * inv
			s6 := s2 * s2 * s2
			s12 := s6 * s6

			coef := 24 * lj.Epsilon * (2*s12 - s6) * inv
			f[i] = f[i].Add(d.Scale(coef))
			f[j] = f[j].Sub(d.Scale(coef))

			pot += 4 * lj.Epsilon * (s12 - s6)
		}
	}
	return pot
}
