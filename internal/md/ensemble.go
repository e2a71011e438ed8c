package md

import (
	"context"
	"sync"
)

// Ensemble runs independent replicas of the same simulation across a
// range of seeds, one goroutine per replica.
type Ensemble struct {
	base      *VelocityVerlet
	makeSys   func(seed int64) *System
	numRuns   int
	seedStart int64
}

// NewEnsemble builds an ensemble around a template integrator. makeSys
// must return a freshly initialized system for the given seed; it is
// called once per replica.
func NewEnsemble(base *VelocityVerlet, makeSys func(seed int64) *System, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: base, makeSys: makeSys, numRuns: numRuns, seedStart: seedStart}
}

// Run executes all replicas and returns their results in seed order.
// Metrics and recorders on the template are not shared with replicas.
func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			vv := NewVelocityVerlet(e.base.Dt, e.base.Field, e.base.Box)
			vv.Workers = e.base.Workers
			vv.ValidateState = e.base.ValidateState

			sys := e.makeSys(e.seedStart + int64(idx))
			results[idx], errs[idx] = vv.Run(ctx, sys, steps)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
