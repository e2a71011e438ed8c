// Package optim searches parameter grids for the combination that
// minimizes an objective computed from a finished run.
package optim

import (
	"context"
	"math"
)

// Objective scores one parameter combination. Lower is better. An
// error discards the combination without aborting the search.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch exhaustively evaluates the cross product of the ranges.
type GridSearch struct {
	names  []string
	ranges [][]float64
}

func NewGridSearch(names []string, ranges [][]float64) *GridSearch {
	return &GridSearch{names: names, ranges: ranges}
}

// Search evaluates every combination and returns the best parameters
// with their score. If nothing scored, params is nil and the score is
// +Inf.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams)

	return bestParams, best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.names) {
		val, err := objective(ctx, current)
		if err != nil {
			return
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[g.names[depth]] = val

		g.searchRecursive(ctx, depth+1, next, objective, best, bestParams)
	}
}
