// Package optim searches steering gains against simulated maneuvers.
package optim

import (
	"context"
	"errors"
	"math"
)

// ErrNoCandidate is returned when every grid point was discarded.
var ErrNoCandidate = errors.New("optim: no acceptable candidate")

// Evaluate scores one parameter set; lower is better. ok=false discards
// the candidate without failing the search.
type Evaluate func(ctx context.Context, params map[string]float64) (score float64, ok bool, err error)

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Score  float64
	OK     bool
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the ranges and returns the best
// parameters, their score and all evaluated candidates in grid order.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate) (map[string]float64, float64, []Candidate, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var all []Candidate

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, &best, &bestParams, &all); err != nil {
		return nil, 0, all, err
	}
	if bestParams == nil {
		return nil, 0, all, ErrNoCandidate
	}
	return bestParams, best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluate,
	best *float64,
	bestParams *map[string]float64,
	all *[]Candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		score, ok, err := eval(ctx, current)
		*all = append(*all, Candidate{Params: current, Score: score, OK: ok && err == nil, Err: err})
		if err != nil || !ok {
			return nil
		}
		if score < *best {
			*best = score
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval, best, bestParams, all); err != nil {
			return err
		}
	}
	return nil
}
