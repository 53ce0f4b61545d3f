// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package search

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/dsmip/dsmip/simplex"
)

// HeuristicSettings bounds a RINS/RENS sub-MIP, per spec.md §4.7's
// "each heuristic bounds its LP iterations."
type HeuristicSettings struct {
	NodeLimit int
	MaxFix    int // cap on how many columns get fixed; 0 means no cap
	Tol       float64
}

// DefaultHeuristicSettings returns a small sub-MIP budget, the
// intended use (a cheap improvement pass between tree nodes, not a
// full re-solve).
func DefaultHeuristicSettings() HeuristicSettings {
	return HeuristicSettings{NodeLimit: 200, Tol: 1e-6}
}

// RINS (Relaxation Induced Neighborhood Search) fixes every integer
// column where the current LP relaxation value rounds to the same
// integer as the incumbent, and re-solves the resulting restricted
// MIP with a small node budget, per spec.md §4.7: "fix variables where
// the LP relaxation and incumbent agree; run a sub-MIP with reduced
// leaves/nodes." When more columns agree than MaxFix allows, rnd picks
// a random subset to fix (SPEC_FULL.md's "fix-set sampling"), so
// repeated calls across the tree explore different neighborhoods
// rather than always shrinking the same way.
func RINS(c *simplex.Context, p *Problem, lpX, incumbentX []float64, settings HeuristicSettings, search Settings, rnd *rand.Rand) (*Result, error) {
	var candidates []int
	for j, isInt := range p.Integer {
		if !isInt {
			continue
		}
		if math.Abs(math.Round(lpX[j])-incumbentX[j]) <= settings.Tol {
			candidates = append(candidates, j)
		}
	}
	return fixAndSolve(c, p, candidates, incumbentX, settings, search, rnd)
}

// RENS (Relaxation Enforced Neighborhood Search) fixes every integer
// column that is already integral in the LP relaxation, per spec.md
// §4.7, then re-solves the restriction with a small node budget.
func RENS(c *simplex.Context, p *Problem, lpX []float64, settings HeuristicSettings, search Settings, rnd *rand.Rand) (*Result, error) {
	var candidates []int
	for j, isInt := range p.Integer {
		if !isInt {
			continue
		}
		if fractionality(lpX[j]) <= settings.Tol {
			candidates = append(candidates, j)
		}
	}
	return fixAndSolve(c, p, candidates, lpX, settings, search, rnd)
}

// fixAndSolve builds a copy of p with every column in candidates fixed
// to round(fixValue[j]) (sampling down to MaxFix columns if there are
// more candidates than that), then runs the full branch-and-bound
// driver over it with search's limits overridden by a small node cap.
func fixAndSolve(c *simplex.Context, p *Problem, candidates []int, fixValue []float64, settings HeuristicSettings, search Settings, rnd *rand.Rand) (*Result, error) {
	if settings.MaxFix > 0 && len(candidates) > settings.MaxFix {
		rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		candidates = candidates[:settings.MaxFix]
	}

	sub := *p
	sub.Lo = append([]float64(nil), p.Lo...)
	sub.Hi = append([]float64(nil), p.Hi...)
	for _, j := range candidates {
		v := math.Round(fixValue[j])
		sub.Lo[j], sub.Hi[j] = v, v
	}

	sub.Integer = p.Integer // unchanged; fixing is via bounds, not kind

	search.NodeLimit = settings.NodeLimit
	return Solve(c, &sub, search)
}
