// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package search

import (
	"math"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/simplex"
)

// StrongBranchSettings bounds the probing LP solves spec.md §4.7 runs
// for unreliable candidates.
type StrongBranchSettings struct {
	MaxIterations int     // per probe LP, kept small so probing stays cheap
	MinReliable   int     // not read; chooseBranchVar uses Settings.MinReliable
}

// DefaultStrongBranchSettings returns the typical few-iteration probe
// budget.
func DefaultStrongBranchSettings() StrongBranchSettings {
	return StrongBranchSettings{MaxIterations: 20, MinReliable: 4}
}

// probeResult is one direction's strong-branch outcome.
type probeResult struct {
	status simplex.Status
	obj    float64
}

// StrongBranch evaluates candidates by temporarily tightening each
// one's bound in both directions and running a few bounded dual
// simplex iterations from the node's warm-started basis, per spec.md
// §4.7's "unreliable candidates are evaluated by strong branching:
// temporarily fix, do a few dual simplex iterations on each side,
// collect gains." It updates pc with every observed gain (even for
// candidates it doesn't ultimately pick) and returns the column with
// the best worst-case (minimum of the two directions') objective
// degradation, the standard strong-branching selection rule.
func StrongBranch(c *simplex.Context, candidates []int, x []float64, parentObj float64, pc *PseudocostTable, settings StrongBranchSettings, sbSettings simplex.Settings) int {
	sbSettings.MaxIterations = settings.MaxIterations

	savedLo := append([]float64(nil), c.Lo...)
	savedHi := append([]float64(nil), c.Hi...)
	savedBasis := c.Basis.Clone()

	best, bestScore := -1, math.Inf(-1)
	for _, j := range candidates {
		f := x[j] - math.Floor(x[j])

		downObj, downOK := probeBound(c, savedBasis, j, math.Floor(x[j]), false, sbSettings)
		restoreBounds(c, savedLo, savedHi, savedBasis)

		upObj, upOK := probeBound(c, savedBasis, j, math.Ceil(x[j]), true, sbSettings)
		restoreBounds(c, savedLo, savedHi, savedBasis)

		if downOK {
			pc.Update(j, f, downObj-parentObj, false)
		}
		if upOK {
			pc.Update(j, f, upObj-parentObj, true)
		}

		down, up := downObj-parentObj, upObj-parentObj
		if !downOK {
			down = math.Inf(1)
		}
		if !upOK {
			up = math.Inf(1)
		}
		score := math.Min(down, up)
		if math.IsInf(score, 1) {
			continue
		}
		if score > bestScore {
			best, bestScore = j, score
		}
	}
	if best < 0 && len(candidates) > 0 {
		best = candidates[0]
	}
	return best
}

// probeBound tightens column j's bound (upper to floor for the down
// probe, lower to ceil for the up probe), re-solves from a clone of
// the parent's basis for a few iterations, and reports the resulting
// objective. ok is false if the probe proved the branch infeasible
// (a useful signal on its own -- an infeasible direction prunes
// immediately once the real branch is taken -- but not folded into
// the pseudocost average here, since spec.md §4.7 only names "gains").
func probeBound(c *simplex.Context, baseBasis *basis.Basis, j int, bound float64, up bool, settings simplex.Settings) (obj float64, ok bool) {
	if up {
		c.Lo[j] = bound
	} else {
		c.Hi[j] = bound
	}
	c.Basis = baseBasis.Clone()

	status, _, err := simplex.Solve(c, settings)
	if err != nil {
		return 0, false
	}
	switch status {
	case simplex.Optimal, simplex.IterationLimit:
		return c.ObjectiveValue(), true
	default:
		return 0, false
	}
}

func restoreBounds(c *simplex.Context, lo, hi []float64, bas *basis.Basis) {
	copy(c.Lo, lo)
	copy(c.Hi, hi)
	c.Basis = bas
}
