package cutgen

import (
	"sort"

	"github.com/dsmip/dsmip/xprec"
)

// liftedCoverCuts tries the three lifted-cover variants of spec.md §4.6
// step 3 in order (knapsack -> mixed-binary -> mixed-integer), returning
// the first one that produces a candidate; the caller still runs it
// through accept() against the efficacy threshold.
func liftedCoverCuts(p *preprocessed, cov *cover, lambda float64, opts Options) *Cut {
	phi := coverLiftingFunction(p, cov, lambda)

	if !p.hasGeneralInt && !p.hasContinuous {
		return liftedKnapsackCover(p, cov, phi)
	}
	if cut := liftedMixedBinaryCover(p, cov, phi, lambda); cut != nil {
		return cut
	}
	return liftedMixedIntegerCover(p, cov, phi, lambda)
}

// coverLiftingFunction builds the standard sequential-lifting step
// function phi for a 0-1 knapsack minimal cover (Wolsey, "Integer
// Programming", ch.9): sorting the cover weights ascending and
// accumulating mu_l = sum of the l smallest cover weights minus lambda,
// phi(a) = l for mu_l <= a < mu_{l+1}. Accumulation runs in extended
// precision (xprec) since cover weights can span many orders of
// magnitude, per spec.md §4.6's "extended precision for accumulating
// sums" requirement.
func coverLiftingFunction(p *preprocessed, cov *cover, lambda float64) func(a float64) int {
	weights := make([]float64, len(cov.pos))
	for i, pos := range cov.pos {
		weights[i] = p.a[pos]
	}
	sort.Float64s(weights)

	mu := make([]float64, len(weights)+1)
	acc := xprec.Of(0)
	for l, w := range weights {
		acc = xprec.AddFloat64(acc, w)
		mu[l+1] = xprec.Sub(acc, xprec.Of(lambda)).Float64()
	}

	return func(a float64) int {
		l := 0
		for l < len(weights) && a >= mu[l+1] {
			l++
		}
		return l
	}
}

// liftedKnapsackCover is the all-binary lifted cover cut: the base
// minimal-cover inequality sum_{j in C} x_j <= |C|-1 with every
// non-cover binary variable lifted in via phi.
func liftedKnapsackCover(p *preprocessed, cov *cover, phi func(float64) int) *Cut {
	inCover := make(map[int]bool, len(cov.pos))
	for _, pos := range cov.pos {
		inCover[pos] = true
	}
	cut := &Cut{Kind: "lifted-knapsack-cover", RHS: float64(len(cov.pos) - 1)}
	for k := range p.a {
		// General-integer non-cover variables are lifted separately by
		// liftedMixedIntegerCover's ratio rule, to avoid double-lifting
		// the same column with two different methods.
		if p.kind[k] == GeneralInteger && !inCover[k] {
			continue
		}
		if p.kind[k] == Continuous {
			continue
		}
		var coef float64
		if inCover[k] {
			coef = 1
		} else {
			coef = float64(phi(p.a[k]))
		}
		if coef == 0 {
			continue
		}
		cut.Idx = append(cut.Idx, k)
		cut.Coef = append(cut.Coef, coef)
	}
	return cut
}

// liftedMixedBinaryCover adds continuous variables to the knapsack cover
// via the simple superadditive ratio lifting a_k/lambda, valid because
// lambda is the knapsack's excess capacity over the cover.
func liftedMixedBinaryCover(p *preprocessed, cov *cover, phi func(float64) int, lambda float64) *Cut {
	if !p.hasContinuous || lambda <= 0 {
		return nil
	}
	cut := liftedKnapsackCover(p, cov, phi)
	cut.Kind = "lifted-mixed-binary-cover"
	for k, kind := range p.kind {
		if kind != Continuous {
			continue
		}
		coef := p.a[k] / lambda
		if coef == 0 {
			continue
		}
		cut.Idx = append(cut.Idx, k)
		cut.Coef = append(cut.Coef, coef)
	}
	return cut
}

// liftedMixedIntegerCover extends the mixed-binary lift to general
// (bounded, non-binary) integer variables using the same ratio lifting,
// the simplest superadditive extension that preserves validity for
// bounded integers without per-unit enumeration.
func liftedMixedIntegerCover(p *preprocessed, cov *cover, phi func(float64) int, lambda float64) *Cut {
	if !p.hasGeneralInt || lambda <= 0 {
		return nil
	}
	cut := liftedMixedBinaryCover(p, cov, phi, lambda)
	if cut == nil {
		cut = liftedKnapsackCover(p, cov, phi)
	}
	cut.Kind = "lifted-mixed-integer-cover"
	for k, kind := range p.kind {
		if kind != GeneralInteger {
			continue
		}
		if inCoverPos(cov, k) {
			continue
		}
		coef := p.a[k] / lambda
		if coef == 0 {
			continue
		}
		cut.Idx = append(cut.Idx, k)
		cut.Coef = append(cut.Coef, coef)
	}
	return cut
}

func inCoverPos(cov *cover, pos int) bool {
	for _, p := range cov.pos {
		if p == pos {
			return true
		}
	}
	return false
}
