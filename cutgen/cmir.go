package cutgen

import (
	"math"

	"github.com/dsmip/dsmip/xprec"
)

// cmir runs the c-MIR heuristic of spec.md §4.6 step 4: for a handful of
// scale factors delta (the exact reciprocals 1/a_j of integer-supported
// columns j, with no continued-fraction rounding), forms the MIR inequality
// ã = floor(delta*a) + max(0, frac(delta*a)-f0)/(1-f0), f0 = frac(delta*b),
// and keeps the scale with the best efficacy.
func cmir(p *preprocessed, star []float64, opts Options) *Cut {
	deltas := cmirScaleCandidates(p)
	if len(deltas) == 0 {
		deltas = []float64{1}
	}

	var best *Cut
	var bestViolation float64
	for _, delta := range deltas {
		cut := cmirAtScale(p, star, delta)
		if cut == nil {
			continue
		}
		var violation, normSq float64
		for k, j := range cut.Idx {
			violation += cut.Coef[k] * star[p.idx[j]]
			normSq += cut.Coef[k] * cut.Coef[k]
		}
		violation -= cut.RHS
		norm := math.Sqrt(normSq)
		if norm == 0 {
			continue
		}
		eff := violation / norm
		if best == nil || eff > bestViolation {
			best, bestViolation = cut, eff
		}
	}
	return best
}

// cmirScaleCandidates returns up to 8 distinct scale factors, the exact
// reciprocal 1/a_j of each non-continuous column with a nonzero
// coefficient, in column order. No continued-fraction approximation of
// 1/a_j is taken.
func cmirScaleCandidates(p *preprocessed) []float64 {
	var deltas []float64
	seen := make(map[float64]bool)
	for k, a := range p.a {
		if p.kind[k] == Continuous || a == 0 {
			continue
		}
		d := 1 / a
		if !seen[d] {
			seen[d] = true
			deltas = append(deltas, d)
		}
		if len(deltas) >= 8 {
			break
		}
	}
	return deltas
}

// cmirAtScale builds the MIR cut at one scale factor; positions in the
// result's Idx field index into p.a/p.idx (as cmir's caller, Generate,
// expects before postprocess remaps to original columns).
func cmirAtScale(p *preprocessed, star []float64, delta float64) *Cut {
	if delta == 0 || math.IsInf(delta, 0) || math.IsNaN(delta) {
		return nil
	}
	scaledB := xprec.MulFloat64(xprec.Of(p.b), delta)
	f0 := frac(scaledB.Float64())
	if f0 < 1e-9 || f0 > 1-1e-9 {
		return nil
	}

	cut := &Cut{Kind: "cmir", RHS: math.Floor(scaledB.Float64())}
	for k, a := range p.a {
		scaled := xprec.MulFloat64(xprec.Of(a), delta).Float64()
		var coef float64
		if p.kind[k] == Continuous {
			if scaled <= 0 {
				continue
			}
			coef = scaled / (1 - f0)
		} else {
			fj := frac(scaled)
			coef = math.Floor(scaled) + math.Max(0, fj-f0)/(1-f0)
		}
		if coef == 0 {
			continue
		}
		cut.Idx = append(cut.Idx, k)
		cut.Coef = append(cut.Coef, coef)
	}
	return cut
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
