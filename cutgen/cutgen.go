// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cutgen generates single-row cutting planes (lifted knapsack
// covers and c-MIR) for the branch-and-bound search of spec.md §4.6,
// grounded on the pipeline order described by
// original_source/src/mip/HighsCutGeneration.h: preprocess, cover
// identification, three lifted-cover variants tried in order, c-MIR as
// a fallback, then a shared postprocess/pool-insert step.
package cutgen

import (
	"math"

	"github.com/dsmip/dsmip/xprec"
)

const defaultEpsilon = 1e-10

// VarKind classifies a cut-row variable for the preprocessing pass.
type VarKind int8

const (
	Continuous VarKind = iota
	GeneralInteger
	UnboundedInteger
)

// Row is a single-row relaxation aᵀx <= b with variable bounds and
// integrality, the input to the cut generation pipeline.
type Row struct {
	Coef   []float64
	Kind   []VarKind
	Lo, Hi []float64 // Hi may be +inf (>=1e25, per spec.md's sentinel rule)
	Star   []float64 // the LP relaxation point x* the row is separated against
	RHS    float64
}

// preprocessed is the base inequality after complementing variables at
// their upper bound so every coefficient is non-negative, dropping
// entries below epsilon.
type preprocessed struct {
	idx     []int // original column indices kept after preprocessing
	a       []float64
	b       float64
	complemented []bool // true if column idx[k] was complemented at its upper bound
	kind    []VarKind
	hasUnboundedInt bool
	hasGeneralInt   bool
	hasContinuous   bool
}

// Preprocess complements every variable at its upper bound (x_j = u_j -
// y_j, y_j >= 0) so all coefficients become non-negative, drops entries
// with |a_j| < epsilon, and classifies the row's variable mix.
func Preprocess(r *Row, epsilon float64) *preprocessed {
	if epsilon <= 0 {
		epsilon = defaultEpsilon
	}
	p := &preprocessed{b: r.RHS}
	for j, a := range r.Coef {
		if math.Abs(a) < epsilon {
			continue
		}
		complement := a < 0
		aa := a
		if complement {
			if r.Hi[j] >= 1e25 {
				// Can't complement an unbounded-above variable at a
				// negative coefficient; keep it signed and let c-MIR's
				// scale search deal with it rather than the cover path.
				complement = false
			} else {
				aa = -a
				p.b -= a * r.Hi[j]
			}
		}
		p.idx = append(p.idx, j)
		p.a = append(p.a, aa)
		p.complemented = append(p.complemented, complement)
		p.kind = append(p.kind, r.Kind[j])
		switch r.Kind[j] {
		case UnboundedInteger:
			p.hasUnboundedInt = true
		case GeneralInteger:
			p.hasGeneralInt = true
		default:
			p.hasContinuous = true
		}
	}
	return p
}

// Cut is a generated cutting plane over the original column space:
// sum(Coef[k]*x[Idx[k]]) <= RHS, with a fingerprint for pool dedup.
type Cut struct {
	Idx  []int
	Coef []float64
	RHS  float64
	Kind string // "lifted-knapsack-cover" | "lifted-mixed-binary-cover" | "lifted-mixed-integer-cover" | "cmir"
}

// Options bounds the generation pipeline, per spec.md §4.6.
type Options struct {
	Epsilon     float64
	MinEfficacy float64 // violation must be >= MinEfficacy * ||a||
	ScaleDownTol, ScaleUpTol float64
}

// DefaultOptions returns the tolerances spec.md names as typical.
func DefaultOptions() Options {
	return Options{Epsilon: defaultEpsilon, MinEfficacy: 1e-4, ScaleDownTol: 1e-9, ScaleUpTol: 1e-6}
}

// Generate runs the full pipeline of spec.md §4.6 over one row and
// returns the best accepted cut, or nil if nothing cleared the efficacy
// threshold.
func Generate(r *Row, opts Options) *Cut {
	p := Preprocess(r, opts.Epsilon)
	if len(p.a) == 0 {
		return nil
	}
	cover, lambda := identifyCover(p, r.Star)
	if cover != nil {
		if cut := liftedCoverCuts(p, cover, lambda, opts); cut != nil {
			if accept(cut, p, r, opts) {
				return postprocess(cut, p, r, opts)
			}
		}
	}
	if cut := cmir(p, r.Star, opts); cut != nil {
		if accept(cut, p, r, opts) {
			return postprocess(cut, p, r, opts)
		}
	}
	return nil
}

// accept reports whether a candidate cut (still indexed by position into
// p.a/p.idx) clears the minimum efficacy threshold against the original
// x*.
func accept(cut *Cut, p *preprocessed, r *Row, opts Options) bool {
	var violation, normSq float64
	for k, pos := range cut.Idx {
		violation += cut.Coef[k] * r.Star[p.idx[pos]]
		normSq += cut.Coef[k] * cut.Coef[k]
	}
	violation -= cut.RHS
	norm := math.Sqrt(normSq)
	if norm == 0 {
		return false
	}
	return violation >= opts.MinEfficacy*norm
}

// postprocess complements the cut's coefficients back into the original
// (uncomplemented) variable space, attempts integer scaling, and drops
// tiny coefficients, per spec.md §4.6 step 5.
func postprocess(cut *Cut, p *preprocessed, r *Row, opts Options) *Cut {
	// cut.Idx currently holds positions into p.idx/p.complemented; map
	// back to original column indices and flip sign/rhs for complemented
	// columns (y_j = u_j - x_j  =>  coef*y_j = -coef*x_j + coef*u_j).
	origIdx := make([]int, len(cut.Idx))
	coef := append([]float64(nil), cut.Coef...)
	rhs := cut.RHS
	for k, pos := range cut.Idx {
		j := p.idx[pos]
		origIdx[k] = j
		if p.complemented[pos] {
			rhs += coef[k] * r.Hi[j]
			coef[k] = -coef[k]
		}
	}
	packed := append(append([]float64(nil), coef...), rhs)
	if d := xprec.CommonDenominatorScale(packed, opts.ScaleDownTol, opts.ScaleUpTol); d != 0 {
		coef = packed[:len(coef)]
		rhs = packed[len(coef)]
	}

	out := &Cut{Kind: cut.Kind, RHS: rhs}
	for k, c := range coef {
		if math.Abs(c) < opts.Epsilon {
			continue
		}
		out.Idx = append(out.Idx, origIdx[k])
		out.Coef = append(out.Coef, c)
	}
	return out
}
