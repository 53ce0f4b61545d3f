package domain

import (
	"github.com/dsmip/dsmip/sparsemat"
)

// Clique is an at-most-one set of binary variables (spec.md §4.4):
// at most one of Vars may be 1. Rows with exactly this structure are
// detected upstream (typically during presolve) and handed here as a
// flat table, mirroring original_source's HighsCliqueTable which keeps
// cliques out of the general row-propagation path because the implied
// bound is exact (fix-to-zero) rather than an interval estimate.
type Clique struct {
	Vars []int
}

// PropagateCliques applies every clique's implication once: if any
// member is fixed to 1 (its domain is exactly [1,1]), every other
// member is tightened to upper bound 0. It returns Conflict as soon as
// any tighten call does, leaving the domain in the partially-applied
// state the caller should BacktrackTo.
func PropagateCliques(d *Domain, cliques []Clique) Result {
	worst := Redundant
	for _, c := range cliques {
		fixedOne := -1
		for _, v := range c.Vars {
			if d.Lo(v) == 1 && d.Hi(v) == 1 {
				fixedOne = v
				break
			}
		}
		if fixedOne < 0 {
			continue
		}
		for _, v := range c.Vars {
			if v == fixedOne {
				continue
			}
			if d.Hi(v) == 0 {
				continue
			}
			switch r := d.TightenUpper(v, 0, CliquePropagation); r {
			case Conflict:
				return Conflict
			case Tightened:
				worst = Tightened
			}
		}
	}
	return worst
}

// PropagateRow derives implied column bounds from a single row's
// interval-arithmetic activity, per spec.md §4.4: given row i of a, with
// bounds [rowLo,rowUp], and the current domain for every other column
// held at its current interval, a column j with nonzero coefficient
// a_j can be tightened to keep the row feasible. This is the singleton
// case of the general row-activity propagation HighsSearch.h describes
// as one of the domain's propagation engines.
func PropagateRow(d *Domain, a *sparsemat.CSR, rowLower, rowUpper []float64, row int) Result {
	cols, vals := a.Row(row)
	if len(cols) == 0 {
		return Redundant
	}
	lo, hi := a.RowActivityBounds(row, d.lo, d.hi)
	rowLo, rowUp := rowLower[row], rowUpper[row]

	worst := Redundant
	for k, j := range cols {
		coef := vals[k]
		if coef == 0 {
			continue
		}
		l, u := d.Lo(j), d.Hi(j)

		// Activity excluding column j's own contribution, so the
		// implied bound on x_j doesn't recursively depend on itself.
		var exLo, exHi float64
		if coef >= 0 {
			exLo, exHi = lo-coef*l, hi-coef*u
		} else {
			exLo, exHi = lo-coef*u, hi-coef*l
		}

		var r Result
		if coef > 0 {
			// coef*x_j + rest <= rowUp  =>  x_j <= (rowUp - exLo)/coef
			if rowUp < infinityBound {
				newUp := (rowUp - exLo) / coef
				r = d.TightenUpper(j, newUp, RowPropagation)
				worst = combine(worst, r)
				if r == Conflict {
					return Conflict
				}
			}
			// coef*x_j + rest >= rowLo  =>  x_j >= (rowLo - exHi)/coef
			if rowLo > -infinityBound {
				newLo := (rowLo - exHi) / coef
				r = d.TightenLower(j, newLo, RowPropagation)
				worst = combine(worst, r)
				if r == Conflict {
					return Conflict
				}
			}
		} else {
			if rowUp < infinityBound {
				newLo := (rowUp - exLo) / coef
				r = d.TightenLower(j, newLo, RowPropagation)
				worst = combine(worst, r)
				if r == Conflict {
					return Conflict
				}
			}
			if rowLo > -infinityBound {
				newUp := (rowLo - exHi) / coef
				r = d.TightenUpper(j, newUp, RowPropagation)
				worst = combine(worst, r)
				if r == Conflict {
					return Conflict
				}
			}
		}
	}
	return worst
}

// infinityBound matches modelcheck.Infinity; duplicated here rather
// than imported to keep domain independent of modelcheck (domain is a
// lower-level package the model layer doesn't need to know about).
const infinityBound = 1e30

func combine(a, b Result) Result {
	if b > a {
		return b
	}
	return a
}
