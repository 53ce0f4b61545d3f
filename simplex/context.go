// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simplex implements the revised dual simplex method of
// spec.md §4.3: two-phase CHUZR/BTRAN/PRICE/CHUZC/FTRAN/verify/
// update iterations, plus the SIP (slice-parallel) and PAMI
// (multi-pivot) parallel variants. The per-iteration protocol is
// generalized from gonum's own primal revised-simplex loop
// (optimize/convex/lp's parametric/affine-scaling methods, which drive
// CHUZR-like leaving-variable selection and Swap-chained basis updates
// over a dense tableau) to a sparse, warm-startable, dual-form engine
// operating through basis.Basis, sparsemat.CSC and luf.Factor.
package simplex

import (
	"errors"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/sparsemat"
	"github.com/dsmip/dsmip/sparsemat/luf"
	"github.com/dsmip/dsmip/xprec"
)

// Status is the terminal state of a Solve call, per spec.md §4.3's
// termination conditions.
type Status int8

const (
	Optimal Status = iota
	PrimalInfeasible
	DualUnbounded
	IterationLimit
	TimeLimit
	ObjectiveBoundReached
	NumericalFailure
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "Optimal"
	case PrimalInfeasible:
		return "PrimalInfeasible"
	case DualUnbounded:
		return "DualUnbounded"
	case IterationLimit:
		return "IterationLimit"
	case TimeLimit:
		return "TimeLimit"
	case ObjectiveBoundReached:
		return "ObjectiveBoundReached"
	case NumericalFailure:
		return "NumericalFailure"
	default:
		return "Status(invalid)"
	}
}

// ErrDimensionMismatch is returned by NewContext when the supplied
// arrays disagree on NumCol or NumRow.
var ErrDimensionMismatch = errors.New("simplex: dimension mismatch building context")

// Settings controls the dual simplex driver's tolerances, limits and
// pricing/parallelism strategy, generalizing gonum optimize's Settings
// struct (a plain exported-fields configuration object, no builder
// pattern) from unconstrained minimization to this engine's knobs.
type Settings struct {
	MaxIterations int
	IterationTimeLimitSeconds float64
	DualFeasTol   float64
	PrimalFeasTol float64
	PricingRule   basis.PricingRule
	VerifyTol     float64 // relative error tolerance between row- and column-side pivot recomputation
	// SIP/PAMI knobs, read only by SolveSIP and SolvePAMI; Solve
	// ignores them.
	Threads    int
	SliceLimit int
	BatchSize  int // M in spec.md §4.3's PAMI description
}

// DefaultSettings returns the tolerances spec.md's glossary and design
// notes name as typical defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:             100000,
		IterationTimeLimitSeconds: 0,
		DualFeasTol:               1e-7,
		PrimalFeasTol:             1e-7,
		PricingRule:               basis.DualSteepestEdge,
		VerifyTol:                 1e-9,
		Threads:                   1,
		SliceLimit:                8,
		BatchSize:                 4,
	}
}

// Context is the dual simplex engine's scratch and borrowed state for
// one solve, modeled on linsolve.Context's "one reusable scratch block
// per call, references borrowed not owned" shape (spec.md §9's engine-
// context design note): it never allocates a Basis, Factor or Weights
// of its own, it borrows the caller's (so a MIP search node can warm-
// start from its parent's basis).
type Context struct {
	NumRow, NumCol int // NumCol counts structural+slack columns together

	A    *sparsemat.CSC // NumRow x NumCol, slack columns are -I
	Cost []float64      // length NumCol
	Lo   []float64      // length NumCol
	Hi   []float64      // length NumCol

	Basis   *basis.Basis
	Factor  *luf.Factor
	Weights *basis.Weights

	xB []float64 // current value of each basic variable, length NumRow

	scratch   *sparsemat.Vector
	scratchRow *sparsemat.Vector
}

// NewContext builds a Context over an already-extended constraint
// matrix (structural columns followed by one slack column per row,
// each slack column the negative unit vector of its row -- see
// BuildExtendedMatrix). bas/factor/weights are borrowed, not copied.
func NewContext(a *sparsemat.CSC, cost, lo, hi []float64, bas *basis.Basis, factor *luf.Factor, weights *basis.Weights) (*Context, error) {
	numRow, numCol := a.Dims()
	if len(cost) != numCol || len(lo) != numCol || len(hi) != numCol {
		return nil, ErrDimensionMismatch
	}
	if bas.NumRow() != numRow || bas.NumVar() != numCol {
		return nil, ErrDimensionMismatch
	}
	return &Context{
		NumRow:     numRow,
		NumCol:     numCol,
		A:          a,
		Cost:       cost,
		Lo:         lo,
		Hi:         hi,
		Basis:      bas,
		Factor:     factor,
		Weights:    weights,
		xB:         make([]float64, numRow),
		scratch:    sparsemat.NewVector(numRow),
		scratchRow: sparsemat.NewVector(numRow),
	}, nil
}

// BuildExtendedMatrix appends one slack column per row (the negative
// unit vector of that row) to a, giving the standard a*x - s = 0 form
// spec.md's revised simplex operates on; row bounds [rowLower,rowUpper]
// become the slack variable's own bounds, leaving the structural
// columns' bounds untouched.
func BuildExtendedMatrix(a *sparsemat.CSC) *sparsemat.CSC {
	numRow, numCol := a.Dims()
	totalCol := numCol + numRow
	colStart := make([]int, totalCol+1)
	copy(colStart, a.ColStart[:numCol+1])
	rowIndex := append([]int(nil), a.RowIndex...)
	value := append([]float64(nil), a.Value...)
	for i := 0; i < numRow; i++ {
		rowIndex = append(rowIndex, i)
		value = append(value, -1)
		colStart[numCol+i+1] = colStart[numCol+i] + 1
	}
	return sparsemat.NewCSC(numRow, totalCol, colStart, rowIndex, value)
}

// nonbasicValue returns the value a nonbasic variable contributes:
// its lower bound, upper bound, or zero if free.
func (c *Context) nonbasicValue(v int) float64 {
	switch c.Basis.Status(v) {
	case basis.AtUpper:
		return c.Hi[v]
	case basis.Free, basis.Zero:
		return 0
	default:
		return c.Lo[v]
	}
}

// RefreshPrimal recomputes xB from scratch: xB = Binv * (-sum over
// nonbasic columns of their value * column). Used at solve start and
// after a refactorization.
func (c *Context) RefreshPrimal() error {
	rhs := make([]float64, c.NumRow)
	for v := 0; v < c.NumCol; v++ {
		if c.Basis.IsBasic(v) {
			continue
		}
		val := c.nonbasicValue(v)
		if val == 0 {
			continue
		}
		rows, vals := c.A.Col(v)
		for k, r := range rows {
			rhs[r] -= vals[k] * val
		}
	}
	c.scratch.CopyFromDense(rhs)
	if err := c.Factor.FTRAN(c.scratch); err != nil {
		return err
	}
	copy(c.xB, c.scratch.Dense())
	return nil
}

// Solution returns the value of every column (structural and slack)
// at the Context's current basis: basic columns from xB, nonbasic
// columns at whichever bound (or zero, if free) they currently sit at.
func (c *Context) Solution() []float64 {
	x := make([]float64, c.NumCol)
	basics := c.Basis.BasicIndices()
	for i, v := range basics {
		x[v] = c.xB[i]
	}
	for v := 0; v < c.NumCol; v++ {
		if c.Basis.IsBasic(v) {
			continue
		}
		x[v] = c.nonbasicValue(v)
	}
	return x
}

// ObjectiveValue returns the current cᵀx given the basic values in xB
// and every nonbasic variable sitting at its bound, accumulated via
// xprec.DotSum/Sum (spec.md §4.3's rebuild trigger requires the dual
// objective recomputed with exact extended-precision accumulation;
// this is the one place a terminal Context's objective gets reported,
// so it carries that requirement rather than a per-iteration estimate).
func (c *Context) ObjectiveValue() float64 {
	basics := c.Basis.BasicIndices()
	basicCost := make([]float64, len(basics))
	for i, v := range basics {
		basicCost[i] = c.Cost[v]
	}
	acc := xprec.DotSum(basicCost, c.xB)

	var nonbasicTerms []float64
	for v := 0; v < c.NumCol; v++ {
		if c.Basis.IsBasic(v) {
			continue
		}
		if val := c.nonbasicValue(v); val != 0 {
			nonbasicTerms = append(nonbasicTerms, c.Cost[v]*val)
		}
	}
	acc = xprec.Add(acc, xprec.Sum(nonbasicTerms))
	return acc.Float64()
}
