// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package search

import (
	"sort"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/cutgen"
	"github.com/dsmip/dsmip/simplex"
	"github.com/dsmip/dsmip/sparsemat"
	"github.com/dsmip/dsmip/sparsemat/luf"
)

// cutBoundInf mirrors simplex's boundInf/domain's infinityBound, kept
// as its own copy per this module's convention of not importing across
// these lower-level packages just for a sentinel constant.
const cutBoundInf = 1e30

// CutSettings bounds the root-only cut generation pass of spec.md
// §4.6, run once before branch-and-bound starts.
type CutSettings struct {
	Enabled     bool
	MaxRounds   int // rounds of root re-solve + cut generation
	MaxPerRound int // cap on cuts accepted into the pool per round
	Options     cutgen.Options
}

// DefaultCutSettings returns a small, bounded cut pass: a handful of
// rounds, capped per round, so cutAndBranchRoot's cold-start rebuild
// cost stays proportionate to what it buys.
func DefaultCutSettings() CutSettings {
	return CutSettings{Enabled: false, MaxRounds: 5, MaxPerRound: 20, Options: cutgen.DefaultOptions()}
}

// cutAndBranchRoot implements a cut-and-branch simplification of
// spec.md §4.6's cut generator: rather than growing the live Context's
// rows mid-tree (which simplex.Context's fixed-size construction makes
// architecturally risky), it resolves the root relaxation, generates
// single-row cuts from the current fractional solution, and — if any
// are new — rebuilds a strictly larger Context/Problem cold-started
// over the augmented row system, repeating up to settings.Cuts.
// MaxRounds times or until a round finds nothing new. Branching itself
// always starts from whatever row system this leaves behind; no cuts
// are generated below the root.
func cutAndBranchRoot(c *simplex.Context, p *Problem, settings Settings) (*simplex.Context, *Problem, error) {
	if !settings.Cuts.Enabled || p.RowA == nil {
		return c, p, nil
	}
	pool := cutgen.NewPool()
	for round := 0; round < settings.Cuts.MaxRounds; round++ {
		status, _, err := simplex.Solve(c, settings.LP)
		if err != nil {
			return c, p, err
		}
		if status != simplex.Optimal {
			return c, p, nil
		}
		x := c.Solution()

		before := pool.Len()
		numRow, numStructCol := p.RowA.Dims()
		added := 0
		for i := 0; i < numRow && added < settings.Cuts.MaxPerRound; i++ {
			cut := generateRowCut(p, x, i, numStructCol, settings.Cuts.Options)
			if cut == nil {
				continue
			}
			if pool.Insert(cut) {
				added++
			}
		}
		if pool.Len() == before {
			return c, p, nil
		}

		c, p, err = rebuildWithCuts(p, pool.Cuts(), settings)
		if err != nil {
			return c, p, err
		}
	}
	return c, p, nil
}

// generateRowCut builds a cutgen.Row for row i (structural columns
// only) and runs the generation pipeline against the current
// relaxation point x. Range rows (both bounds finite) are separated
// only against their upper bound; no second cut is generated for the
// lower bound of the same row.
func generateRowCut(p *Problem, x []float64, i, numStructCol int, opts cutgen.Options) *cutgen.Cut {
	rowUp := p.RowUpper[i]
	sign := 1.0
	if rowUp >= cutBoundInf {
		if p.RowLower[i] <= -cutBoundInf {
			return nil
		}
		rowUp = -p.RowLower[i]
		sign = -1
	}

	cols, vals := p.RowA.Row(i)
	if len(cols) == 0 {
		return nil
	}
	row := &cutgen.Row{
		Coef: make([]float64, numStructCol),
		Kind: make([]cutgen.VarKind, numStructCol),
		Lo:   p.Lo[:numStructCol],
		Hi:   p.Hi[:numStructCol],
		Star: x[:numStructCol],
		RHS:  rowUp,
	}
	for k, j := range cols {
		row.Coef[j] = sign * vals[k]
	}
	for j := 0; j < numStructCol; j++ {
		switch {
		case !p.Integer[j]:
			row.Kind[j] = cutgen.Continuous
		case row.Hi[j] >= cutBoundInf:
			row.Kind[j] = cutgen.UnboundedInteger
		default:
			row.Kind[j] = cutgen.GeneralInteger
		}
	}
	return cutgen.Generate(row, opts)
}

// cutTriplet is the row/column/value form rebuildWithCuts assembles
// the augmented structural matrix from, the same row-oriented-to-
// column-major conversion the facade's own editing operations use
// (dsmip/edit.go's triplet/buildCSC) for exactly the same reason: the
// new data (one new row per cut) is naturally row-oriented while CSC
// is column-major.
type cutTriplet struct {
	row, col int
	val      float64
}

// rebuildWithCuts constructs a brand-new Context/Problem over p's
// structural system plus one new row (and matching slack column) per
// cut in cuts, cold-started at the all-slack basis (the cut-and-branch
// rebuild-rather-than-grow design above).
func rebuildWithCuts(p *Problem, cuts []cutgen.Cut, settings Settings) (*simplex.Context, *Problem, error) {
	oldNumRow, numStructCol := p.RowA.Dims()
	newNumRow := oldNumRow + len(cuts)

	var ts []cutTriplet
	for i := 0; i < oldNumRow; i++ {
		cols, vals := p.RowA.Row(i)
		for k, j := range cols {
			ts = append(ts, cutTriplet{i, j, vals[k]})
		}
	}
	rowLower := append([]float64(nil), p.RowLower[:oldNumRow]...)
	rowUpper := append([]float64(nil), p.RowUpper[:oldNumRow]...)
	for k, cut := range cuts {
		r := oldNumRow + k
		for idx, j := range cut.Idx {
			ts = append(ts, cutTriplet{r, j, cut.Coef[idx]})
		}
		rowLower = append(rowLower, -cutBoundInf)
		rowUpper = append(rowUpper, cut.RHS)
	}

	byCol := make([][]cutTriplet, numStructCol)
	for _, t := range ts {
		byCol[t.col] = append(byCol[t.col], t)
	}
	colStart := make([]int, numStructCol+1)
	for j := 0; j < numStructCol; j++ {
		sort.Slice(byCol[j], func(a, b int) bool { return byCol[j][a].row < byCol[j][b].row })
		colStart[j+1] = colStart[j] + len(byCol[j])
	}
	rowIndex := make([]int, colStart[numStructCol])
	value := make([]float64, colStart[numStructCol])
	for j := 0; j < numStructCol; j++ {
		for i, t := range byCol[j] {
			rowIndex[colStart[j]+i] = t.row
			value[colStart[j]+i] = t.val
		}
	}
	base := sparsemat.NewCSC(newNumRow, numStructCol, colStart, rowIndex, value)
	ext := simplex.BuildExtendedMatrix(base)
	newNumCol := numStructCol + newNumRow

	cost := make([]float64, newNumCol)
	lo := make([]float64, newNumCol)
	hi := make([]float64, newNumCol)
	copy(cost, p.Cost[:numStructCol])
	copy(lo, p.Lo[:numStructCol])
	copy(hi, p.Hi[:numStructCol])
	for i := 0; i < newNumRow; i++ {
		lo[numStructCol+i] = rowLower[i]
		hi[numStructCol+i] = rowUpper[i]
	}

	integer := make([]bool, newNumCol)
	copy(integer, p.Integer[:numStructCol])

	bas := basis.New(newNumRow, newNumCol)
	initStatus := make([]basis.Status, numStructCol)
	for j := 0; j < numStructCol; j++ {
		initStatus[j] = basis.DualFeasibleStatus(cost[j], lo[j], hi[j])
	}
	bas.SetAllSlackBasis(numStructCol, initStatus)

	factor := luf.New(newNumRow, 0, 0)
	weights := basis.NewWeights(settings.LP.PricingRule, newNumRow)

	ctx, err := simplex.NewContext(ext, cost, lo, hi, bas, factor, weights)
	if err != nil {
		return nil, nil, err
	}

	newP := &Problem{
		NumCol:   newNumCol,
		NumRow:   newNumRow,
		Cost:     cost,
		Lo:       lo,
		Hi:       hi,
		Integer:  integer,
		A:        ext,
		RowA:     base.ToCSR(),
		RowLower: rowLower,
		RowUpper: rowUpper,
		Cliques:  p.Cliques,
	}
	return ctx, newP, nil
}
