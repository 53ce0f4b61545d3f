// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsmip

import (
	"sort"

	"github.com/dsmip/dsmip/modelcheck"
)

// triplet is the row/column/value form the editing operations below
// convert the model's column-major CSC arrays to and from, since most
// edits (row insertion, row deletion, an arbitrary ChangeCoeff) are
// naturally row-oriented while the stored Model is column-oriented.
type triplet struct {
	row, col int
	val      float64
}

func modelTriplets(m *modelcheck.Model) []triplet {
	ts := make([]triplet, 0, len(m.AValue))
	for j := 0; j < m.NumCol; j++ {
		for k := m.AStart[j]; k < m.AStart[j+1]; k++ {
			ts = append(ts, triplet{row: m.AIndex[k], col: j, val: m.AValue[k]})
		}
	}
	return ts
}

// buildCSC reassembles column-major CSC arrays from a triplet list,
// sorting each column's entries by row for a deterministic layout.
func buildCSC(numCol int, ts []triplet) (aStart []int, aIndex []int, aValue []float64) {
	byCol := make([][]triplet, numCol)
	for _, t := range ts {
		byCol[t.col] = append(byCol[t.col], t)
	}
	aStart = make([]int, numCol+1)
	for j := 0; j < numCol; j++ {
		sort.Slice(byCol[j], func(a, b int) bool { return byCol[j][a].row < byCol[j][b].row })
		aStart[j+1] = aStart[j] + len(byCol[j])
	}
	aIndex = make([]int, aStart[numCol])
	aValue = make([]float64, aStart[numCol])
	for j := 0; j < numCol; j++ {
		for i, t := range byCol[j] {
			aIndex[aStart[j]+i] = t.row
			aValue[aStart[j]+i] = t.val
		}
	}
	return aStart, aIndex, aValue
}

// assessAndCommit validates cand and, on anything short of Error,
// commits it as the active model; every editing operation below ends
// by calling this so the "atomic: all-or-nothing" guarantee of
// spec.md §6 holds in exactly one place.
func (o *Optimizer) assessAndCommit(cand *modelcheck.Model) Result {
	outcome, findings := modelcheck.AssessModel(cand, o.opts.Model)
	if outcome == modelcheck.Error {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: &ValidationError{Findings: findings}}
	}
	o.commit(cand, findings)
	return Result{Status: statusFor(outcome), ModelStatus: o.modelStatus}
}

// AddCols appends n columns (costs/lb/ub of length n, a CSC-format
// batch of their nonzeros) atomically, per spec.md §6's add_cols row.
// integer may be nil (all-continuous) or length n.
func (o *Optimizer) AddCols(costs, lb, ub []float64, aStart []int, aIndex []int, aValue []float64, integer []bool) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	n := len(costs)
	if len(lb) != n || len(ub) != n || len(aStart) != n+1 {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrDimensionMismatch}
	}
	if len(aIndex) != aStart[n] || len(aValue) != aStart[n] {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrDimensionMismatch}
	}

	cand := cloneModel(o.model)
	oldNumCol := cand.NumCol
	ts := modelTriplets(cand)
	for j := 0; j < n; j++ {
		for k := aStart[j]; k < aStart[j+1]; k++ {
			ts = append(ts, triplet{row: aIndex[k], col: oldNumCol + j, val: aValue[k]})
		}
	}

	cand.NumCol += n
	cand.ColCost = append(cand.ColCost, costs...)
	cand.ColLower = append(cand.ColLower, lb...)
	cand.ColUpper = append(cand.ColUpper, ub...)
	if integer != nil || cand.Integrality != nil {
		integ := cand.Integrality
		if integ == nil {
			integ = make([]modelcheck.VarType, oldNumCol)
		}
		for j := 0; j < n; j++ {
			vt := modelcheck.Continuous
			if integer != nil && integer[j] {
				vt = modelcheck.Integer
			}
			integ = append(integ, vt)
		}
		cand.Integrality = integ
	}
	cand.AStart, cand.AIndex, cand.AValue = buildCSC(cand.NumCol, ts)

	return o.assessAndCommit(cand)
}

// AddRows appends n rows (lb/ub of length n, a row-wise batch of their
// nonzeros: entries rowStart[i]..rowStart[i+1] of rowIndex (column
// indices) and rowValue belong to new row i) atomically, per spec.md
// §6's add_rows row.
func (o *Optimizer) AddRows(lb, ub []float64, rowStart []int, rowIndex []int, rowValue []float64) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	n := len(lb)
	if len(ub) != n || len(rowStart) != n+1 {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrDimensionMismatch}
	}
	if len(rowIndex) != rowStart[n] || len(rowValue) != rowStart[n] {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrDimensionMismatch}
	}

	cand := cloneModel(o.model)
	oldNumRow := cand.NumRow
	ts := modelTriplets(cand)
	for i := 0; i < n; i++ {
		for k := rowStart[i]; k < rowStart[i+1]; k++ {
			ts = append(ts, triplet{row: oldNumRow + i, col: rowIndex[k], val: rowValue[k]})
		}
	}

	cand.NumRow += n
	cand.RowLower = append(cand.RowLower, lb...)
	cand.RowUpper = append(cand.RowUpper, ub...)
	cand.AStart, cand.AIndex, cand.AValue = buildCSC(cand.NumCol, ts)

	return o.assessAndCommit(cand)
}

// ChangeColCost sets column j's cost, per spec.md §6's
// change_col_cost row.
func (o *Optimizer) ChangeColCost(j int, cost float64) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	if j < 0 || j >= o.model.NumCol {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrIndexOutOfRange}
	}
	cand := cloneModel(o.model)
	cand.ColCost[j] = cost
	return o.assessAndCommit(cand)
}

// ChangeColBounds sets column j's [lo,hi], per spec.md §6's
// change_col_bounds row.
func (o *Optimizer) ChangeColBounds(j int, lo, hi float64) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	if j < 0 || j >= o.model.NumCol {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrIndexOutOfRange}
	}
	cand := cloneModel(o.model)
	cand.ColLower[j], cand.ColUpper[j] = lo, hi
	return o.assessAndCommit(cand)
}

// ChangeColIntegrality marks column j integer or continuous, per
// spec.md §6's change_col_integrality row.
func (o *Optimizer) ChangeColIntegrality(j int, integer bool) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	if j < 0 || j >= o.model.NumCol {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrIndexOutOfRange}
	}
	cand := cloneModel(o.model)
	if cand.Integrality == nil {
		cand.Integrality = make([]modelcheck.VarType, cand.NumCol)
	}
	if integer {
		cand.Integrality[j] = modelcheck.Integer
	} else {
		cand.Integrality[j] = modelcheck.Continuous
	}
	return o.assessAndCommit(cand)
}

// ChangeRowBounds sets row i's [lo,hi], per spec.md §6's
// change_row_bounds row.
func (o *Optimizer) ChangeRowBounds(i int, lo, hi float64) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	if i < 0 || i >= o.model.NumRow {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrIndexOutOfRange}
	}
	cand := cloneModel(o.model)
	cand.RowLower[i], cand.RowUpper[i] = lo, hi
	return o.assessAndCommit(cand)
}

// ChangeCoeff sets A[row,col] to value, modifying the existing entry
// if one is present or inserting a new one otherwise, per spec.md §6's
// change_coeff row.
func (o *Optimizer) ChangeCoeff(row, col int, value float64) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	if row < 0 || row >= o.model.NumRow || col < 0 || col >= o.model.NumCol {
		return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrIndexOutOfRange}
	}
	cand := cloneModel(o.model)
	ts := modelTriplets(cand)
	found := false
	for i := range ts {
		if ts[i].row == row && ts[i].col == col {
			ts[i].val = value
			found = true
			break
		}
	}
	if !found {
		ts = append(ts, triplet{row: row, col: col, val: value})
	}
	cand.AStart, cand.AIndex, cand.AValue = buildCSC(cand.NumCol, ts)
	return o.assessAndCommit(cand)
}

// DeleteCols removes the given column indices (a set, not required to
// be sorted or a contiguous range) and densely renumbers the survivors,
// per spec.md §6's delete_cols row.
func (o *Optimizer) DeleteCols(idx []int) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	cand := cloneModel(o.model)
	drop := make(map[int]bool, len(idx))
	for _, j := range idx {
		if j < 0 || j >= cand.NumCol {
			return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrIndexOutOfRange}
		}
		drop[j] = true
	}

	remap := make([]int, cand.NumCol)
	var newCost, newLo, newHi []float64
	var newInteg []modelcheck.VarType
	if cand.Integrality != nil {
		newInteg = make([]modelcheck.VarType, 0, cand.NumCol-len(drop))
	}
	next := 0
	for j := 0; j < cand.NumCol; j++ {
		if drop[j] {
			remap[j] = -1
			continue
		}
		remap[j] = next
		next++
		newCost = append(newCost, cand.ColCost[j])
		newLo = append(newLo, cand.ColLower[j])
		newHi = append(newHi, cand.ColUpper[j])
		if newInteg != nil {
			newInteg = append(newInteg, cand.Integrality[j])
		}
	}

	ts := modelTriplets(cand)
	kept := ts[:0]
	for _, t := range ts {
		if remap[t.col] < 0 {
			continue
		}
		t.col = remap[t.col]
		kept = append(kept, t)
	}

	cand.NumCol = next
	cand.ColCost, cand.ColLower, cand.ColUpper = newCost, newLo, newHi
	cand.Integrality = newInteg
	cand.AStart, cand.AIndex, cand.AValue = buildCSC(cand.NumCol, kept)

	return o.assessAndCommit(cand)
}

// DeleteRows removes the given row indices and densely renumbers the
// survivors, per spec.md §6's delete_rows row.
func (o *Optimizer) DeleteRows(idx []int) Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	cand := cloneModel(o.model)
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		if i < 0 || i >= cand.NumRow {
			return Result{Status: Error, ModelStatus: o.modelStatus, Err: ErrIndexOutOfRange}
		}
		drop[i] = true
	}

	remap := make([]int, cand.NumRow)
	var newLo, newHi []float64
	next := 0
	for i := 0; i < cand.NumRow; i++ {
		if drop[i] {
			remap[i] = -1
			continue
		}
		remap[i] = next
		next++
		newLo = append(newLo, cand.RowLower[i])
		newHi = append(newHi, cand.RowUpper[i])
	}

	ts := modelTriplets(cand)
	kept := ts[:0]
	for _, t := range ts {
		if remap[t.row] < 0 {
			continue
		}
		t.row = remap[t.row]
		kept = append(kept, t)
	}

	cand.NumRow = next
	cand.RowLower, cand.RowUpper = newLo, newHi
	cand.AStart, cand.AIndex, cand.AValue = buildCSC(cand.NumCol, kept)

	return o.assessAndCommit(cand)
}

// GetCol returns a read-only snapshot of column j: its cost, bounds,
// and nonzero (row, value) pairs, per spec.md §6's get_col row.
func (o *Optimizer) GetCol(j int) (cost, lo, hi float64, rows []int, vals []float64, err error) {
	if o.model == nil {
		return 0, 0, 0, nil, nil, ErrNoModel
	}
	if j < 0 || j >= o.model.NumCol {
		return 0, 0, 0, nil, nil, ErrIndexOutOfRange
	}
	m := o.model
	s, e := m.AStart[j], m.AStart[j+1]
	rows = append([]int(nil), m.AIndex[s:e]...)
	vals = append([]float64(nil), m.AValue[s:e]...)
	return m.ColCost[j], m.ColLower[j], m.ColUpper[j], rows, vals, nil
}

// GetRow returns row i's bounds, per spec.md §6's get_row row.
func (o *Optimizer) GetRow(i int) (lo, hi float64, err error) {
	if o.model == nil {
		return 0, 0, ErrNoModel
	}
	if i < 0 || i >= o.model.NumRow {
		return 0, 0, ErrIndexOutOfRange
	}
	return o.model.RowLower[i], o.model.RowUpper[i], nil
}

// GetCoeff returns A[row,col] (zero if no explicit entry is stored),
// per spec.md §6's get_coeff row.
func (o *Optimizer) GetCoeff(row, col int) (float64, error) {
	if o.model == nil {
		return 0, ErrNoModel
	}
	m := o.model
	if row < 0 || row >= m.NumRow || col < 0 || col >= m.NumCol {
		return 0, ErrIndexOutOfRange
	}
	for k := m.AStart[col]; k < m.AStart[col+1]; k++ {
		if m.AIndex[k] == row {
			return m.AValue[k], nil
		}
	}
	return 0, nil
}
