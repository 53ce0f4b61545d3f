// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package luf implements the product-form LU basis factor: a dense LU
// refactorization of the current basis matrix (delegated to
// gonum.org/v1/gonum/mat.LU, the teacher's own factorization type) plus a
// forward sequence of rank-one eta updates applied since the last
// refactorization, directly adapted from optimize/convex/lp/swap.go's
// Swap type (itself a chain of rank-one updates to the identity, solved
// via the Sherman-Morrison formula).
package luf

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/dsmip/dsmip/sparsemat"
)

// Errors returned by Factor operations, matching the Singular/
// IllConditioned/UpdateLimit error kinds of spec.md §4.2 and §7.
var (
	ErrSingular      = errors.New("luf: basis matrix is singular")
	ErrIllConditioned = errors.New("luf: basis matrix condition estimate exceeds threshold")
	ErrUpdateLimit   = errors.New("luf: accumulated eta updates exceed refactor threshold")
)

// DefaultConditionThreshold bounds the 2-norm condition number estimate
// accepted at refactorization before a basis is declared IllConditioned.
const DefaultConditionThreshold = 1e14

// DefaultUpdateLimit bounds the number of eta updates accumulated since
// the last refactorization before Update forces a rebuild.
const DefaultUpdateLimit = 100

// eta is one product-form update: E = I + (y - e_k) e_kᵀ, recorded as the
// dense column y (the pivotal column after FTRAN) and the pivot position
// k, exactly the representation optimize/convex/lp/swap.go's Swap.Append
// uses.
type eta struct {
	y []float64
	k int
}

// Factor is the product-form LU basis factor of spec.md §3/§4.2: a dense
// refactorization B = LU plus the eta sequence of updates since that
// refactorization. FTRAN(ej) (the j-th FTRAN of a unit vector) returns
// column j of the current basis inverse, exactly as the invariant in
// spec.md requires, because every Update corresponds to exactly one
// accepted simplex pivot.
type Factor struct {
	dim               int
	lu                mat.LU
	etas              []eta
	conditionThreshold float64
	updateLimit       int
}

// New returns an empty factor for an n×n basis; call Refactor before use.
func New(n int, conditionThreshold float64, updateLimit int) *Factor {
	if conditionThreshold <= 0 {
		conditionThreshold = DefaultConditionThreshold
	}
	if updateLimit <= 0 {
		updateLimit = DefaultUpdateLimit
	}
	return &Factor{dim: n, conditionThreshold: conditionThreshold, updateLimit: updateLimit}
}

// Dim returns the basis dimension.
func (f *Factor) Dim() int { return f.dim }

// UpdateCount returns the number of eta updates since the last Refactor.
func (f *Factor) UpdateCount() int { return len(f.etas) }

// Refactor rebuilds the factor from scratch given the dense basis matrix
// B (the caller is responsible for extracting B's columns from the
// constraint matrix for the current basic index set, e.g. via
// ExtractColumns). It clears the eta sequence.
func (f *Factor) Refactor(b *mat.Dense) error {
	r, c := b.Dims()
	if r != f.dim || c != f.dim {
		panic("luf: basis matrix has wrong dimension")
	}
	var lu mat.LU
	lu.Factorize(b)
	if cond := lu.Cond(); cond > f.conditionThreshold {
		return ErrIllConditioned
	}
	f.lu = lu
	f.etas = f.etas[:0]
	return nil
}

// ExtractColumns builds the dense m×len(cols) matrix out of the columns
// of a listed by cols, directly adapted from gonum's
// optimize/convex/lp.extractColumns.
func ExtractColumns(a *sparsemat.CSC, cols []int) *mat.Dense {
	m := a.NumRow
	sub := mat.NewDense(m, len(cols), nil)
	for j, idx := range cols {
		rows, vals := a.Col(idx)
		for k, r := range rows {
			sub.Set(r, j, vals[k])
		}
	}
	return sub
}

// FTRAN solves B x = v in place, applying the dense LU solve followed by
// the eta sequence in forward (chronological) order, matching
// Swap.SolveVec's trans==false branch.
func (f *Factor) FTRAN(v *sparsemat.Vector) error {
	dense := v.Dense()
	x := mat.NewVecDense(f.dim, append([]float64(nil), dense...))
	var out mat.VecDense
	if err := f.lu.SolveVecTo(&out, false, x); err != nil {
		return ErrSingular
	}
	result := make([]float64, f.dim)
	for i := 0; i < f.dim; i++ {
		result[i] = out.AtVec(i)
	}
	for _, e := range f.etas {
		k := e.k
		yk := e.y[k]
		if yk == 0 {
			return ErrSingular
		}
		vk := result[k] / yk
		for i := range result {
			result[i] -= vk * e.y[i]
		}
		result[k] = vk
	}
	v.CopyFromDense(result)
	return nil
}

// BTRAN solves Bᵀ x = v in place, applying the eta sequence in reverse
// order (transposed) followed by the dense LU transpose solve, matching
// Swap.SolveVec's trans==true branch.
func (f *Factor) BTRAN(v *sparsemat.Vector) error {
	dense := append([]float64(nil), v.Dense()...)
	for i := len(f.etas) - 1; i >= 0; i-- {
		e := f.etas[i]
		k := e.k
		yk := e.y[k]
		if yk == 0 {
			return ErrSingular
		}
		vk := dense[k]
		var dot float64
		for j, y := range e.y {
			dot += y * dense[j]
		}
		dense[k] = vk - (dot-vk)/yk
	}
	x := mat.NewVecDense(f.dim, dense)
	var out mat.VecDense
	if err := f.lu.SolveVecTo(&out, true, x); err != nil {
		return ErrSingular
	}
	result := make([]float64, f.dim)
	for i := 0; i < f.dim; i++ {
		result[i] = out.AtVec(i)
	}
	v.CopyFromDense(result)
	return nil
}

// Update appends a product-form eta for a pivot that replaces the basic
// variable at position leavingRow with the entering variable whose
// pivotal column (after FTRAN) is pivotColumn. It returns ErrUpdateLimit
// once the accumulated update count exceeds the configured threshold,
// signalling the driver to schedule a rebuild (rebuild_reason =
// UpdateLimit in spec.md §4.3).
func (f *Factor) Update(pivotColumn []float64, leavingRow int) error {
	if len(f.etas) >= f.updateLimit {
		return ErrUpdateLimit
	}
	y := append([]float64(nil), pivotColumn...)
	if y[leavingRow] == 0 {
		return ErrSingular
	}
	f.etas = append(f.etas, eta{y: y, k: leavingRow})
	return nil
}
