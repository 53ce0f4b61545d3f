// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparsemat implements the sparse linear algebra kernel: a
// compressed column/row matrix type, an indexed sparse vector with lazy
// densification, and (in the luf subpackage) a product-form LU basis
// factor. It generalizes the dense mat.Dense-based linear solves in
// gonum's lp.simplex to sparse storage, and adapts linsolve's reusable
// *mat.VecDense scratch-buffer idiom to a vector that also tracks which
// entries are actually nonzero.
package sparsemat

// Vector is a sparse vector of dimension N backed by a dense value array
// plus a packed list of the indices currently known to be nonzero and a
// bitmap recording set membership in O(1). Most FTRAN/BTRAN results start
// extremely sparse and are scattered into progressively denser vectors as
// the simplex basis fills in; Vector supports both the sparse (indexed)
// and dense access patterns used at the two ends of that spectrum.
//
// The SyntheticTicks counter accumulates a rough unit-cost estimate of the
// work done through this vector (one tick per nonzero touched), mirroring
// the per-operation cost accounting spec.md requires for deciding when a
// vector has become dense enough that the sparse code path is no longer
// worth it.
type Vector struct {
	n      int
	dense  []float64
	nzIdx  []int
	inSet  []bool
	ticks  int64
	packed bool // true while nzIdx is known to be exactly the set of nonzeros
}

// NewVector returns a zeroed sparse vector of dimension n.
func NewVector(n int) *Vector {
	return &Vector{
		n:      n,
		dense:  make([]float64, n),
		nzIdx:  make([]int, 0, n/4+1),
		inSet:  make([]bool, n),
		packed: true,
	}
}

// Len returns the vector's dimension.
func (v *Vector) Len() int { return v.n }

// SyntheticTicks returns the accumulated work estimate.
func (v *Vector) SyntheticTicks() int64 { return v.ticks }

// Reset clears the vector back to all-zero, reusing its backing storage.
func (v *Vector) Reset() {
	for _, i := range v.nzIdx {
		v.dense[i] = 0
		v.inSet[i] = false
	}
	v.nzIdx = v.nzIdx[:0]
	v.packed = true
	v.ticks = 0
}

// At returns the value at index i.
func (v *Vector) At(i int) float64 { return v.dense[i] }

// Set assigns value at index i, scattering it into the index set if it
// is nonzero and i was not already tracked (or removing tracking-eligible
// zeros lazily: a zero written over a tracked nonzero is left in the index
// list until the next Compact, matching the "lazy densification" the
// engine relies on to avoid repacking on every single write).
func (v *Vector) Set(i int, val float64) {
	v.ticks++
	if !v.inSet[i] {
		if val == 0 {
			v.dense[i] = 0
			return
		}
		v.inSet[i] = true
		v.nzIdx = append(v.nzIdx, i)
		v.packed = false
	} else if val == 0 {
		v.packed = false
	}
	v.dense[i] = val
}

// Add accumulates delta into index i (scatter-add), used by FTRAN/BTRAN
// triangular solves and pivot updates.
func (v *Vector) Add(i int, delta float64) {
	if delta == 0 {
		return
	}
	v.ticks++
	if !v.inSet[i] {
		v.inSet[i] = true
		v.nzIdx = append(v.nzIdx, i)
		v.packed = false
	}
	v.dense[i] += delta
	if v.dense[i] == 0 {
		v.packed = false
	}
}

// Indices returns the (possibly over-approximate, see Compact) list of
// indices known to have been touched since the last Reset.
func (v *Vector) Indices() []int { return v.nzIdx }

// Compact repacks the index list so it contains exactly the indices with
// a nonzero dense value, dropping any entries that cancelled to zero.
// ForEach and Dot call this before reading the nonzero set.
func (v *Vector) Compact() {
	if v.packed {
		return
	}
	out := v.nzIdx[:0]
	for _, i := range v.nzIdx {
		if v.dense[i] != 0 {
			out = append(out, i)
		} else {
			v.inSet[i] = false
		}
	}
	v.nzIdx = out
	v.packed = true
}

// NNZ returns (an upper bound on, unless Compact was just called) the
// number of nonzero entries.
func (v *Vector) NNZ() int { return len(v.nzIdx) }

// Dense returns the backing dense array. Callers must not retain it past
// the next Reset.
func (v *Vector) Dense() []float64 { return v.dense }

// CopyFromDense overwrites the vector from a dense slice of length n,
// rebuilding the index set.
func (v *Vector) CopyFromDense(src []float64) {
	v.Reset()
	for i, x := range src {
		if x != 0 {
			v.inSet[i] = true
			v.nzIdx = append(v.nzIdx, i)
			v.dense[i] = x
		}
	}
	v.packed = true
}

// ForEach calls f for every index currently tracked as nonzero (after an
// implicit Compact), in index order if the vector was compacted densely
// increasing; order is otherwise insertion order.
func (v *Vector) ForEach(f func(idx int, val float64)) {
	v.Compact()
	for _, i := range v.nzIdx {
		f(i, v.dense[i])
	}
}

// Dot returns the dot product of v with the dense slice other.
func (v *Vector) Dot(other []float64) float64 {
	var sum float64
	v.Compact()
	for _, i := range v.nzIdx {
		sum += v.dense[i] * other[i]
	}
	return sum
}

// Scale multiplies every entry by alpha.
func (v *Vector) Scale(alpha float64) {
	if alpha == 0 {
		v.Reset()
		return
	}
	for _, i := range v.nzIdx {
		v.dense[i] *= alpha
	}
}
