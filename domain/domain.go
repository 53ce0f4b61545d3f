// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domain implements the local variable domain and its
// propagation engine from spec.md §4.4: a per-variable bound change
// stack supporting mark/backtrack, plus clique and row-activity
// propagation. original_source/src/mip/HighsSearch.h keeps one such
// domain per search node rather than mutating the model's global
// bounds directly (SPEC_FULL.md §5.2); this package is that local
// working copy, seeded from but never aliasing the model's bounds.
package domain

// Reason tags why a bound was tightened, recorded in the change stack
// so a conflict can be explained and a propagation loop can detect
// redundant re-derivation.
type Reason int8

const (
	Branching Reason = iota
	CliquePropagation
	RowPropagation
	ReducedCostFixing
)

func (r Reason) String() string {
	switch r {
	case Branching:
		return "Branching"
	case CliquePropagation:
		return "CliquePropagation"
	case RowPropagation:
		return "RowPropagation"
	case ReducedCostFixing:
		return "ReducedCostFixing"
	default:
		return "Reason(invalid)"
	}
}

// Result is the outcome of a single tighten call, per spec.md §4.4.
type Result int8

const (
	// Redundant means the proposed bound was no tighter than the
	// existing one; nothing changed.
	Redundant Result = iota
	// Tightened means the bound was narrowed and recorded on the stack.
	Tightened
	// Conflict means the proposed bound would make lo > hi.
	Conflict
)

func (s Result) String() string {
	switch s {
	case Redundant:
		return "Redundant"
	case Tightened:
		return "Tightened"
	case Conflict:
		return "Conflict"
	default:
		return "Result(invalid)"
	}
}

// change is one entry of the undo stack: enough to restore a variable's
// prior bounds exactly.
type change struct {
	v            int
	oldLo, oldHi float64
	reason       Reason
}

// Domain is the local [lo,hi] working copy of spec.md §3: always seeded
// from but independent of the model's global bounds. Its invariant
// (spec.md §8, invariant 5) is that restoring to a saved Mark recovers
// the exact prior domain, which the change stack guarantees by
// construction: BacktrackTo only ever pops entries it itself pushed.
type Domain struct {
	lo, hi []float64
	stack  []change
}

// New returns a Domain seeded from colLower/colUpper; the slices are
// copied, so later mutation of the caller's arrays does not alias this
// Domain.
func New(colLower, colUpper []float64) *Domain {
	return &Domain{
		lo: append([]float64(nil), colLower...),
		hi: append([]float64(nil), colUpper...),
	}
}

// Lo returns the current lower bound of variable v.
func (d *Domain) Lo(v int) float64 { return d.lo[v] }

// Hi returns the current upper bound of variable v.
func (d *Domain) Hi(v int) float64 { return d.hi[v] }

// NumVar returns the number of variables tracked.
func (d *Domain) NumVar() int { return len(d.lo) }

// TightenLower raises variable v's lower bound to newLo if that is an
// improvement, recording the change for later backtracking.
func (d *Domain) TightenLower(v int, newLo float64, reason Reason) Result {
	if newLo <= d.lo[v] {
		return Redundant
	}
	if newLo > d.hi[v] {
		return Conflict
	}
	d.stack = append(d.stack, change{v: v, oldLo: d.lo[v], oldHi: d.hi[v], reason: reason})
	d.lo[v] = newLo
	return Tightened
}

// TightenUpper lowers variable v's upper bound to newHi if that is an
// improvement, recording the change for later backtracking.
func (d *Domain) TightenUpper(v int, newHi float64, reason Reason) Result {
	if newHi >= d.hi[v] {
		return Redundant
	}
	if newHi < d.lo[v] {
		return Conflict
	}
	d.stack = append(d.stack, change{v: v, oldLo: d.lo[v], oldHi: d.hi[v], reason: reason})
	d.hi[v] = newHi
	return Tightened
}

// Mark returns the current stack position, to later BacktrackTo.
func (d *Domain) Mark() int { return len(d.stack) }

// BacktrackTo restores every bound changed since mark, in reverse
// order, and truncates the stack back to mark.
func (d *Domain) BacktrackTo(mark int) {
	for i := len(d.stack) - 1; i >= mark; i-- {
		c := d.stack[i]
		d.lo[c.v] = c.oldLo
		d.hi[c.v] = c.oldHi
	}
	d.stack = d.stack[:mark]
}

// Clone returns an independent copy of the domain's current bounds
// (the change stack is not copied; the clone starts with an empty
// stack of its own, matching a fresh node's local domain seeded from
// a parent's resolved bounds).
func (d *Domain) Clone() *Domain {
	return &Domain{
		lo: append([]float64(nil), d.lo...),
		hi: append([]float64(nil), d.hi...),
	}
}
