// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package redcost implements reduced-cost fixing from spec.md §4.5:
// given an LP-relaxation dual solution and a cutoff bound, tighten
// nonbasic columns whose bound-to-bound objective swing alone would
// exceed the cutoff, and keep weaker ("lurking") tightenings that will
// only activate once the incumbent improves further.
// original_source/src/mip/HighsRedcostFixing.h keeps lurking bounds in
// a std::multimap<HighsFloat,int> per column side; SPEC_FULL.md §5.3
// replaces that with a sorted slice searched via sort.Search, since the
// pack carries no ordered-multimap library and the teacher's own style
// (e.g. lp.findLinearlyIndependent's linear scans) favors small sorted
// slices over a dependency for this kind of bookkeeping.
package redcost

import "sort"

// Side names which bound a lurking tightening applies to.
type Side int8

const (
	Lower Side = iota
	Upper
)

// Lurking is one bound tightening that isn't active yet: it will apply
// once the incumbent cutoff improves to at least Key. The installed
// bound depends on the cutoff in force *when it activates*, not the
// one in force when it was recorded, so Lurking stores the inputs of
// spec.md §4.5's formula (RefBound, ObjLP, ReducedCost) rather than a
// precomputed bound value.
type Lurking struct {
	Key         float64 // required cutoff for this tightening to activate
	Var         int
	Side        Side
	RefBound    float64 // l_j (Side==Upper) or u_j (Side==Lower)
	ObjLP       float64 // z_LP at the node this candidate was derived from
	ReducedCost float64 // d_j, signed per spec.md §4.5
}

// Bound computes the tightening to install given the cutoff in force
// at activation time: l_j + (U-z_LP)/d_j for an upper tightening,
// u_j + (U-z_LP)/d_j for a lower one.
func (l Lurking) Bound(cutoff float64) float64 {
	return l.RefBound + (cutoff-l.ObjLP)/l.ReducedCost
}

// LurkingSet holds pending tightenings for one side (lower or upper),
// kept sorted ascending by Key so Activate can binary-search the
// activation boundary instead of scanning.
type LurkingSet struct {
	entries []Lurking
}

// Insert adds a lurking tightening, keeping entries sorted by Key.
func (s *LurkingSet) Insert(l Lurking) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Key >= l.Key })
	s.entries = append(s.entries, Lurking{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = l
}

// Activate returns every entry whose Key is >= cutoff -- those that now
// apply given the improved (lower, for minimization) incumbent, per
// spec.md §4.5 -- and removes them from the set. Entries are sorted
// ascending by Key, so the activating set is always the tail of the
// slice.
func (s *LurkingSet) Activate(cutoff float64) []Lurking {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Key >= cutoff })
	active := append([]Lurking(nil), s.entries[i:]...)
	s.entries = s.entries[:i]
	return active
}

// Len returns the number of pending lurking tightenings.
func (s *LurkingSet) Len() int { return len(s.entries) }
