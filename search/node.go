// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package search implements the branch-and-bound MIP search of spec.md
// §4.7: a depth-first dive over node-local domains with periodic
// backtracks to an open-node queue, pseudocost/strong-branch variable
// selection, and RINS/RENS improvement heuristics. It generalizes
// gonum's lp.BNB (optimize/convex/lp/branch_and_bound.go), which
// drives the same floor/ceil child split but rebuilds a brand new
// dense G/h constraint system per node and keeps a flat LIFO queue of
// problem{g,h} pairs with no warm start, no pricing, and no bound
// tightening beyond the single branching row. This package replaces
// that with domain.Domain snapshots layered over a shared
// simplex.Context (warm-started from the parent's basis), per
// SPEC_FULL.md §5.2's one-domain-per-node design.
package search

import (
	"math"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/domain"
	"github.com/dsmip/dsmip/sparsemat"
)

// Problem is the static MIP data a search shares across every node:
// the LP relaxation's constraint system plus which columns are
// integer-constrained.
type Problem struct {
	NumCol, NumRow int // structural+slack columns, rows

	Cost []float64 // length NumCol
	Lo   []float64 // global (root) bounds, length NumCol
	Hi   []float64

	Integer []bool // length NumCol; true for columns requiring integral values

	A interface {
		Col(j int) ([]int, []float64)
	}

	// RowA is the structural-column-only row view of A (no slack
	// columns), used by domain propagation (PropagateRow) and cut
	// generation, both of which reason about a model row rather than
	// the extended a*x-s=0 system. Nil disables both.
	RowA *sparsemat.CSR
	// RowLower/RowUpper are the original row bounds RowA's activity is
	// checked against, length NumRow.
	RowLower, RowUpper []float64

	// Cliques are the at-most-one sets domain.PropagateCliques
	// enforces every node, detected once from the static row system
	// (domain.DetectCliques) rather than per node.
	Cliques []domain.Clique
}

// Node is one open subproblem of the search tree: a local domain
// layered over Problem's global bounds, plus enough of its parent's
// resolved LP state to warm-start from.
type Node struct {
	Domain *domain.Domain
	Basis  *basis.Basis // warm-start guess, cloned from the parent's resolved basis
	Depth  int

	// BranchVar/BranchUp/BranchFrac record how this node was created,
	// for pseudocost attribution once its LP is resolved.
	BranchVar  int
	BranchUp   bool
	BranchFrac float64 // fractional part of BranchVar's value in the parent LP
	ParentObj  float64 // parent's LP objective, the pseudocost baseline
}

// Resolution is what a node's LP relaxation produced, input to the
// branch-or-prune decision.
type Resolution struct {
	Status      NodeStatus
	Obj         float64
	X           []float64 // length Problem.NumCol
	ReducedCost []float64 // length Problem.NumCol, signed per spec.md §4.5
}

// NodeStatus classifies a resolved node.
type NodeStatus int8

const (
	Infeasible NodeStatus = iota
	Pruned                // dual bound >= cutoff
	IntegerFeasible
	Fractional
)

// MostFractional returns the integer-constrained column whose LP value
// is farthest from an integer, the simplest branch candidate used as a
// fallback when pseudocost scoring has nothing to prefer.
func MostFractional(p *Problem, res *Resolution) int {
	best, bestFrac := -1, 0.0
	for j, isInt := range p.Integer {
		if !isInt {
			continue
		}
		f := fractionality(res.X[j])
		if f > bestFrac {
			best, bestFrac = j, f
		}
	}
	return best
}

// fractionality returns min(x-floor(x), ceil(x)-x), zero for an
// integral value.
func fractionality(x float64) float64 {
	f := x - math.Floor(x)
	return math.Min(f, 1-f)
}

// FirstFractional returns the lowest-indexed integer column that isn't
// currently integral, or -1 if the node is already integer-feasible.
func FirstFractional(p *Problem, res *Resolution, tol float64) int {
	for j, isInt := range p.Integer {
		if !isInt {
			continue
		}
		if fractionality(res.X[j]) > tol {
			return j
		}
	}
	return -1
}
