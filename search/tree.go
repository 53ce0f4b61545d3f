// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package search

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/dsmip/dsmip/domain"
	"github.com/dsmip/dsmip/redcost"
	"github.com/dsmip/dsmip/simplex"
)

// ChildRule selects which branch child to dive into first, per
// spec.md §4.7's configurable child selection rule.
type ChildRule int8

const (
	Up ChildRule = iota
	Down
	RootSol
	Obj
	Random
	BestCost
	WorstCost
)

// Settings controls the branch-and-bound driver.
type Settings struct {
	NodeLimit    int // <=0 means unbounded
	IntTol       float64
	ChildRule    ChildRule
	MinReliable  int
	StrongBranch StrongBranchSettings
	LP           simplex.Settings

	// Cuts controls the root-only cut generation pass run once before
	// the tree search begins (spec.md §4.6).
	Cuts CutSettings
	// Heuristics bounds each RINS/RENS sub-MIP dive.
	Heuristics HeuristicSettings
	// HeuristicFreq runs a RINS (if an incumbent exists) or RENS (if
	// not) dive every HeuristicFreq nodes at a Fractional node, per
	// spec.md §4.7. <=0 disables heuristic dives entirely.
	HeuristicFreq int
}

// DefaultSettings returns the typical tolerances and limits.
func DefaultSettings() Settings {
	return Settings{
		NodeLimit:     1000000,
		IntTol:        1e-6,
		ChildRule:     BestCost,
		MinReliable:   4,
		StrongBranch:  DefaultStrongBranchSettings(),
		LP:            simplex.DefaultSettings(),
		Cuts:          DefaultCutSettings(),
		Heuristics:    DefaultHeuristicSettings(),
		HeuristicFreq: 200,
	}
}

// Result is the outcome of a Solve call.
type Result struct {
	Status NodeStatus // Infeasible or IntegerFeasible
	Obj    float64
	X      []float64
	Nodes  int
}

// Solve runs spec.md §4.7's branch-and-bound driver to completion or
// settings.NodeLimit, starting from the root relaxation already loaded
// into c (c.Lo/c.Hi/c.Basis describe the root LP, typically the
// all-slack basis). It mutates c's Lo/Hi/Basis/Factor/Weights
// throughout; callers that need the Context afterward should treat it
// as left in whatever node's state the search last visited.
func Solve(c *simplex.Context, p *Problem, settings Settings) (*Result, error) {
	c, p, err := cutAndBranchRoot(c, p, settings)
	if err != nil {
		return nil, err
	}

	pc := NewPseudocostTable(p.NumCol, 0, 0)
	lower := &redcost.LurkingSet{}
	upper := &redcost.LurkingSet{}
	rnd := rand.New(rand.NewSource(1))

	rootLo := append([]float64(nil), p.Lo...)
	rootHi := append([]float64(nil), p.Hi...)
	root := &Node{
		Domain:    domain.New(rootLo, rootHi),
		Basis:     c.Basis.Clone(),
		ParentObj: math.Inf(-1),
	}
	stack := []*Node{root}

	best := Result{Status: Infeasible, Obj: math.Inf(1)}
	cutoff := math.Inf(1)
	nodes := 0
	var rootX []float64

	for len(stack) > 0 {
		if settings.NodeLimit > 0 && nodes >= settings.NodeLimit {
			break
		}
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		res := resolveNode(c, p, node, cutoff, settings)

		// Attribute the pseudocost gain observed since the parent node
		// (skipped for the root, whose ParentObj is -inf and whose
		// BranchVar is meaningless).
		if !math.IsInf(node.ParentObj, -1) && res.Status != Infeasible {
			pc.Update(node.BranchVar, node.BranchFrac, res.Obj-node.ParentObj, node.BranchUp)
		}
		if node.Depth == 0 && res.Status != Infeasible {
			rootX = append([]float64(nil), res.X...)
		}

		switch res.Status {
		case Infeasible, Pruned:
			continue
		case IntegerFeasible:
			if res.Obj < best.Obj {
				best = Result{Status: IntegerFeasible, Obj: res.Obj, X: res.X}
				improved := best.Obj
				redcost.ApplyLurking(node.Domain, lower, upper, improved)
				cutoff = improved
			}
			continue
		}

		reduced, err := c.ReducedCosts()
		if err == nil {
			redcost.Fix(node.Domain, c.Basis, reduced, res.Obj, cutoff, lower, upper)
		}

		if propagateDomain(node.Domain, p) == domain.Conflict {
			continue
		}

		if settings.HeuristicFreq > 0 && nodes%settings.HeuristicFreq == 0 {
			if hres := runHeuristicDive(c, p, node, res, best, settings, rnd); hres != nil && hres.Status == IntegerFeasible && hres.Obj < best.Obj {
				best = Result{Status: IntegerFeasible, Obj: hres.Obj, X: hres.X}
				cutoff = best.Obj
			}
			// fixAndSolve reuses c across its own recursive Solve call,
			// so c.Lo/c.Hi/c.Basis now reflect whatever node that
			// sub-search last visited; restore this node's state before
			// resuming the outer tree.
			for v := 0; v < p.NumCol; v++ {
				c.Lo[v] = node.Domain.Lo(v)
				c.Hi[v] = node.Domain.Hi(v)
			}
			c.Basis = node.Basis
		}

		branchVar := chooseBranchVar(c, p, node, res, pc, settings)
		if branchVar < 0 {
			// No fractional integer column left after fixing; treat as
			// integer-feasible under the tightened domain.
			if res.Obj < best.Obj {
				best = Result{Status: IntegerFeasible, Obj: res.Obj, X: res.X}
				cutoff = best.Obj
			}
			continue
		}

		downChild, upChild := split(node, branchVar, res.X[branchVar], res.Obj)
		pushChildren(&stack, settings.ChildRule, downChild, upChild, res.X[branchVar], rootX, rnd)
	}

	if best.Status == Infeasible {
		return &Result{Status: Infeasible, Nodes: nodes}, nil
	}
	best.Nodes = nodes
	return &best, nil
}

// propagateDomain runs spec.md §4.4's clique and row-activity
// propagation over node's domain, the step between reduced-cost fixing
// and branch selection: a tightened or conflicting bound found here
// feeds the same BacktrackTo/domain machinery reduced-cost fixing
// already uses, so a Conflict is handled exactly like an infeasible
// node (no child is generated).
func propagateDomain(d *domain.Domain, p *Problem) domain.Result {
	worst := domain.Redundant
	if r := domain.PropagateCliques(d, p.Cliques); r > worst {
		worst = r
	}
	if worst == domain.Conflict {
		return worst
	}
	if p.RowA != nil {
		numRow, _ := p.RowA.Dims()
		for i := 0; i < numRow; i++ {
			r := domain.PropagateRow(d, p.RowA, p.RowLower, p.RowUpper, i)
			if r > worst {
				worst = r
			}
			if r == domain.Conflict {
				return domain.Conflict
			}
		}
	}
	return worst
}

// runHeuristicDive runs a RINS dive against the incumbent if one
// exists, otherwise a RENS dive against the current relaxation, per
// spec.md §4.7's periodic improvement pass.
func runHeuristicDive(c *simplex.Context, p *Problem, node *Node, res *Resolution, best Result, settings Settings, rnd *rand.Rand) *Result {
	// The sub-MIP Solve call fixAndSolve makes must not re-run cut
	// generation (the cuts are already baked into p) or recurse into
	// its own heuristic dives.
	sub := settings
	sub.Cuts = CutSettings{}
	sub.HeuristicFreq = 0

	var out *Result
	var err error
	if best.Status == IntegerFeasible {
		out, err = RINS(c, p, res.X, best.X, settings.Heuristics, sub, rnd)
	} else {
		out, err = RENS(c, p, res.X, settings.Heuristics, sub, rnd)
	}
	if err != nil {
		return nil
	}
	return out
}

// resolveNode installs node's domain into c, warm-starts from its
// basis, solves the LP relaxation, and classifies the result.
func resolveNode(c *simplex.Context, p *Problem, node *Node, cutoff float64, settings Settings) *Resolution {
	for v := 0; v < p.NumCol; v++ {
		c.Lo[v] = node.Domain.Lo(v)
		c.Hi[v] = node.Domain.Hi(v)
	}
	c.Basis = node.Basis

	status, _, err := simplex.Solve(c, settings.LP)
	if err != nil || status == simplex.NumericalFailure {
		return &Resolution{Status: Infeasible}
	}
	switch status {
	case simplex.PrimalInfeasible, simplex.DualUnbounded:
		return &Resolution{Status: Infeasible}
	}

	obj := c.ObjectiveValue()
	if obj >= cutoff {
		return &Resolution{Status: Pruned, Obj: obj}
	}
	x := c.Solution()
	if FirstFractional(p, &Resolution{X: x}, settings.IntTol) < 0 {
		return &Resolution{Status: IntegerFeasible, Obj: obj, X: x}
	}
	return &Resolution{Status: Fractional, Obj: obj, X: x}
}

// chooseBranchVar implements spec.md §4.7's selection rule: pseudocost
// scoring among reliable candidates, falling back to strong branching
// for the rest.
func chooseBranchVar(c *simplex.Context, p *Problem, node *Node, res *Resolution, pc *PseudocostTable, settings Settings) int {
	var reliable, unreliable []int
	for j, isInt := range p.Integer {
		if !isInt {
			continue
		}
		if fractionality(res.X[j]) <= settings.IntTol {
			continue
		}
		if pc.Reliable(j, settings.MinReliable) {
			reliable = append(reliable, j)
		} else {
			unreliable = append(unreliable, j)
		}
	}
	if len(unreliable) > 0 {
		return StrongBranch(c, unreliable, res.X, res.Obj, pc, settings.StrongBranch, settings.LP)
	}
	if best := pc.BestScored(reliable, res.X); best >= 0 {
		return best
	}
	return MostFractional(p, res)
}

// split creates the down (x <= floor) and up (x >= ceil) children of
// node branching on column j, each with its own domain snapshot and a
// basis clone warm-started from node's resolved basis.
func split(node *Node, j int, xj, parentObj float64) (down, up *Node) {
	downDomain := node.Domain.Clone()
	downDomain.TightenUpper(j, math.Floor(xj), domain.Branching)
	upDomain := node.Domain.Clone()
	upDomain.TightenLower(j, math.Ceil(xj), domain.Branching)

	frac := xj - math.Floor(xj)
	down = &Node{Domain: downDomain, Basis: node.Basis.Clone(), Depth: node.Depth + 1, BranchVar: j, BranchUp: false, BranchFrac: frac, ParentObj: parentObj}
	up = &Node{Domain: upDomain, Basis: node.Basis.Clone(), Depth: node.Depth + 1, BranchVar: j, BranchUp: true, BranchFrac: frac, ParentObj: parentObj}
	return down, up
}

// pushChildren appends downChild/upChild to the stack in the order
// settings.ChildRule prefers to dive into first (the last element
// pushed is explored next). rootX is the root relaxation's solution
// (nil if the root itself was infeasible), consulted by RootSol; rnd
// is consulted by Random.
func pushChildren(stack *[]*Node, rule ChildRule, down, up *Node, xj float64, rootX []float64, rnd *rand.Rand) {
	branchVar := down.BranchVar
	first, second := down, up
	switch rule {
	case Down:
		first, second = down, up
	case Up:
		first, second = up, down
	case Obj, BestCost:
		// Dive toward whichever direction moves less of xj's fraction,
		// the child whose bound is already closer to being satisfied.
		if xj-math.Floor(xj) < math.Ceil(xj)-xj {
			first, second = down, up
		} else {
			first, second = up, down
		}
	case WorstCost:
		if xj-math.Floor(xj) < math.Ceil(xj)-xj {
			first, second = up, down
		} else {
			first, second = down, up
		}
	case RootSol:
		// Dive toward whichever child's bound the root relaxation's own
		// value for this column already sits closer to; falls back to
		// the Up/Down order if the root was infeasible (rootX nil).
		if rootX == nil {
			first, second = up, down
			break
		}
		if rootX[branchVar]-math.Floor(xj) < math.Ceil(xj)-rootX[branchVar] {
			first, second = down, up
		} else {
			first, second = up, down
		}
	case Random:
		if rnd.Intn(2) == 0 {
			first, second = down, up
		} else {
			first, second = up, down
		}
	default:
		first, second = up, down
	}
	*stack = append(*stack, second, first)
}
