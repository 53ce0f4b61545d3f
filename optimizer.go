// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dsmip is the user-visible facade of spec.md §2: it composes
// model validation (modelcheck), the dual simplex engine (simplex) and
// the branch-and-bound search (search) behind the single Optimizer
// type, owning the model, basis, factor, edge weights, search tree and
// options for the lifetime of a solve. It generalizes optimize.Problem/
// optimize.Minimize's "one entry point composing a Method over a
// Problem, returning a Result" shape to an object with incremental
// model-editing operations, since spec.md §6 requires add/delete/modify
// rather than a single one-shot call.
package dsmip

import (
	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/domain"
	"github.com/dsmip/dsmip/logsink"
	"github.com/dsmip/dsmip/modelcheck"
	"github.com/dsmip/dsmip/search"
	"github.com/dsmip/dsmip/simplex"
	"github.com/dsmip/dsmip/sparsemat"
	"github.com/dsmip/dsmip/sparsemat/luf"
)

// Optimizer is the facade of spec.md §2 and §6: it owns the model and
// every piece of solver state, and exposes the public operations table
// of spec.md §6 as methods.
type Optimizer struct {
	opts Options
	log  Sink

	model       *modelcheck.Model
	modelStatus ModelStatus

	solved      bool
	solution    []float64     // structural columns only, length model.NumCol
	basisStatus []basis.Status // structural columns only; nil unless a pure LP Run ended Optimal
	objective   float64
	nodes       int
}

// NewOptimizer returns an Optimizer configured by opts; a nil
// opts.Log is replaced by logsink.NopSink, per SPEC_FULL §2's "the
// facade owns the Sink, never a package-level logger" rule.
func NewOptimizer(opts Options) *Optimizer {
	log := opts.Log
	if log == nil {
		log = logsink.NopSink
	}
	return &Optimizer{opts: opts, log: log, modelStatus: NotSet}
}

// PassModel validates m via modelcheck.AssessModel (and, if present,
// normalizes its Hessian to strict upper-triangular form), then, on
// anything short of a validation Error, copies it in as the active
// model and resets all solver state: the facade's "validate then copy,
// reset solver state" operation of spec.md §6's pass_model row.
func (o *Optimizer) PassModel(m *modelcheck.Model) Result {
	cand := cloneModel(m)
	if cand.Hessian != nil {
		tri, hOut, hFindings := modelcheck.ExtractTriangularHessian(cand.Hessian)
		if hOut == modelcheck.Error {
			return Result{Status: Error, ModelStatus: ModelError, Err: &ValidationError{Findings: hFindings}}
		}
		cand.Hessian = tri
	}
	outcome, findings := modelcheck.AssessModel(cand, o.opts.Model)
	if outcome == modelcheck.Error {
		return Result{Status: Error, ModelStatus: ModelError, Err: &ValidationError{Findings: findings}}
	}
	o.commit(cand, findings)
	o.log.Infof("model loaded: %d cols, %d rows", cand.NumCol, cand.NumRow)
	return Result{Status: statusFor(outcome), ModelStatus: o.modelStatus}
}

// commit installs cand as the active model, resets any cached solve
// result (an edit always invalidates the previous Run), logs every
// finding at Warning severity, and sets modelStatus to ModelEmpty or
// NotSet depending on cand's size. Every editing operation below
// funnels through this one place so "reset solver state" can never be
// forgotten on one code path and not another.
func (o *Optimizer) commit(cand *modelcheck.Model, findings []modelcheck.Finding) {
	for _, f := range findings {
		o.log.Warnf("%s: %s", f.Kind, f.Message)
	}
	o.model = cand
	o.solved = false
	o.solution = nil
	o.basisStatus = nil
	o.nodes = 0
	if cand.NumCol == 0 {
		o.modelStatus = ModelEmpty
	} else {
		o.modelStatus = NotSet
	}
}

func statusFor(o modelcheck.Outcome) Status {
	if o == modelcheck.Warning {
		return Warning
	}
	return Ok
}

// cloneModel deep-copies m so the facade never aliases caller-owned
// slices (spec.md §6's add/change operations are atomic: a candidate is
// built, validated, and only then swapped in).
func cloneModel(m *modelcheck.Model) *modelcheck.Model {
	cp := *m
	cp.ColCost = append([]float64(nil), m.ColCost...)
	cp.ColLower = append([]float64(nil), m.ColLower...)
	cp.ColUpper = append([]float64(nil), m.ColUpper...)
	cp.RowLower = append([]float64(nil), m.RowLower...)
	cp.RowUpper = append([]float64(nil), m.RowUpper...)
	cp.AStart = append([]int(nil), m.AStart...)
	cp.AIndex = append([]int(nil), m.AIndex...)
	cp.AValue = append([]float64(nil), m.AValue...)
	if m.Integrality != nil {
		cp.Integrality = append([]modelcheck.VarType(nil), m.Integrality...)
	}
	if m.Hessian != nil {
		h := *m.Hessian
		h.ColStart = append([]int(nil), m.Hessian.ColStart...)
		h.RowIndex = append([]int(nil), m.Hessian.RowIndex...)
		h.Value = append([]float64(nil), m.Hessian.Value...)
		cp.Hessian = &h
	}
	return &cp
}

// Run solves the active model: a pure LP relaxation via simplex.Solve,
// or, when any column is integer-constrained, branch-and-bound via
// search.Solve over that relaxation. It is spec.md §6's run operation.
func (o *Optimizer) Run() Result {
	if o.model == nil {
		return Result{Status: Error, ModelStatus: NotSet, Err: ErrNoModel}
	}
	m := o.model
	o.basisStatus = nil
	if m.NumCol == 0 {
		o.modelStatus = ModelEmpty
		o.solved = false
		return Result{Status: Ok, ModelStatus: ModelEmpty}
	}

	base := sparsemat.NewCSC(m.NumRow, m.NumCol, m.AStart, m.AIndex, m.AValue)
	ext := simplex.BuildExtendedMatrix(base)
	numCol := m.NumCol + m.NumRow

	// The engine always minimizes; a maximize sense is solved as
	// minimizing the negated cost and the sign is undone on the way
	// back out, in both the objective value and (implicitly, since
	// bounds/constraints are untouched) the reported solution.
	sign := 1.0
	if m.Sense == modelcheck.Maximize {
		sign = -1.0
	}

	cost := make([]float64, numCol)
	for j := 0; j < m.NumCol; j++ {
		cost[j] = sign * m.ColCost[j]
	}
	lo := make([]float64, numCol)
	hi := make([]float64, numCol)
	copy(lo, m.ColLower)
	copy(hi, m.ColUpper)
	for i := 0; i < m.NumRow; i++ {
		lo[m.NumCol+i] = m.RowLower[i]
		hi[m.NumCol+i] = m.RowUpper[i]
	}

	bas := basis.New(m.NumRow, numCol)
	initStatus := make([]basis.Status, m.NumCol)
	for j := 0; j < m.NumCol; j++ {
		initStatus[j] = basis.DualFeasibleStatus(cost[j], lo[j], hi[j])
	}
	bas.SetAllSlackBasis(m.NumCol, initStatus)

	factor := luf.New(m.NumRow, 0, 0)
	weights := basis.NewWeights(o.opts.LP.PricingRule, m.NumRow)

	ctx, err := simplex.NewContext(ext, cost, lo, hi, bas, factor, weights)
	if err != nil {
		o.modelStatus = LoadError
		return Result{Status: Error, ModelStatus: LoadError, Err: err}
	}

	hasInteger := false
	integer := make([]bool, numCol)
	if m.Integrality != nil {
		for j := 0; j < m.NumCol; j++ {
			if m.Integrality[j] == modelcheck.Integer {
				integer[j] = true
				hasInteger = true
			}
		}
	}

	if !hasInteger {
		status, stats, err := simplex.Solve(ctx, o.opts.LP)
		o.log.Infof("LP solve: status=%v iterations=%d refactors=%d", status, stats.Iterations, stats.Refactors)
		return o.finishLP(status, ctx, sign, err)
	}

	rowA := base.ToCSR()
	cliques := domain.DetectCliques(rowA, m.RowLower, m.RowUpper, m.ColLower, m.ColUpper, integer[:m.NumCol])
	p := &search.Problem{
		NumCol:   numCol,
		NumRow:   m.NumRow,
		Cost:     cost,
		Lo:       lo,
		Hi:       hi,
		Integer:  integer,
		A:        ext,
		RowA:     rowA,
		RowLower: append([]float64(nil), m.RowLower...),
		RowUpper: append([]float64(nil), m.RowUpper...),
		Cliques:  cliques,
	}

	ss := o.opts.Search
	ss.Cuts.Enabled = o.opts.EnableCutGeneration
	ss.Heuristics = o.opts.Heuristics
	res, err := search.Solve(ctx, p, ss)
	if err != nil {
		o.modelStatus = SolveError
		return Result{Status: Error, ModelStatus: SolveError, Err: err}
	}
	o.nodes = res.Nodes
	o.log.Infof("branch-and-bound: nodes=%d status=%v obj=%g", res.Nodes, res.Status, res.Obj)

	if res.Status != search.IntegerFeasible {
		o.solved = false
		o.modelStatus = Infeasible
		return Result{Status: Ok, ModelStatus: Infeasible}
	}
	o.solved = true
	o.solution = append([]float64(nil), res.X[:m.NumCol]...)
	o.objective = m.ObjOffset + sign*res.Obj
	o.modelStatus = Optimal
	return Result{Status: Ok, ModelStatus: Optimal}
}

// finishLP interprets a pure-LP simplex.Solve outcome, populating the
// cached solution on Optimal and mapping every other Status to the
// ModelStatus spec.md §6 names for it.
func (o *Optimizer) finishLP(status simplex.Status, ctx *simplex.Context, sign float64, err error) Result {
	if err != nil {
		o.modelStatus = SolveError
		return Result{Status: Error, ModelStatus: SolveError, Err: err}
	}
	switch status {
	case simplex.Optimal:
		x := ctx.Solution()
		o.solved = true
		o.solution = append([]float64(nil), x[:o.model.NumCol]...)
		o.objective = o.model.ObjOffset + sign*ctx.ObjectiveValue()
		o.basisStatus = make([]basis.Status, o.model.NumCol)
		for j := 0; j < o.model.NumCol; j++ {
			o.basisStatus[j] = ctx.Basis.Status(j)
		}
		o.modelStatus = Optimal
		return Result{Status: Ok, ModelStatus: Optimal}
	case simplex.PrimalInfeasible:
		o.solved = false
		o.modelStatus = Infeasible
		return Result{Status: Ok, ModelStatus: Infeasible}
	case simplex.DualUnbounded:
		o.solved = false
		o.modelStatus = UnboundedOrInfeasible
		return Result{Status: Ok, ModelStatus: UnboundedOrInfeasible}
	case simplex.IterationLimit:
		o.modelStatus = IterationLimit
		return Result{Status: Warning, ModelStatus: IterationLimit}
	case simplex.TimeLimit:
		o.modelStatus = TimeLimit
		return Result{Status: Warning, ModelStatus: TimeLimit}
	case simplex.ObjectiveBoundReached:
		o.modelStatus = ObjectiveBound
		return Result{Status: Ok, ModelStatus: ObjectiveBound}
	case simplex.NumericalFailure:
		o.modelStatus = SolveError
		return Result{Status: Error, ModelStatus: SolveError, Err: &SingularBasisError{Attempts: 1}}
	default:
		o.modelStatus = Unknown
		return Result{Status: Error, ModelStatus: Unknown}
	}
}

// GetSolution returns the structural column values of the last Run,
// defined only once modelStatus is Optimal, per spec.md §6.
func (o *Optimizer) GetSolution() ([]float64, error) {
	if !o.solved {
		return nil, ErrNotSolved
	}
	return append([]float64(nil), o.solution...), nil
}

// GetObjectiveValue returns the objective of the last Run, defined
// only once modelStatus is Optimal.
func (o *Optimizer) GetObjectiveValue() (float64, error) {
	if !o.solved {
		return 0, ErrNotSolved
	}
	return o.objective, nil
}

// NodeCount returns the number of branch-and-bound nodes explored by
// the last Run, zero for a pure LP solve.
func (o *Optimizer) NodeCount() int { return o.nodes }

// ModelStatus returns the model status produced by the last Run (or
// NotSet/ModelEmpty if Run has not been called on the current model).
func (o *Optimizer) ModelStatus() ModelStatus { return o.modelStatus }

// GetBasis returns the nonbasic/basic status of every structural
// column at the last Run's final basis, per spec.md §6's get_basis
// row. Only populated after a pure-LP Run ends Optimal: branch-and-
// bound's Context reflects whichever node it last visited, not
// necessarily the incumbent's basis, so this facade does not claim a
// basis snapshot for a MIP result.
func (o *Optimizer) GetBasis() ([]basis.Status, error) {
	if o.basisStatus == nil {
		return nil, ErrNotSolved
	}
	return append([]basis.Status(nil), o.basisStatus...), nil
}

// GetDualRay and GetPrimalRay are spec.md §6's infeasibility/
// unboundedness certificates; see ErrRayUnavailable for why this
// facade does not construct them.
func (o *Optimizer) GetDualRay() ([]float64, error)   { return nil, ErrRayUnavailable }
func (o *Optimizer) GetPrimalRay() ([]float64, error) { return nil, ErrRayUnavailable }
