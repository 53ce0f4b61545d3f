package simplex

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/sparsemat"
	"github.com/dsmip/dsmip/sparsemat/luf"
	"github.com/dsmip/dsmip/xprec"
)

// Zero-test tolerances for the dual ratio test, carried over from
// gonum's own revised-simplex zero tests (optimize/convex/lp's
// parametric.go): absZeroTol/relZeroTol bound whether a priced alpha
// is distinguishable from zero, xZeroTol bounds whether a pivot step
// is degenerate enough to count toward the Bland's-rule fallback below.
const (
	absZeroTol = 1e-12
	relZeroTol = 1e-12
	xZeroTol   = 1e-14
)

// isZero reports whether a is indistinguishable from zero against
// scale, combining an absolute and a relative test the way gonum's
// parametric.go does for its own update-vector zero test.
func isZero(a, scale float64) bool {
	return math.Abs(a) <= absZeroTol || math.Abs(a) <= relZeroTol*scale
}

// blandThreshold is the number of consecutive near-degenerate pivot
// steps (|t| <= xZeroTol) solveFromDual tolerates before switching
// CHUZC to Bland's rule (lowest-index eligible column), which stays in
// force until a non-degenerate step resets the streak; this is the
// standard anti-cycling guarantee -- gonum's own
// simplex/branch-and-bound code has no such fallback, so this is
// grounded on the general theory, not on a teacher implementation.
const blandThreshold = 30

// IterationStats reports what happened during a Solve call, the kind of
// bookkeeping gonum's optimize.Result keeps for a converged minimizer.
type IterationStats struct {
	Iterations int
	Refactors  int
}

// ReducedCosts returns the reduced cost of every column at the
// Context's current basis (zero for basic columns), recomputed from
// scratch via one BTRAN. Callers needing the dual solution after a
// Solve call (reduced-cost fixing, strong branching) use this rather
// than threading the driver's internal dualState out, since it is
// already just one refreshDual away and Solve leaves the basis/factor
// in the state this reads.
func (c *Context) ReducedCosts() ([]float64, error) {
	var ds dualState
	if err := c.refreshDual(&ds); err != nil {
		return nil, err
	}
	return ds.d, nil
}

// dualState holds d, the reduced cost of every column (zero for basic
// columns). It is not stored on Context: each Solve call builds its
// own, and ReducedCosts recomputes one from scratch.
type dualState struct {
	d []float64
}

// refreshDual recomputes every reduced cost from scratch via one BTRAN
// of the basic cost vector, used at solve start and after a
// refactorization (where incremental maintenance is considered no
// longer trustworthy).
func (c *Context) refreshDual(ds *dualState) error {
	basics := c.Basis.BasicIndices()
	cb := make([]float64, c.NumRow)
	for i, v := range basics {
		cb[i] = c.Cost[v]
	}
	c.scratch.CopyFromDense(cb)
	if err := c.Factor.BTRAN(c.scratch); err != nil {
		return err
	}
	y := c.scratch.Dense()
	if ds.d == nil {
		ds.d = make([]float64, c.NumCol)
	}
	for v := 0; v < c.NumCol; v++ {
		if c.Basis.IsBasic(v) {
			ds.d[v] = 0
			continue
		}
		rows, vals := c.A.Col(v)
		yAtRows := make([]float64, len(rows))
		for k, r := range rows {
			yAtRows[k] = y[r]
		}
		ay := xprec.DotSum(vals, yAtRows).Float64()
		ds.d[v] = c.Cost[v] - ay
	}
	return nil
}

// chooseLeavingRow implements CHUZR: the basic variable whose primal
// infeasibility squared, divided by its pricing weight, is largest.
// Returns row -1 if every basic variable is within bounds (primal
// feasible: the dual simplex has reached optimality).
func (c *Context) chooseLeavingRow(settings Settings) (row int, infeas float64) {
	row = -1
	best := 0.0
	basics := c.Basis.BasicIndices()
	for i, v := range basics {
		x := c.xB[i]
		var viol float64
		switch {
		case x < c.Lo[v]-settings.PrimalFeasTol:
			viol = c.Lo[v] - x
		case x > c.Hi[v]+settings.PrimalFeasTol:
			viol = x - c.Hi[v]
		default:
			continue
		}
		score := viol * viol / rowWeight(settings.PricingRule, c.Weights, i)
		if score > best {
			best = score
			row = i
			infeas = viol
		}
	}
	return row, infeas
}

// direction returns +1 if nonbasic v would increase from its current
// bound, -1 if it would decrease (AtUpper), consulting basis.Move for
// free variables pinned at zero.
func direction(bas *basis.Basis, v int) float64 {
	switch bas.Status(v) {
	case basis.AtUpper:
		return -1
	case basis.Free:
		if bas.Move(v) == basis.MoveDown {
			return -1
		}
		return 1
	default:
		return 1
	}
}

// chuzc implements the dual ratio test (CHUZC) of spec.md §4.3: among
// nonbasic columns whose movement would relieve the leaving row's
// infeasibility, pick the one
// minimizing the dual ratio d_j / alpha_rj (sign-flipped when the
// leaving row needs to increase, so the ratio comes out non-negative
// for every eligible candidate under dual feasibility); ties are broken
// toward the larger-magnitude pivot, the Harris-ratio-test tie-break for
// numerical stability.
func chuzc(c *Context, ds *dualState, row int, needIncrease bool, alphaRow []float64, tol float64) (entering int, bestRatio float64) {
	entering = -1
	bestRatio = math.Inf(1)
	bestPivotMag := 0.0
	for v := 0; v < c.NumCol; v++ {
		if c.Basis.IsBasic(v) {
			continue
		}
		a := alphaRow[v]
		if isZero(a, 1) {
			continue
		}
		dir := direction(c.Basis, v)
		signed := a * dir
		eligible := (needIncrease && signed < -tol) || (!needIncrease && signed > tol)
		if !eligible {
			continue
		}
		denom := a
		if needIncrease {
			denom = -a
		}
		ratio := ds.d[v] / denom
		if ratio < -tol {
			// Numerically dual-infeasible candidate; skip rather than
			// risk selecting a degenerate or incorrect pivot.
			continue
		}
		if ratio < 0 {
			ratio = 0
		}
		switch {
		case ratio < bestRatio-tol:
			bestRatio, entering, bestPivotMag = ratio, v, math.Abs(a)
		case ratio < bestRatio+tol && math.Abs(a) > bestPivotMag:
			entering, bestPivotMag = v, math.Abs(a)
		}
	}
	return entering, bestRatio
}

// bfrtCandidate is one nonbasic column eligible to relieve the leaving
// row's infeasibility, carried through chuzcBFRT's bound-flip sweep.
type bfrtCandidate struct {
	v     int
	ratio float64
	alpha float64
}

// chuzcBFRT implements spec.md §4.3 step 3's bound-flipping ratio test
// (BFRT): walk every eligible nonbasic column in increasing dual-ratio
// order and, for each boxed column whose flip to its opposite bound
// would not by itself fully relieve the leaving row's infeasibility,
// flip it instead of paying for a full pivot. It stops at the first
// column that either has no opposite bound (free or one-sided) or
// would overshoot the remaining infeasibility, returning that column as
// the entering variable for the caller's ordinary pivot, plus the list
// of columns flipped along the way (in sweep order) for the caller's
// aggregated FTRAN-BFRT primal update. useBland switches the selection
// to Bland's rule (lowest index among eligible columns, ignoring ratio)
// once the caller has seen enough degenerate steps to suspect cycling;
// flips are skipped entirely in that mode since Bland's rule only needs
// to guarantee termination, not cheapen the next pivot.
func chuzcBFRT(c *Context, ds *dualState, row int, needIncrease bool, alphaRow []float64, gap, tol float64, useBland bool) (entering int, bestRatio float64, flipped []int) {
	var cands []bfrtCandidate
	for v := 0; v < c.NumCol; v++ {
		if c.Basis.IsBasic(v) {
			continue
		}
		a := alphaRow[v]
		if isZero(a, 1) {
			continue
		}
		dir := direction(c.Basis, v)
		signed := a * dir
		eligible := (needIncrease && signed < -tol) || (!needIncrease && signed > tol)
		if !eligible {
			continue
		}
		denom := a
		if needIncrease {
			denom = -a
		}
		ratio := ds.d[v] / denom
		if ratio < -tol {
			continue
		}
		if ratio < 0 {
			ratio = 0
		}
		cands = append(cands, bfrtCandidate{v: v, ratio: ratio, alpha: a})
	}
	if len(cands) == 0 {
		return -1, math.Inf(1), nil
	}

	if useBland {
		best := 0
		for i := 1; i < len(cands); i++ {
			if cands[i].v < cands[best].v {
				best = i
			}
		}
		return cands[best].v, cands[best].ratio, nil
	}

	sort.Slice(cands, func(i, j int) bool { return cands[i].ratio < cands[j].ratio })

	remaining := math.Abs(gap)
	for _, cand := range cands {
		boxed := c.Lo[cand.v] > -boundInf && c.Hi[cand.v] < boundInf
		width := c.Hi[cand.v] - c.Lo[cand.v]
		effect := math.Abs(cand.alpha) * width
		if !boxed || effect+xZeroTol >= remaining {
			return cand.v, cand.ratio, flipped
		}
		remaining -= effect
		flipped = append(flipped, cand.v)
	}
	// Every eligible column got flipped without ever closing the gap:
	// numerically this means the row was never truly infeasible by
	// more than xZeroTol: report primal infeasibility the same as an
	// ordinary chuzc finding no entering column.
	return -1, math.Inf(1), flipped
}

// boundInf is the bound sentinel spec.md's glossary fixes at 1e30,
// duplicated here rather than imported from modelcheck to keep simplex
// independent of the model-validation layer.
const boundInf = 1e30

// applyBoundFlips flips each column in cols to its opposite bound and
// folds the resulting change in nonbasic value into xB through one
// aggregated FTRAN, spec.md §4.3 step 4's "FTRAN-BFRT for the
// accumulated bound flips": every flip's contribution to the RHS is
// summed first, so the whole batch costs one FTRAN rather than one per
// flipped column.
func applyBoundFlips(c *Context, cols []int) error {
	agg := sparsemat.NewVector(c.NumRow)
	for _, v := range cols {
		oldVal := c.nonbasicValue(v)
		c.Basis.FlipBound(v)
		newVal := c.nonbasicValue(v)
		delta := newVal - oldVal
		if delta == 0 {
			continue
		}
		rows, vals := c.A.Col(v)
		for k, r := range rows {
			agg.Add(r, -vals[k]*delta)
		}
	}
	if err := c.Factor.FTRAN(agg); err != nil {
		return err
	}
	shift := agg.Dense()
	for i := range c.xB {
		c.xB[i] += shift[i]
	}
	return nil
}

// priceRow computes alpha_rj = rho . A_j for every nonbasic column j,
// the PRICE step of spec.md §4.3.
func priceRow(c *Context, rho []float64) []float64 {
	out := make([]float64, c.NumCol)
	for v := 0; v < c.NumCol; v++ {
		if c.Basis.IsBasic(v) {
			continue
		}
		rows, vals := c.A.Col(v)
		var a float64
		for k, r := range rows {
			a += vals[k] * rho[r]
		}
		out[v] = a
	}
	return out
}

// Solve runs the revised dual simplex driver of spec.md §4.3 to
// optimality, primal infeasibility, dual unboundedness, or a resource
// limit. The Context's basis/factor/weights must already describe a
// dual-feasible starting point; Solve itself refactors, recomputes xB
// and seeds the reduced costs via refreshDual before the first
// iteration.
func Solve(c *Context, settings Settings) (Status, IterationStats, error) {
	var stats IterationStats
	var ds dualState
	if err := c.Factor.Refactor(mustDense(c)); err != nil {
		return NumericalFailure, stats, err
	}
	stats.Refactors++
	if err := c.RefreshPrimal(); err != nil {
		return NumericalFailure, stats, err
	}
	if err := c.refreshDual(&ds); err != nil {
		return NumericalFailure, stats, err
	}
	status, loopStats, err := solveFromDual(c, &ds, settings)
	stats.Iterations += loopStats.Iterations
	stats.Refactors += loopStats.Refactors
	return status, stats, err
}

// solveFromDual runs the iteration loop given an already-initialized
// dual state (reduced costs current for c's basis/factor), so PAMI's
// serial fallback can run a single iteration without repeating setup.
func solveFromDual(c *Context, ds *dualState, settings Settings) (Status, IterationStats, error) {
	var stats IterationStats
	degenerateStreak := 0
	for iter := 0; ; iter++ {
		if settings.MaxIterations > 0 && iter >= settings.MaxIterations {
			return IterationLimit, stats, nil
		}
		stats.Iterations++

		row, infeas := c.chooseLeavingRow(settings)
		if row < 0 {
			return Optimal, stats, nil
		}
		_ = infeas

		leavingVar := c.Basis.BasicIndices()[row]
		needIncrease := c.xB[row] < c.Lo[leavingVar]
		var leavingStatus basis.Status
		var target float64
		if needIncrease {
			leavingStatus, target = basis.AtLower, c.Lo[leavingVar]
		} else {
			leavingStatus, target = basis.AtUpper, c.Hi[leavingVar]
		}

		// BTRAN: rho solves Bᵀ rho = e_row.
		c.scratchRow.Reset()
		c.scratchRow.Set(row, 1)
		if err := c.Factor.BTRAN(c.scratchRow); err != nil {
			return NumericalFailure, stats, err
		}
		rho := append([]float64(nil), c.scratchRow.Dense()...)

		alphaRow := priceRow(c, rho)

		useBland := degenerateStreak >= blandThreshold
		entering, _, flipped := chuzcBFRT(c, ds, row, needIncrease, alphaRow, target-c.xB[row], settings.DualFeasTol, useBland)
		if len(flipped) > 0 {
			if err := applyBoundFlips(c, flipped); err != nil {
				return NumericalFailure, stats, err
			}
		}
		if entering < 0 {
			return PrimalInfeasible, stats, nil
		}

		// FTRAN: alpha = Binv * A_entering, the pivotal column.
		col := sparsemat.NewVector(c.NumRow)
		rows, vals := c.A.Col(entering)
		for k, r := range rows {
			col.Set(r, vals[k])
		}
		if err := c.Factor.FTRAN(col); err != nil {
			return NumericalFailure, stats, err
		}
		alphaFull := append([]float64(nil), col.Dense()...)

		// Verify: row-side alpha_row[entering] must match column-side
		// alphaFull[row] (spec.md §4.3's pivot verification step).
		pivot := alphaFull[row]
		rowSide := alphaRow[entering]
		relErr := 0.0
		if pivot != 0 {
			relErr = math.Abs(pivot-rowSide) / math.Max(1, math.Abs(pivot))
		}
		if c.Weights.RecordVerifyError(relErr, settings.DualFeasTol) {
			if err := c.Factor.Refactor(mustDense(c)); err != nil {
				return NumericalFailure, stats, err
			}
			stats.Refactors++
			if err := c.RefreshPrimal(); err != nil {
				return NumericalFailure, stats, err
			}
			if err := c.refreshDual(ds); err != nil {
				return NumericalFailure, stats, err
			}
			continue
		}
		if pivot == 0 {
			return NumericalFailure, stats, nil
		}

		dir := direction(c.Basis, entering)
		t := (target - c.xB[row]) / (-pivot * dir)
		if math.Abs(t) <= xZeroTol {
			degenerateStreak++
		} else {
			degenerateStreak = 0
		}

		enteringOldValue := c.nonbasicValue(entering)
		enteringNewValue := enteringOldValue + dir*t

		// Primal update: every basic variable shifts by -alphaFull[i]*dir*t.
		for i := range c.xB {
			if i == row {
				continue
			}
			c.xB[i] -= alphaFull[i] * dir * t
		}
		c.xB[row] = enteringNewValue

		// Dual update: every nonbasic reduced cost shifts by the same
		// pivot-row elimination a primal tableau pivot would perform.
		ratioQ := ds.d[entering] / pivot
		for v := 0; v < c.NumCol; v++ {
			if v == entering || c.Basis.IsBasic(v) {
				continue
			}
			ds.d[v] -= ratioQ * alphaRow[v]
		}
		ds.d[leavingVar] = -ratioQ
		ds.d[entering] = 0

		enteringWeight := c.Weights.At(row)
		applyWeightUpdate(settings.PricingRule, c.Weights, row, pivot, alphaFull, rho, enteringWeight)

		c.Basis.Pivot(row, entering, leavingStatus, 0)

		if err := c.Factor.Update(alphaFull, row); err != nil {
			if err == luf.ErrUpdateLimit {
				if rerr := c.Factor.Refactor(mustDense(c)); rerr != nil {
					return NumericalFailure, stats, rerr
				}
				stats.Refactors++
				if err := c.RefreshPrimal(); err != nil {
					return NumericalFailure, stats, err
				}
				if err := c.refreshDual(ds); err != nil {
					return NumericalFailure, stats, err
				}
				continue
			}
			return NumericalFailure, stats, err
		}
	}
}

// mustDense extracts the dense basis matrix for the current basic
// index set, for Refactor.
func mustDense(c *Context) *mat.Dense {
	return luf.ExtractColumns(c.A, c.Basis.BasicIndices())
}
