package simplex

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/sparsemat"
	"github.com/dsmip/dsmip/sparsemat/luf"
)

// minorPivot is one tentative pivot selected during a PAMI major
// iteration's batch of leaving-row candidates, before majorUpdate
// commits it.
type minorPivot struct {
	row      int
	entering int
	pivot    float64
	alpha    []float64 // FTRAN(A_entering), length NumRow
	rho      []float64 // BTRAN(e_row), length NumRow
	needIncr bool
	valid    bool
}

// SolvePAMI runs the multi-pivot dual simplex variant of spec.md §4.3:
// each major iteration selects up to settings.BatchSize candidate
// leaving rows by CHUZR score and runs one minor iteration per row
// concurrently (grounded on the same errgroup fan-out as SIP), each
// with its own BTRAN, PRICE, CHUZC and FTRAN against the factor as it
// stood at the start of the major iteration. majorUpdate then commits
// the minor pivots in order, one factor update per committed pivot. A
// pivot whose row-side/column-side verification disagrees beyond
// VerifyTol (a stale candidate: an earlier committed pivot in the same
// batch changed its row), or whose row or entering column an earlier
// commit already used, is skipped rather than applied; when a whole
// batch is skipped, one serial iteration runs before the next batch.
func SolvePAMI(c *Context, settings Settings) (Status, IterationStats, error) {
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

	for major := 0; ; major++ {
		if settings.MaxIterations > 0 && stats.Iterations >= settings.MaxIterations {
			return IterationLimit, stats, nil
		}

		rows := batchLeavingRows(c, settings)
		if len(rows) == 0 {
			return Optimal, stats, nil
		}

		minors := make([]minorPivot, len(rows))
		g, _ := errgroup.WithContext(context.Background())
		for i, row := range rows {
			i, row := i, row
			g.Go(func() error {
				leavingVar := c.Basis.BasicIndices()[row]
				needIncrease := c.xB[row] < c.Lo[leavingVar]

				rhoVec := sparsemat.NewVector(c.NumRow)
				rhoVec.Set(row, 1)
				// Each minor iteration BTRANs against the factor as it
				// stood at the start of this major iteration; commits
				// are deferred to majorUpdate, so no shared write races.
				if err := c.Factor.BTRAN(rhoVec); err != nil {
					minors[i] = minorPivot{valid: false}
					return nil
				}
				rho := append([]float64(nil), rhoVec.Dense()...)
				alphaRow := priceRow(c, rho)
				entering, _ := chuzc(c, &ds, row, needIncrease, alphaRow, settings.DualFeasTol)
				if entering < 0 {
					minors[i] = minorPivot{valid: false}
					return nil
				}

				col := sparsemat.NewVector(c.NumRow)
				cols, vals := c.A.Col(entering)
				for k, r := range cols {
					col.Set(r, vals[k])
				}
				if err := c.Factor.FTRAN(col); err != nil {
					minors[i] = minorPivot{valid: false}
					return nil
				}
				alpha := append([]float64(nil), col.Dense()...)
				minors[i] = minorPivot{
					row: row, entering: entering, pivot: alpha[row],
					alpha: alpha, rho: rho, needIncr: needIncrease, valid: true,
				}
				return nil
			})
		}
		_ = g.Wait()

		committed, uerr := majorUpdate(c, &ds, settings, minors)
		stats.Iterations += committed
		if uerr != nil {
			if uerr != luf.ErrUpdateLimit {
				return NumericalFailure, stats, uerr
			}
			// A committed pivot's eta could not be appended to the
			// product-form inverse: Basis/xB/duals/weights already
			// reflect it, so Factor must be brought back in sync via a
			// full refactor before anything else FTRANs/BTRANs against
			// it, the same recovery solveFromDual/SolvePAMI use at the
			// ordinary update limit.
			if rerr := c.Factor.Refactor(mustDense(c)); rerr != nil {
				return NumericalFailure, stats, rerr
			}
			stats.Refactors++
			if err := c.RefreshPrimal(); err != nil {
				return NumericalFailure, stats, err
			}
			if err := c.refreshDual(&ds); err != nil {
				return NumericalFailure, stats, err
			}
			continue
		}
		if committed == 0 {
			// Every candidate in this batch went stale; fall back to one
			// serial iteration via the normal driver to guarantee
			// progress before trying a fresh batch.
			status, serialStats, err := solveOneIteration(c, &ds, settings)
			stats.Iterations += serialStats.Iterations
			stats.Refactors += serialStats.Refactors
			// IterationLimit here only means the one-iteration cap was hit.
			if err != nil || (status != Optimal && status != IterationLimit) {
				return status, stats, err
			}
		}
	}
}

// batchLeavingRows selects up to settings.BatchSize infeasible basic
// rows by CHUZR score, highest first, without mutating the basis --
// the batch is chosen once per major iteration, before any pivot in it
// has committed.
func batchLeavingRows(c *Context, settings Settings) []int {
	type scored struct {
		row   int
		score float64
	}
	var candidates []scored
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
		candidates = append(candidates, scored{i, viol * viol / rowWeight(settings.PricingRule, c.Weights, i)})
	}
	// Partial selection sort for the top BatchSize; batches are small
	// (single-digit M per spec.md §4.3) so this beats a full sort.Slice.
	limit := settings.BatchSize
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	rows := make([]int, 0, limit)
	used := make([]bool, len(candidates))
	for k := 0; k < limit; k++ {
		best, bestScore := -1, -1.0
		for i, cand := range candidates {
			if used[i] || cand.score <= bestScore {
				continue
			}
			best, bestScore = i, cand.score
		}
		if best < 0 {
			break
		}
		used[best] = true
		rows = append(rows, candidates[best].row)
	}
	return rows
}

// majorUpdate commits the minor iterations' pivots in order, skipping
// (rolling back) any whose leaving row was already consumed by an
// earlier commit in the same batch or whose verification fails. It
// stops committing further minors and returns luf.ErrUpdateLimit as
// soon as one commit's Factor.Update hits the update limit: that
// pivot's Basis/xB/duals/weights already advanced, so the caller must
// refactor before any later minor's FTRAN/BTRAN would read a stale
// factor.
func majorUpdate(c *Context, ds *dualState, settings Settings, minors []minorPivot) (int, error) {
	committed := 0
	consumedRow := make(map[int]bool)
	consumedVar := make(map[int]bool)
	for _, m := range minors {
		if !m.valid || consumedRow[m.row] || consumedVar[m.entering] {
			continue
		}
		if m.pivot == 0 {
			continue
		}
		rowSide := priceRow(c, m.rho)[m.entering]
		if math.Abs(m.pivot-rowSide) > settings.VerifyTol*math.Max(1, math.Abs(m.pivot)) {
			continue // stale: an earlier commit in this batch changed this row
		}
		if err := applyCommittedPivot(c, ds, settings, m); err != nil {
			committed++
			return committed, err
		}
		consumedRow[m.row] = true
		consumedVar[m.entering] = true
		committed++
	}
	return committed, nil
}

// applyCommittedPivot performs the primal/dual/weight/basis/factor
// update for one accepted PAMI minor iteration, the same bookkeeping
// Solve's serial loop does per iteration. It returns luf.ErrUpdateLimit
// if Factor.Update could not append this pivot's eta.
func applyCommittedPivot(c *Context, ds *dualState, settings Settings, m minorPivot) error {
	leavingVar := c.Basis.BasicIndices()[m.row]
	leavingStatus := basis.AtLower
	target := c.Lo[leavingVar]
	if !m.needIncr {
		leavingStatus, target = basis.AtUpper, c.Hi[leavingVar]
	}
	dir := direction(c.Basis, m.entering)
	t := (target - c.xB[m.row]) / (-m.pivot * dir)

	enteringOldValue := c.nonbasicValue(m.entering)
	enteringNewValue := enteringOldValue + dir*t
	for i := range c.xB {
		if i == m.row {
			continue
		}
		c.xB[i] -= m.alpha[i] * dir * t
	}
	c.xB[m.row] = enteringNewValue

	alphaRow := priceRow(c, m.rho)
	ratioQ := ds.d[m.entering] / m.pivot
	for v := 0; v < c.NumCol; v++ {
		if v == m.entering || c.Basis.IsBasic(v) {
			continue
		}
		ds.d[v] -= ratioQ * alphaRow[v]
	}
	ds.d[leavingVar] = -ratioQ
	ds.d[m.entering] = 0

	enteringWeight := c.Weights.At(m.row)
	applyWeightUpdate(settings.PricingRule, c.Weights, m.row, m.pivot, m.alpha, m.rho, enteringWeight)

	c.Basis.Pivot(m.row, m.entering, leavingStatus, 0)
	return c.Factor.Update(m.alpha, m.row)
}

// solveOneIteration performs exactly one serial dual-simplex iteration
// (the fallback path when a PAMI batch goes entirely stale), reusing
// solveFromDual's loop with MaxIterations capped at 1.
func solveOneIteration(c *Context, ds *dualState, settings Settings) (Status, IterationStats, error) {
	one := settings
	one.MaxIterations = 1
	return solveFromDual(c, ds, one)
}
