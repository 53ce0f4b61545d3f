package simplex

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/sparsemat"
	"github.com/dsmip/dsmip/sparsemat/luf"
)

// sliceCount returns min(threads-2, sliceLimit), clamped to at least 1,
// per spec.md §4.3's SIP setup rule.
func sliceCount(settings Settings) int {
	threads := settings.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	n := threads - 2
	if settings.SliceLimit > 0 && settings.SliceLimit < n {
		n = settings.SliceLimit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// priceAndChuzcSIP is the slice-parallel PRICE+CHUZC of spec.md §4.3:
// nonbasic columns are partitioned into near-equal-nnz slices (c.A's
// Partition), each slice prices and ratio-tests independently
// with no shared write, and the driver merges candidates by ratio. It
// is grounded on optimize/global.go's GlobalTask fan-out, replacing the
// teacher's hand-rolled channel/goroutine pool with
// golang.org/x/sync/errgroup's bounded, error-propagating group.
func priceAndChuzcSIP(c *Context, ds *dualState, row int, needIncrease bool, rho []float64, tol float64, settings Settings) (entering int, bestRatio float64, alphaRow []float64) {
	slices := c.A.Partition(sliceCount(settings))
	type candidate struct {
		entering int
		ratio    float64
		pivotMag float64
	}
	results := make([]candidate, len(slices))
	alphaRow = make([]float64, c.NumCol)

	g, _ := errgroup.WithContext(context.Background())
	for s, rng := range slices {
		s, rng := s, rng
		g.Go(func() error {
			best := candidate{entering: -1, ratio: math.Inf(1)}
			for v := rng.Start; v < rng.End; v++ {
				if c.Basis.IsBasic(v) {
					continue
				}
				rows, vals := c.A.Col(v)
				var a float64
				for k, r := range rows {
					a += vals[k] * rho[r]
				}
				alphaRow[v] = a
				if a == 0 {
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
				if ratio < 0 {
					ratio = 0
				}
				switch {
				case ratio < best.ratio-tol:
					best = candidate{entering: v, ratio: ratio, pivotMag: math.Abs(a)}
				case ratio < best.ratio+tol && math.Abs(a) > best.pivotMag:
					best.entering, best.pivotMag = v, math.Abs(a)
				}
			}
			results[s] = best
			return nil
		})
	}
	_ = g.Wait() // slices never return an error; Wait only blocks until done.

	entering, bestRatio = -1, math.Inf(1)
	bestPivotMag := 0.0
	for _, r := range results {
		if r.entering < 0 {
			continue
		}
		switch {
		case r.ratio < bestRatio-tol:
			entering, bestRatio, bestPivotMag = r.entering, r.ratio, r.pivotMag
		case r.ratio < bestRatio+tol && r.pivotMag > bestPivotMag:
			entering, bestPivotMag = r.entering, r.pivotMag
		}
	}
	return entering, bestRatio, alphaRow
}

// SolveSIP runs the slice-parallel dual simplex variant: identical to
// Solve's per-iteration protocol except PRICE+CHUZC is split across
// column slices by priceAndChuzcSIP. A Threads <= 1 setting still pays
// the slicing/errgroup overhead of a single slice; callers on a single
// core should use Solve instead.
func SolveSIP(c *Context, settings Settings) (Status, IterationStats, error) {
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

	for iter := 0; ; iter++ {
		if settings.MaxIterations > 0 && iter >= settings.MaxIterations {
			return IterationLimit, stats, nil
		}
		stats.Iterations++

		row, _ := c.chooseLeavingRow(settings)
		if row < 0 {
			return Optimal, stats, nil
		}

		leavingVar := c.Basis.BasicIndices()[row]
		needIncrease := c.xB[row] < c.Lo[leavingVar]

		c.scratchRow.Reset()
		c.scratchRow.Set(row, 1)
		if err := c.Factor.BTRAN(c.scratchRow); err != nil {
			return NumericalFailure, stats, err
		}
		rho := append([]float64(nil), c.scratchRow.Dense()...)

		entering, _, alphaRow := priceAndChuzcSIP(c, &ds, row, needIncrease, rho, settings.DualFeasTol, settings)
		if entering < 0 {
			return PrimalInfeasible, stats, nil
		}

		col := sparsemat.NewVector(c.NumRow)
		rows, vals := c.A.Col(entering)
		for k, r := range rows {
			col.Set(r, vals[k])
		}
		if err := c.Factor.FTRAN(col); err != nil {
			return NumericalFailure, stats, err
		}
		alphaFull := append([]float64(nil), col.Dense()...)

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
			if err := c.refreshDual(&ds); err != nil {
				return NumericalFailure, stats, err
			}
			continue
		}
		if pivot == 0 {
			return NumericalFailure, stats, nil
		}

		var leavingStatus basis.Status
		var target float64
		if needIncrease {
			leavingStatus, target = basis.AtLower, c.Lo[leavingVar]
		} else {
			leavingStatus, target = basis.AtUpper, c.Hi[leavingVar]
		}
		dir := direction(c.Basis, entering)
		t := (target - c.xB[row]) / (-pivot * dir)

		enteringOldValue := c.nonbasicValue(entering)
		enteringNewValue := enteringOldValue + dir*t

		for i := range c.xB {
			if i == row {
				continue
			}
			c.xB[i] -= alphaFull[i] * dir * t
		}
		c.xB[row] = enteringNewValue

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
				if err := c.refreshDual(&ds); err != nil {
					return NumericalFailure, stats, err
				}
				continue
			}
			return NumericalFailure, stats, err
		}
	}
}
