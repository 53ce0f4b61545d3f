package basis

import "math"

// PricingRule selects the pricing weight update rule, a tagged variant per
// spec.md §9's "avoid virtual tables on the per-iteration path" design
// note (no interface dispatch on the per-iteration path; the driver
// switches on this tag once per iteration).
type PricingRule int8

const (
	DualSteepestEdge PricingRule = iota
	Devex
	Dantzig
)

func (r PricingRule) String() string {
	switch r {
	case DualSteepestEdge:
		return "DualSteepestEdge"
	case Devex:
		return "Devex"
	case Dantzig:
		return "Dantzig"
	default:
		return "PricingRule(invalid)"
	}
}

// DevexResetRatio bounds how large a Devex reference weight may grow,
// relative to its initial value, before the reference framework is reset.
const DevexResetRatio = 1e4

// Weights holds one pricing weight per row (spec.md §3's Edge-Weight
// State): under exact arithmetic the dual-steepest-edge weight of row i
// equals ‖Bᵀeᵢ‖², and Devex tracks an approximation relative to a
// reference framework instead. AllowedError accumulates the observed gap
// between the row-side and column-side recomputation of a pivot (see
// simplex's Verify step) and is used to decide when the active rule's
// current weight set has drifted too far to trust (the rebuild trigger
// rebuild_reason = NumericalTrouble in spec.md §4.3, and the
// Devex-reset-ratio check in §4.3's "Pricing modes" subsection).
type Weights struct {
	Rule         PricingRule
	w            []float64
	initial      float64
	allowedError float64
	errorCount   int
}

// NewWeights returns a Weights of the given rule and dimension, seeded to
// 1 everywhere (the standard DSE/Devex cold-start value; an exact DSE
// seed, if available from a known starting basis, can be installed with
// Reset).
func NewWeights(rule PricingRule, n int) *Weights {
	w := &Weights{Rule: rule, w: make([]float64, n), initial: 1}
	for i := range w.w {
		w.w[i] = 1
	}
	return w
}

// At returns the pricing weight of row i.
func (w *Weights) At(i int) float64 { return w.w[i] }

// Reset reinstalls a fresh reference framework, e.g. exact DSE weights
// after a refactor or a Devex restart once MaxRatioExceeded fires.
func (w *Weights) Reset(values []float64) {
	copy(w.w, values)
	w.allowedError = 0
	w.errorCount = 0
	if len(values) > 0 {
		w.initial = values[0]
	}
}

// UpdateDSE applies the steepest-edge recurrence after a pivot: row
// leavingRow leaves with pivot value pivot (the pivotal entry of the
// entering column alpha), and every other row's weight is updated as
//
//	w_i' = max(w_i - 2*(alpha_i/pivot)*rho_i + (alpha_i/pivot)^2 * w_leaving,  (alpha_i/pivot)^2 * w_leaving)
//
// where rho is the BTRAN'd pivotal row, used directly: no auxiliary FTRAN
// of rho is taken, and ftranAlphaOverPivot is not read.
func (w *Weights) UpdateDSE(leavingRow int, pivot float64, alpha []float64, ftranAlphaOverPivot []float64, rho []float64) {
	wLeaving := w.w[leavingRow]
	for i := range w.w {
		if i == leavingRow {
			continue
		}
		ratio := alpha[i] / pivot
		cand1 := w.w[i] - 2*ratio*rho[i] + ratio*ratio*wLeaving
		cand2 := ratio * ratio * wLeaving
		if cand1 < cand2 {
			cand1 = cand2
		}
		w.w[i] = math.Max(cand1, 1e-10)
	}
	w.w[leavingRow] = math.Max(wLeaving/(pivot*pivot), 1e-10)
}

// UpdateDevex applies the Devex max-based update: every row's weight is
// raised to at least (alpha_i/pivot)^2 * w_entering, where w_entering is
// the weight the entering variable carried as a nonbasic column
// (defaulting to 1 if it was outside the reference framework). It reports
// whether the new maximum weight exceeds DevexResetRatio times the
// reference framework's initial weight, in which case the caller should
// start a fresh Devex framework.
func (w *Weights) UpdateDevex(leavingRow int, pivot, enteringWeight float64, alpha []float64) (needsReset bool) {
	maxW := w.w[leavingRow]
	for i := range w.w {
		ratio := alpha[i] / pivot
		cand := ratio * ratio * enteringWeight
		if cand > w.w[i] {
			w.w[i] = cand
		}
		if w.w[i] > maxW {
			maxW = w.w[i]
		}
	}
	w.w[leavingRow] = math.Max(enteringWeight/(pivot*pivot), 1)
	return maxW > DevexResetRatio*w.initial
}

// RecordVerifyError folds in the relative discrepancy between the
// row-side and column-side recomputation of a pivot (simplex's Verify
// step), used to decide whether too many recent pivots have shown
// numerical trouble for the current weight set to be trusted.
func (w *Weights) RecordVerifyError(relError, tauW float64) (tooManyErrors bool) {
	w.allowedError = 0.9*w.allowedError + 0.1*relError
	if relError > tauW {
		w.errorCount++
	} else if w.errorCount > 0 {
		w.errorCount--
	}
	return w.errorCount > 5
}
