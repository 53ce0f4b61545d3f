package simplex

import "github.com/dsmip/dsmip/basis"

// applyWeightUpdate dispatches to the active pricing rule's edge-weight
// recurrence after a pivot. It is a small function table rather than an
// interface per-iteration dispatch, per spec.md §9's "avoid virtual
// tables on the per-iteration path" design note: the rule is resolved
// once (here, by a type switch reached exactly once per iteration, not
// once per candidate considered during PRICE/CHUZC).
func applyWeightUpdate(rule basis.PricingRule, w *basis.Weights, leavingRow int, pivot float64, alpha, rho []float64, enteringWeight float64) {
	switch rule {
	case basis.DualSteepestEdge:
		ftranAlphaOverPivot := make([]float64, len(alpha))
		for i, a := range alpha {
			ftranAlphaOverPivot[i] = a / pivot
		}
		w.UpdateDSE(leavingRow, pivot, alpha, ftranAlphaOverPivot, rho)
	case basis.Devex:
		w.UpdateDevex(leavingRow, pivot, enteringWeight, alpha)
	case basis.Dantzig:
		// Dantzig pricing carries no weight state to update; CHUZR uses a
		// constant weight of 1 for every row (see chooseLeavingRow).
	}
}

// rowWeight returns the pricing weight CHUZR should divide infeasibility
// squared by, per the active rule (Dantzig's rule is the degenerate case
// of a uniform weight of 1, i.e. plain largest-infeasibility selection).
func rowWeight(rule basis.PricingRule, w *basis.Weights, row int) float64 {
	if rule == basis.Dantzig {
		return 1
	}
	return w.At(row)
}
