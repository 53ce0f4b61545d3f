package redcost

import (
	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/domain"
)

// Result reports how many column bounds reduced-cost fixing actually
// tightened immediately, versus how many it deferred to the lurking
// sets because the cutoff would need to improve further to justify
// them.
type Result struct {
	Tightened int
	Deferred  int
}

// Fix runs spec.md §4.5's reduced-cost fixing pass for a minimization
// LP relaxation: given the relaxation's objective value objLP, the
// reduced cost of every column (basic columns carry reduced cost 0,
// which is harmless since they fail the status check below), and the
// incumbent cutoff U, it tightens nonbasic columns whose full
// bound-to-bound objective swing alone would already exceed the
// cutoff, and records weaker candidates into lower/upper for
// activation once the incumbent improves further.
func Fix(d *domain.Domain, bas *basis.Basis, reducedCost []float64, objLP, cutoff float64, lower, upper *LurkingSet) Result {
	var res Result
	for v := 0; v < d.NumVar(); v++ {
		switch bas.Status(v) {
		case basis.AtLower:
			rc := reducedCost[v]
			if rc <= 0 {
				continue
			}
			lo, hi := d.Lo(v), d.Hi(v)
			if hi-lo == 0 {
				continue
			}
			required := objLP + rc*(hi-lo)
			if required > cutoff {
				newUp := lo + (cutoff-objLP)/rc
				if d.TightenUpper(v, newUp, domain.ReducedCostFixing) == domain.Tightened {
					res.Tightened++
				}
			} else {
				upper.Insert(Lurking{Key: required, Var: v, Side: Upper, RefBound: lo, ObjLP: objLP, ReducedCost: rc})
				res.Deferred++
			}
		case basis.AtUpper:
			rc := reducedCost[v]
			if rc >= 0 {
				continue
			}
			lo, hi := d.Lo(v), d.Hi(v)
			if hi-lo == 0 {
				continue
			}
			required := objLP - rc*(hi-lo)
			if required > cutoff {
				newLo := hi + (cutoff-objLP)/rc
				if d.TightenLower(v, newLo, domain.ReducedCostFixing) == domain.Tightened {
					res.Tightened++
				}
			} else {
				lower.Insert(Lurking{Key: required, Var: v, Side: Lower, RefBound: hi, ObjLP: objLP, ReducedCost: rc})
				res.Deferred++
			}
		}
	}
	return res
}

// ApplyLurking installs every lurking tightening that activates at the
// improved cutoff newCutoff, called right after the incumbent improves.
func ApplyLurking(d *domain.Domain, lower, upper *LurkingSet, newCutoff float64) Result {
	var res Result
	for _, l := range lower.Activate(newCutoff) {
		if d.TightenLower(l.Var, l.Bound(newCutoff), domain.ReducedCostFixing) == domain.Tightened {
			res.Tightened++
		}
	}
	for _, l := range upper.Activate(newCutoff) {
		if d.TightenUpper(l.Var, l.Bound(newCutoff), domain.ReducedCostFixing) == domain.Tightened {
			res.Tightened++
		}
	}
	return res
}
