package redcost

import (
	"testing"

	"github.com/dsmip/dsmip/basis"
	"github.com/dsmip/dsmip/domain"
)

func TestLurkingSetOrderingAndActivation(t *testing.T) {
	var s LurkingSet
	s.Insert(Lurking{Key: 5, Var: 0})
	s.Insert(Lurking{Key: 1, Var: 1})
	s.Insert(Lurking{Key: 3, Var: 2})

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	active := s.Activate(4)
	if len(active) != 1 || active[0].Var != 0 {
		t.Fatalf("Activate(4) = %v, want just var 0 (key 5)", active)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() after Activate = %d, want 2", s.Len())
	}

	active = s.Activate(1)
	if len(active) != 2 {
		t.Fatalf("Activate(1) = %v, want both remaining entries", active)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after draining = %d, want 0", s.Len())
	}
}

func TestFixTightensImmediateCandidate(t *testing.T) {
	d := domain.New([]float64{0}, []float64{10})
	bas := basis.New(1, 2)
	bas.SetAllSlackBasis(1, []basis.Status{basis.AtLower})

	reducedCost := []float64{2}
	// objLP=0, rc=2, swing over full range [0,10] = 20 > cutoff=5.
	var lower, upper LurkingSet
	res := Fix(d, bas, reducedCost, 0, 5, &lower, &upper)
	if res.Tightened != 1 {
		t.Fatalf("Tightened = %d, want 1", res.Tightened)
	}
	// new upper = lo + (cutoff-objLP)/rc = 0 + 5/2 = 2.5
	if got := d.Hi(0); got != 2.5 {
		t.Errorf("Hi(0) = %v, want 2.5", got)
	}
}

func TestFixDefersWeakCandidate(t *testing.T) {
	d := domain.New([]float64{0}, []float64{10})
	bas := basis.New(1, 2)
	bas.SetAllSlackBasis(1, []basis.Status{basis.AtLower})

	reducedCost := []float64{0.2}
	// objLP=0, required = 0.2*10 = 2, not > cutoff=5: deferred.
	var lower, upper LurkingSet
	res := Fix(d, bas, reducedCost, 0, 5, &lower, &upper)
	if res.Deferred != 1 || res.Tightened != 0 {
		t.Fatalf("res = %+v, want Deferred=1 Tightened=0", res)
	}
	if d.Hi(0) != 10 {
		t.Errorf("Hi(0) = %v, want unchanged 10", d.Hi(0))
	}

	// Incumbent improves to a cutoff of 1, below the required key of 2:
	// the deferred bound should now activate as lo + (1-0)/0.2 = 5.
	applied := ApplyLurking(d, &lower, &upper, 1)
	if applied.Tightened != 1 {
		t.Fatalf("ApplyLurking Tightened = %d, want 1", applied.Tightened)
	}
	if got := d.Hi(0); got != 5 {
		t.Errorf("Hi(0) = %v, want 5", got)
	}
}
