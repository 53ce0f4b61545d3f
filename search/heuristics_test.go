package search

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestRENSFixesIntegralColumn(t *testing.T) {
	c, p := newSingleVarContext(t)
	lpX := []float64{1, 2} // x already integral in the relaxation

	res, err := RENS(c, p, lpX, DefaultHeuristicSettings(), DefaultSettings(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("RENS: %v", err)
	}
	if res.Status != IntegerFeasible {
		t.Fatalf("Status = %v, want IntegerFeasible", res.Status)
	}
	if math.Abs(res.Obj-(-1)) > 1e-7 {
		t.Fatalf("Obj = %v, want -1", res.Obj)
	}
	if res.Nodes != 1 {
		t.Fatalf("Nodes = %d, want 1 (fixing the only integer column should need no branching)", res.Nodes)
	}
}

func TestRINSFixesAgreeingColumn(t *testing.T) {
	c, p := newSingleVarContext(t)
	lpX := []float64{1, 2}
	incumbentX := []float64{1, 2}

	res, err := RINS(c, p, lpX, incumbentX, DefaultHeuristicSettings(), DefaultSettings(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("RINS: %v", err)
	}
	if res.Status != IntegerFeasible {
		t.Fatalf("Status = %v, want IntegerFeasible", res.Status)
	}
	if math.Abs(res.Obj-(-1)) > 1e-7 {
		t.Fatalf("Obj = %v, want -1", res.Obj)
	}
}

func TestRINSFallsBackToFullSearchWhenNoColumnsAgree(t *testing.T) {
	c, p := newSingleVarContext(t)
	lpX := []float64{1.5, 2}
	incumbentX := []float64{9, 0} // disagrees with lpX's rounding, so nothing gets fixed

	res, err := RINS(c, p, lpX, incumbentX, DefaultHeuristicSettings(), DefaultSettings(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("RINS: %v", err)
	}
	if res.Status != IntegerFeasible || math.Abs(res.Obj-(-1)) > 1e-7 {
		t.Fatalf("Status/Obj = %v/%v, want IntegerFeasible/-1 (unrestricted search still finds the optimum)", res.Status, res.Obj)
	}
}
