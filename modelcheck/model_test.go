package modelcheck

import "testing"

func validModel() *Model {
	// min x0 + x1  s.t.  0 <= x0 + x1 <= 10, 0 <= x0,x1 <= 5
	return &Model{
		NumCol:   2,
		NumRow:   1,
		Sense:    Minimize,
		ColCost:  []float64{1, 1},
		ColLower: []float64{0, 0},
		ColUpper: []float64{5, 5},
		RowLower: []float64{0},
		RowUpper: []float64{10},
		AStart:   []int{0, 1, 2},
		AIndex:   []int{0, 0},
		AValue:   []float64{1, 1},
	}
}

func TestAssessModelValid(t *testing.T) {
	m := validModel()
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Ok {
		t.Fatalf("outcome = %v, findings = %v, want Ok", outcome, findings)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %v, want none", findings)
	}
}

func TestAssessModelBadColumnBound(t *testing.T) {
	m := validModel()
	m.ColLower[0] = 6 // exceeds ColUpper[0] = 5
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Warning {
		t.Fatalf("outcome = %v, want Warning", outcome)
	}
	if len(findings) != 1 || findings[0].Kind != BadBound {
		t.Errorf("findings = %v, want a single BadBound finding", findings)
	}
}

func TestAssessModelBadRowBound(t *testing.T) {
	m := validModel()
	m.RowLower[0] = 20 // exceeds RowUpper[0] = 10
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Warning {
		t.Fatalf("outcome = %v, want Warning", outcome)
	}
	if len(findings) != 1 || findings[0].Kind != BadBound {
		t.Errorf("findings = %v, want a single BadBound finding", findings)
	}
}

func TestAssessModelInfiniteCostRejected(t *testing.T) {
	m := validModel()
	m.ColCost[0] = Infinity
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Error {
		t.Fatalf("outcome = %v, want Error", outcome)
	}
	if len(findings) != 1 || findings[0].Kind != InfiniteCost {
		t.Errorf("findings = %v, want a single InfiniteCost finding", findings)
	}
}

func TestAssessModelInfiniteCostAllowed(t *testing.T) {
	m := validModel()
	m.ColCost[0] = Infinity
	opts := DefaultOptions()
	opts.AllowInfiniteCost = true
	outcome, findings := AssessModel(m, opts)
	if outcome != Ok || len(findings) != 0 {
		t.Errorf("outcome = %v findings = %v, want Ok/nil when infinite cost is allowed", outcome, findings)
	}
}

func TestAssessModelFixedNonIntegerColumn(t *testing.T) {
	m := validModel()
	m.Integrality = []VarType{Integer, Continuous}
	m.ColLower[0], m.ColUpper[0] = 1.5, 1.5
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Error {
		t.Fatalf("outcome = %v, want Error", outcome)
	}
	if len(findings) != 1 || findings[0].Kind != BadBound {
		t.Errorf("findings = %v, want a single BadBound finding", findings)
	}
}

func TestAssessModelMagnitudeBand(t *testing.T) {
	m := validModel()
	m.AValue[0] = 1e20
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Error {
		t.Fatalf("outcome = %v, want Error", outcome)
	}
	if len(findings) != 1 || findings[0].Kind != LargeCoefficient {
		t.Errorf("findings = %v, want a single LargeCoefficient finding", findings)
	}

	m = validModel()
	m.AValue[0] = 1e-12
	outcome, findings = AssessModel(m, DefaultOptions())
	if outcome != Warning {
		t.Fatalf("outcome = %v, want Warning for a below-threshold entry", outcome)
	}
	if len(findings) != 1 || findings[0].Kind != LargeCoefficient {
		t.Errorf("findings = %v, want a single LargeCoefficient finding", findings)
	}
}

func TestAssessModelDimensionMismatch(t *testing.T) {
	m := validModel()
	m.ColCost = m.ColCost[:1]
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Error {
		t.Fatalf("outcome = %v, want Error", outcome)
	}
	if len(findings) != 1 || findings[0].Kind != DimensionMismatch {
		t.Errorf("findings = %v, want a single DimensionMismatch finding", findings)
	}
}

func TestAssessModelWithHessian(t *testing.T) {
	m := validModel()
	m.Hessian = &Hessian{
		Dim:      2,
		Format:   TriangularUpper,
		ColStart: []int{0, 1, 2},
		RowIndex: []int{0, 1},
		Value:    []float64{-1, 2},
	}
	outcome, findings := AssessModel(m, DefaultOptions())
	if outcome != Warning {
		t.Fatalf("outcome = %v, findings = %v, want Warning (negative diagonal under Minimize)", outcome, findings)
	}
}
