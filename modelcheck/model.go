// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package modelcheck implements the model-assessment and Hessian-
// normalization layer of spec.md §4.1: validating a user-supplied model
// and converting between square and strict-upper-triangular Hessian
// representations. It generalizes the structural checks gonum's
// lp.verifyInputs performs (dimension agreement, all-zero rows/columns)
// from panics to the three-valued Ok/Warning/Error outcome spec.md
// requires, and adds the magnitude-band and bound-ordering checks the
// original HiGHS validation (original_source/check/TestLpValidation.cpp)
// exercises.
package modelcheck

import "math"

// Infinity is the sentinel spec.md assigns to +∞ bounds.
const Infinity = 1e30

// FreeBoundThreshold: magnitudes at or above this are treated as "free on
// that side", per spec.md §6.
const FreeBoundThreshold = 1e25

// Sense is the optimization direction.
type Sense int8

const (
	Minimize Sense = iota
	Maximize
)

// VarType is the internal, richer integrality enumeration named in
// spec.md's Open Questions: the public interface only ever sets or reads
// Continuous/Integer, but the type leaves room for future variants
// (semi-continuous, semi-integer) without changing the public bool-typed
// operation.
type VarType int8

const (
	Continuous VarType = iota
	Integer
)

// Model is the full optimization model of spec.md §3.
type Model struct {
	NumCol, NumRow int
	Sense          Sense
	ObjOffset      float64

	ColCost         []float64
	ColLower        []float64
	ColUpper        []float64
	RowLower        []float64
	RowUpper        []float64
	AStart          []int // len NumCol+1
	AIndex          []int // len nnz, row indices, in [0,NumRow)
	AValue          []float64

	Integrality []VarType // len NumCol, nil means all continuous

	Hessian *Hessian // optional, nil for pure LP/MIP
}

// Outcome is the three-valued status of an assessment, per spec.md §4.1
// and §6.
type Outcome int8

const (
	Ok Outcome = iota
	Warning
	Error
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "Ok"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Outcome(invalid)"
	}
}

func worse(a, b Outcome) Outcome {
	if b > a {
		return b
	}
	return a
}

// ErrorKind enumerates the validation error kinds of spec.md §4.1 and §7.
type ErrorKind int8

const (
	NoError ErrorKind = iota
	DimensionMismatch
	BadBound
	InfiniteCost
	LargeCoefficient
	HessianAsymmetric
	HessianIndefinite
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "NoError"
	case DimensionMismatch:
		return "DimensionMismatch"
	case BadBound:
		return "BadBound"
	case InfiniteCost:
		return "InfiniteCost"
	case LargeCoefficient:
		return "LargeCoefficient"
	case HessianAsymmetric:
		return "HessianAsymmetric"
	case HessianIndefinite:
		return "HessianIndefinite"
	default:
		return "ErrorKind(invalid)"
	}
}

// Finding is one diagnostic produced by AssessModel: its kind, severity,
// and a human-readable message naming the offending row/column.
type Finding struct {
	Kind     ErrorKind
	Severity Outcome
	Message  string
}

// Options controls the tolerances and policy checks AssessModel applies.
type Options struct {
	SmallMatrixValue float64 // entries with |value| below this get a Warning; they are kept in the model
	LargeMatrixValue float64 // entries with |value| above this are an Error
	AllowInfiniteCost bool
}

// DefaultOptions returns the magnitude-band defaults of spec.md §6.
func DefaultOptions() Options {
	return Options{SmallMatrixValue: 1e-9, LargeMatrixValue: 1e15, AllowInfiniteCost: false}
}

// AssessModel performs the structural and numerical validation of
// spec.md §4.1: dimension agreement, finite-cost policy, bound ordering,
// coefficient magnitude-band checks and duplicate-index detection within
// columns. It returns the worst Outcome found and the list of Findings
// that produced it; it never mutates model.
func AssessModel(m *Model, opts Options) (Outcome, []Finding) {
	out := Ok
	var findings []Finding
	report := func(kind ErrorKind, sev Outcome, msg string) {
		out = worse(out, sev)
		findings = append(findings, Finding{Kind: kind, Severity: sev, Message: msg})
	}

	if len(m.ColCost) != m.NumCol || len(m.ColLower) != m.NumCol || len(m.ColUpper) != m.NumCol {
		report(DimensionMismatch, Error, "column array length does not match NumCol")
		return out, findings
	}
	if len(m.RowLower) != m.NumRow || len(m.RowUpper) != m.NumRow {
		report(DimensionMismatch, Error, "row array length does not match NumRow")
		return out, findings
	}
	if len(m.AStart) != m.NumCol+1 {
		report(DimensionMismatch, Error, "a_start length does not match NumCol+1")
		return out, findings
	}
	if m.Integrality != nil && len(m.Integrality) != m.NumCol {
		report(DimensionMismatch, Error, "integrality array length does not match NumCol")
		return out, findings
	}

	if m.AStart[0] != 0 {
		report(DimensionMismatch, Error, "a_start[0] must be 0")
	}
	for j := 0; j < m.NumCol; j++ {
		if m.AStart[j+1] < m.AStart[j] {
			report(DimensionMismatch, Error, "a_start is not non-decreasing")
			return out, findings
		}
	}
	if m.AStart[m.NumCol] != len(m.AIndex) || len(m.AIndex) != len(m.AValue) {
		report(DimensionMismatch, Error, "a_index/a_value length does not match a_start[NumCol]")
		return out, findings
	}

	for j := 0; j < m.NumCol; j++ {
		seen := make(map[int]struct{}, m.AStart[j+1]-m.AStart[j])
		for k := m.AStart[j]; k < m.AStart[j+1]; k++ {
			r := m.AIndex[k]
			if r < 0 || r >= m.NumRow {
				report(DimensionMismatch, Error, "a_index out of row range")
				continue
			}
			if _, dup := seen[r]; dup {
				report(DimensionMismatch, Error, "duplicate row index within a column")
				continue
			}
			seen[r] = struct{}{}
			v := m.AValue[k]
			av := math.Abs(v)
			if av == 0 {
				continue
			}
			if av < opts.SmallMatrixValue {
				report(LargeCoefficient, Warning, "matrix entry magnitude below small_matrix_value")
			} else if av > opts.LargeMatrixValue {
				report(LargeCoefficient, Error, "matrix entry magnitude above large_matrix_value")
			}
		}
	}

	for j := 0; j < m.NumCol; j++ {
		lo, up := m.ColLower[j], m.ColUpper[j]
		if lo > up {
			report(BadBound, Warning, "column lower bound exceeds upper bound, model is infeasible")
		}
		if lo >= FreeBoundThreshold && up < FreeBoundThreshold {
			report(BadBound, Error, "column lower bound is +infinity while upper bound is finite")
		}
		c := m.ColCost[j]
		if math.Abs(c) >= Infinity && !opts.AllowInfiniteCost {
			report(InfiniteCost, Error, "infinite cost disallowed by policy")
		}
		if m.Integrality != nil && m.Integrality[j] == Integer && lo == up && lo != math.Trunc(lo) {
			report(BadBound, Error, "integer column fixed at a non-integer value")
		}
	}
	for i := 0; i < m.NumRow; i++ {
		if m.RowLower[i] > m.RowUpper[i] {
			report(BadBound, Warning, "row lower bound exceeds upper bound, model is infeasible")
		}
	}

	if m.Hessian != nil {
		hOut, hFindings := AssessHessian(m.Hessian, m.Sense)
		out = worse(out, hOut)
		findings = append(findings, hFindings...)
	}

	return out, findings
}
