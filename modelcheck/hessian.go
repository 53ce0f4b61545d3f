package modelcheck

import "sort"

// HessianFormat tags whether a Hessian's CSC arrays describe the full
// square matrix or only its strict upper triangle (row-index >=
// column-index per column, diagonal first), per spec.md §3.
type HessianFormat int8

const (
	Square HessianFormat = iota
	TriangularUpper
)

// Hessian is the optional quadratic term of spec.md §3: a dim x dim
// symmetric (when Square) matrix in CSC layout.
type Hessian struct {
	Dim      int
	Format   HessianFormat
	ColStart []int
	RowIndex []int
	Value    []float64
}

// Col returns the row indices and values of column j.
func (h *Hessian) Col(j int) (rows []int, vals []float64) {
	s, e := h.ColStart[j], h.ColStart[j+1]
	return h.RowIndex[s:e], h.Value[s:e]
}

// AssessHessian validates a Hessian's structure and, for a minimization
// (resp. maximization) sense, checks that diagonal entries are
// non-negative (resp. non-positive) as the positive-(semi)definiteness
// assumption of spec.md §3 requires; a violation is reported as a
// HessianIndefinite Warning rather than corrected, exactly as spec.md
// says ("violation is reported but not corrected").
func AssessHessian(h *Hessian, sense Sense) (Outcome, []Finding) {
	out := Ok
	var findings []Finding
	report := func(kind ErrorKind, sev Outcome, msg string) {
		out = worse(out, sev)
		findings = append(findings, Finding{Kind: kind, Severity: sev, Message: msg})
	}

	if len(h.ColStart) != h.Dim+1 {
		report(DimensionMismatch, Error, "hessian a_start length does not match Dim+1")
		return out, findings
	}
	if h.ColStart[0] != 0 {
		report(DimensionMismatch, Error, "hessian a_start[0] must be 0")
	}
	for j := 0; j < h.Dim; j++ {
		if h.ColStart[j+1] < h.ColStart[j] {
			report(DimensionMismatch, Error, "hessian a_start is not non-decreasing")
			return out, findings
		}
	}
	if h.ColStart[h.Dim] != len(h.RowIndex) || len(h.RowIndex) != len(h.Value) {
		report(DimensionMismatch, Error, "hessian a_index/a_value length mismatch")
		return out, findings
	}

	for j := 0; j < h.Dim; j++ {
		rows, vals := h.Col(j)
		if h.Format == TriangularUpper {
			if len(rows) > 0 && rows[0] != j {
				report(HessianIndefinite, Warning, "triangular column missing explicit diagonal entry")
			}
			for _, r := range rows {
				if r < j {
					report(DimensionMismatch, Error, "triangular hessian column has row index below column index")
				}
			}
		}
		for k, r := range rows {
			if r != j {
				continue
			}
			diag := vals[k]
			if sense == Minimize && diag < 0 {
				report(HessianIndefinite, Warning, "negative diagonal entry for a minimization hessian")
			}
			if sense == Maximize && diag > 0 {
				report(HessianIndefinite, Warning, "positive diagonal entry for a maximization hessian")
			}
		}
	}

	if h.Format == Square {
		_, symFindings := symmetrize(h, false)
		for _, f := range symFindings {
			if f.Kind == HessianAsymmetric {
				out = worse(out, f.Severity)
				findings = append(findings, f)
			}
		}
	}
	return out, findings
}

type pairKey struct{ row, col int } // row >= col

// ExtractTriangularHessian converts a square Hessian to the canonical
// strict-upper-triangular form of spec.md §4.1: for each unordered pair
// of off-diagonal positions {i,j}, i != j, the two square entries Q[i][j]
// and Q[j][i] (zero if absent) are summed and halved -- which is
// simultaneously "averaging when both exist" and "halving when only one
// does", since sum/2 reduces to exactly those two cases -- and stored at
// the triangular position (row=max(i,j), col=min(i,j)). Diagonal entries
// copy through unchanged. The result is column-sorted, duplicate-free,
// with the diagonal entry first in every column (row==col is always the
// smallest row satisfying row>=col, so ascending-row order already
// achieves this).
func ExtractTriangularHessian(q *Hessian) (*Hessian, Outcome, []Finding) {
	if q.Format == TriangularUpper {
		return q, Ok, nil
	}
	tri, findings := symmetrize(q, true)
	out := Ok
	for _, f := range findings {
		out = worse(out, f.Severity)
	}
	return tri, out, findings
}

// symmetrize does the combining work for both AssessHessian's asymmetry
// check (build=false, no result needed) and ExtractTriangularHessian
// (build=true).
func symmetrize(q *Hessian, build bool) (*Hessian, []Finding) {
	diag := make(map[int]float64, q.Dim)
	sum := make(map[pairKey]float64)
	count := make(map[pairKey]int)
	lastSeen := make(map[pairKey]float64)
	var findings []Finding

	for col := 0; col < q.Dim; col++ {
		rows, vals := q.Col(col)
		for k, row := range rows {
			v := vals[k]
			if row == col {
				diag[row] += v
				continue
			}
			key := pairKey{row: row, col: col}
			if row < col {
				key = pairKey{row: col, col: row}
			}
			if prev, ok := lastSeen[key]; ok && prev != v {
				findings = append(findings, Finding{
					Kind:     HessianAsymmetric,
					Severity: Warning,
					Message:  "off-diagonal mirror entries differ; retaining their sum/2",
				})
			}
			lastSeen[key] = v
			sum[key] += v
			count[key]++
		}
	}

	if !build {
		return nil, findings
	}

	type colEntry struct {
		row int
		val float64
	}
	perCol := make([][]colEntry, q.Dim)
	for r, v := range diag {
		perCol[r] = append(perCol[r], colEntry{row: r, val: v})
	}
	for key, s := range sum {
		_ = count[key]
		perCol[key.col] = append(perCol[key.col], colEntry{row: key.row, val: s / 2})
	}
	for c := range perCol {
		sort.Slice(perCol[c], func(i, j int) bool { return perCol[c][i].row < perCol[c][j].row })
	}

	start := make([]int, q.Dim+1)
	var rowIdx []int
	var val []float64
	for c := 0; c < q.Dim; c++ {
		start[c] = len(rowIdx)
		for _, e := range perCol[c] {
			rowIdx = append(rowIdx, e.row)
			val = append(val, e.val)
		}
	}
	start[q.Dim] = len(rowIdx)

	return &Hessian{Dim: q.Dim, Format: TriangularUpper, ColStart: start, RowIndex: rowIdx, Value: val}, findings
}
