package sparsemat

import "gonum.org/v1/gonum/floats"

// CSC is a compressed-sparse-column matrix, the wire format spec.md
// mandates for the constraint matrix and the Hessian: ColStart has
// NumCol+1 entries with ColStart[0]==0 and ColStart non-decreasing;
// RowIndex[ColStart[j]:ColStart[j+1]] lists the (unique, unordered) row
// indices of column j's nonzeros, and Value holds the matching values.
type CSC struct {
	NumRow, NumCol int
	ColStart       []int
	RowIndex       []int
	Value          []float64
}

// NewCSC returns a CSC matrix with the given dimensions and backing
// arrays. It does not validate structural invariants; use modelcheck for
// that.
func NewCSC(numRow, numCol int, colStart, rowIndex []int, value []float64) *CSC {
	return &CSC{NumRow: numRow, NumCol: numCol, ColStart: colStart, RowIndex: rowIndex, Value: value}
}

// Dims returns the matrix dimensions, matching gonum's mat.Matrix shape.
func (m *CSC) Dims() (r, c int) { return m.NumRow, m.NumCol }

// Col returns the row indices and values of column j.
func (m *CSC) Col(j int) (rows []int, vals []float64) {
	s, e := m.ColStart[j], m.ColStart[j+1]
	return m.RowIndex[s:e], m.Value[s:e]
}

// NNZ returns the total number of stored entries.
func (m *CSC) NNZ() int { return len(m.Value) }

// ColNNZ returns the number of stored entries in column j.
func (m *CSC) ColNNZ(j int) int { return m.ColStart[j+1] - m.ColStart[j] }

// At performs a linear scan of column j for row i; it is O(nnz in column)
// and intended for validation/tests, not for the hot simplex path.
func (m *CSC) At(i, j int) float64 {
	rows, vals := m.Col(j)
	for k, r := range rows {
		if r == i {
			return vals[k]
		}
	}
	return 0
}

// ScatterCol scatters column j of the matrix into the dense vector dst
// scaled by alpha, i.e. dst += alpha * A[:,j].
func (m *CSC) ScatterCol(j int, alpha float64, dst *Vector) {
	if alpha == 0 {
		return
	}
	rows, vals := m.Col(j)
	for k, r := range rows {
		dst.Add(r, alpha*vals[k])
	}
}

// ColDot returns the dot product of column j with the dense vector y,
// i.e. (Aᵀy)[j]. PRICE computes this for every nonbasic column to form
// the pivotal row.
func (m *CSC) ColDot(j int, y []float64) float64 {
	var sum float64
	rows, vals := m.Col(j)
	for k, r := range rows {
		sum += vals[k] * y[r]
	}
	return sum
}

// ColNorm2 returns the Euclidean norm of column j.
func (m *CSC) ColNorm2(j int) float64 {
	_, vals := m.Col(j)
	return floats.Norm(vals, 2)
}

// ToCSR returns the row-major transpose view of the matrix, used where a
// row-indexed scan is cheaper (e.g. row-activity propagation in domain).
func (m *CSC) ToCSR() *CSR {
	rowCount := make([]int, m.NumRow+1)
	for _, r := range m.RowIndex {
		rowCount[r+1]++
	}
	for i := 0; i < m.NumRow; i++ {
		rowCount[i+1] += rowCount[i]
	}
	colIndex := make([]int, len(m.RowIndex))
	value := make([]float64, len(m.Value))
	cursor := make([]int, m.NumRow)
	copy(cursor, rowCount[:m.NumRow])
	for j := 0; j < m.NumCol; j++ {
		rows, vals := m.Col(j)
		for k, r := range rows {
			pos := cursor[r]
			colIndex[pos] = j
			value[pos] = vals[k]
			cursor[r]++
		}
	}
	return &CSR{NumRow: m.NumRow, NumCol: m.NumCol, RowStart: rowCount, ColIndex: colIndex, Value: value}
}

// Partition splits the column range [0,NumCol) into p near-equal-nnz
// contiguous slices, used by the SIP slice-parallel variant of the dual
// simplex engine so that each worker goroutine owns a disjoint, roughly
// equal-cost share of PRICE/CHUZC.
func (m *CSC) Partition(p int) []ColRange {
	if p < 1 {
		p = 1
	}
	total := m.NNZ()
	target := total / p
	if target == 0 {
		target = 1
	}
	ranges := make([]ColRange, 0, p)
	start := 0
	acc := 0
	for j := 0; j < m.NumCol; j++ {
		acc += m.ColNNZ(j)
		remaining := p - len(ranges) - 1
		if acc >= target && remaining > 0 {
			ranges = append(ranges, ColRange{Start: start, End: j + 1})
			start = j + 1
			acc = 0
		}
	}
	ranges = append(ranges, ColRange{Start: start, End: m.NumCol})
	return ranges
}

// ColRange is a half-open [Start,End) range of column indices, one slice
// of a Partition.
type ColRange struct {
	Start, End int
}

// CSR is the row-major compressed counterpart of CSC, with the same
// layout convention applied to rows instead of columns.
type CSR struct {
	NumRow, NumCol int
	RowStart       []int
	ColIndex       []int
	Value          []float64
}

// Dims returns the matrix dimensions.
func (m *CSR) Dims() (r, c int) { return m.NumRow, m.NumCol }

// Row returns the column indices and values of row i.
func (m *CSR) Row(i int) (cols []int, vals []float64) {
	s, e := m.RowStart[i], m.RowStart[i+1]
	return m.ColIndex[s:e], m.Value[s:e]
}

// RowActivityBounds returns the implied [lo,hi] of the row's linear
// combination given current variable bounds, using interval arithmetic;
// this is the primitive domain's propagation engine uses to derive
// implied column bounds from a row.
func (m *CSR) RowActivityBounds(i int, colLo, colUp []float64) (lo, hi float64) {
	cols, vals := m.Row(i)
	for k, j := range cols {
		a := vals[k]
		l, u := colLo[j], colUp[j]
		if a >= 0 {
			lo += a * l
			hi += a * u
		} else {
			lo += a * u
			hi += a * l
		}
	}
	return lo, hi
}
