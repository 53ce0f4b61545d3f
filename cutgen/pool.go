package cutgen

import (
	"math"
	"sort"
)

// Pool deduplicates generated cuts by a fingerprint of their sorted
// column indices and (integer-scaled, if any) coefficients, per spec.md
// §4.6 step 6.
type Pool struct {
	seen map[string]bool
	cuts []Cut
}

// NewPool returns an empty cut pool.
func NewPool() *Pool {
	return &Pool{seen: make(map[string]bool)}
}

// Insert adds cut to the pool unless an equivalent cut (same fingerprint)
// is already present, returning whether it was actually inserted.
func (p *Pool) Insert(cut *Cut) bool {
	fp := fingerprint(cut)
	if p.seen[fp] {
		return false
	}
	p.seen[fp] = true
	p.cuts = append(p.cuts, *cut)
	return true
}

// Cuts returns every cut currently held by the pool.
func (p *Pool) Cuts() []Cut { return p.cuts }

// Len returns the number of distinct cuts in the pool.
func (p *Pool) Len() int { return len(p.cuts) }

// fingerprint hashes a cut's sorted (index, rounded coefficient) pairs
// plus its rhs, so two cuts differing only in row construction order
// (or by floating noise below a coarse rounding grid) dedupe together.
func fingerprint(cut *Cut) string {
	type entry struct {
		idx  int
		coef float64
	}
	entries := make([]entry, len(cut.Idx))
	for k, idx := range cut.Idx {
		entries[k] = entry{idx: idx, coef: roundGrid(cut.Coef[k])}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	var b []byte
	for _, e := range entries {
		b = appendFloatKey(b, float64(e.idx))
		b = appendFloatKey(b, e.coef)
	}
	b = appendFloatKey(b, roundGrid(cut.RHS))
	return string(b)
}

const fingerprintGrid = 1e-9

func roundGrid(v float64) float64 {
	return math.Round(v/fingerprintGrid) * fingerprintGrid
}

func appendFloatKey(b []byte, v float64) []byte {
	bits := math.Float64bits(v)
	for i := 7; i >= 0; i-- {
		b = append(b, byte(bits>>(8*uint(i))))
	}
	return b
}
