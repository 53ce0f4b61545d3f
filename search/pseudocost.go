// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package search

// PseudocostTable accumulates per-unit-fraction objective gains
// observed from past branches on each integer column, per spec.md
// §4.7's score(j) = f_j*P⁻_j + (1-f_j)*P⁺_j.
type PseudocostTable struct {
	down, downCount []float64 // sum of per-unit gains / sample count, down branches
	up, upCount     []float64 // same, up branches
}

// NewPseudocostTable returns a table for numCol columns, seeded with
// one nominal sample of the average gain a caller estimates from the
// root relaxation (passed as initDown/initUp; pass 0 to leave a column
// fully unreliable until its first real sample).
func NewPseudocostTable(numCol int, initDown, initUp float64) *PseudocostTable {
	t := &PseudocostTable{
		down:      make([]float64, numCol),
		downCount: make([]float64, numCol),
		up:        make([]float64, numCol),
		upCount:   make([]float64, numCol),
	}
	for j := range t.down {
		if initDown > 0 {
			t.down[j], t.downCount[j] = initDown, 1
		}
		if initUp > 0 {
			t.up[j], t.upCount[j] = initUp, 1
		}
	}
	return t
}

// Reliable reports whether column j has at least minSamples observed
// gains on both branch directions, per spec.md §4.7's "unreliable"
// definition.
func (t *PseudocostTable) Reliable(j int, minSamples int) bool {
	return t.downCount[j] >= float64(minSamples) && t.upCount[j] >= float64(minSamples)
}

// PDown/PUp return the current per-unit-fraction pseudocost estimate
// for column j, zero if no sample has been recorded yet.
func (t *PseudocostTable) PDown(j int) float64 {
	if t.downCount[j] == 0 {
		return 0
	}
	return t.down[j] / t.downCount[j]
}

func (t *PseudocostTable) PUp(j int) float64 {
	if t.upCount[j] == 0 {
		return 0
	}
	return t.up[j] / t.upCount[j]
}

// Update folds in one observed branch: column j's LP value had
// fractional part f before branching, and the child's LP objective
// degraded by gain (>= 0, parentObj to childObj for a minimization)
// relative to the parent. up selects which direction's running
// average to update.
func (t *PseudocostTable) Update(j int, f, gain float64, up bool) {
	if gain < 0 {
		gain = 0
	}
	if up {
		denom := 1 - f
		if denom <= 0 {
			return
		}
		t.up[j] += gain / denom
		t.upCount[j]++
	} else {
		if f <= 0 {
			return
		}
		t.down[j] += gain / f
		t.downCount[j]++
	}
}

// Score implements spec.md §4.7's branch candidate scoring:
// score(j) = f_j*P⁻_j + (1-f_j)*P⁺_j, the weighted estimate of the
// objective degradation branching on j would cause in either
// direction, used to pick the candidate that will tighten the bound
// the most.
func (t *PseudocostTable) Score(j int, x float64) float64 {
	f := x - floor(x)
	return f*t.PDown(j) + (1-f)*t.PUp(j)
}

func floor(x float64) float64 {
	i := int64(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return float64(i)
}

// BestScored returns the integer column with the largest pseudocost
// score among those in candidates, or -1 if candidates is empty.
func (t *PseudocostTable) BestScored(candidates []int, x []float64) int {
	best, bestScore := -1, -1.0
	for _, j := range candidates {
		s := t.Score(j, x[j])
		if s > bestScore {
			best, bestScore = j, s
		}
	}
	return best
}
