// Copyright ©2026 The dsmip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"math"

	"github.com/dsmip/dsmip/sparsemat"
)

// DetectCliques scans a's rows for the simplest set-packing shape: a
// uniform positive coefficient c across every entry, a binary column
// for each, and a row upper bound exactly c (rowLo left unconstrained,
// i.e. <= -infinityBound), which is algebraically sum(x_j) <= 1. It
// does not attempt the transitive/graph-based clique merging
// original_source's HighsCliqueTable builds on top of this (combining
// cliques that share members into larger ones); each row detected here
// becomes exactly one Clique.
func DetectCliques(a *sparsemat.CSR, rowLower, rowUpper []float64, lo, hi []float64, integer []bool) []Clique {
	var cliques []Clique
	numRow, _ := a.Dims()
	for i := 0; i < numRow; i++ {
		cols, vals := a.Row(i)
		if len(cols) < 2 {
			continue
		}
		if rowLower[i] > -infinityBound {
			continue
		}
		c := vals[0]
		if c <= 0 {
			continue
		}
		if math.Abs(rowUpper[i]-c) > 1e-9 {
			continue
		}
		ok := true
		for k, j := range cols {
			if vals[k] != c || lo[j] != 0 || hi[j] != 1 || !integer[j] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		cliques = append(cliques, Clique{Vars: append([]int(nil), cols...)})
	}
	return cliques
}
