package cutgen

import "sort"

// cover is the set of (preprocessed-space) positions chosen by the
// auxiliary knapsack greedy, with the knapsack excess lambda = sum(a) -
// b > 0 spec.md §4.6 step 2 requires.
type cover struct {
	pos    []int // positions into p.a/p.idx, integer-kind only
	lambda float64
}

// identifyCover greedily selects integer-kind variables by decreasing
// x*_j * a_j until the accumulated coefficient sum exceeds b, the
// knapsack relaxation spec.md §4.6 step 2 describes. Returns nil if no
// cover exists (e.g. every integer variable already fits within b).
func identifyCover(p *preprocessed, star []float64) (*cover, float64) {
	type cand struct {
		pos   int
		score float64
	}
	var cands []cand
	for k, kind := range p.kind {
		if kind == Continuous {
			continue
		}
		j := p.idx[k]
		s := star[j]
		if p.complemented[k] {
			s = 1 - s // complemented columns' star value isn't meaningful here beyond ordering; approximate
		}
		cands = append(cands, cand{pos: k, score: s * p.a[k]})
	}
	if len(cands) == 0 {
		return nil, 0
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	var sum float64
	var picked []int
	for _, c := range cands {
		sum += p.a[c.pos]
		picked = append(picked, c.pos)
		if sum > p.b {
			lambda := sum - p.b
			return &cover{pos: picked, lambda: lambda}, lambda
		}
	}
	return nil, 0
}
