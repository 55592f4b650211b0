package quantile

import (
	"math"
	"sort"
)

// Value returns the q-th quantile of scores using linear interpolation
// between order statistics, so q=0 is the minimum, q=1 the maximum and
// q=0.5 the median. scores must be non-empty and q in [0, 1].
func Value(scores []float64, q float64) float64 {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Cutoff derives the scalar cutoff for one filter axis. A nil quantile
// means the axis is disabled; an empty score distribution (a pattern with
// no candidate seqlets) also yields no cutoff. Both cases return nil.
func Cutoff(scores []float64, q *float64) *float64 {
	if q == nil || len(scores) == 0 {
		return nil
	}
	v := Value(scores, *q)
	return &v
}

// Passes reports whether a score survives a cutoff. A nil cutoff admits
// everything; otherwise the boundary is inclusive (score == cutoff passes).
func Passes(score float64, cutoff *float64) bool {
	return cutoff == nil || score >= *cutoff
}
