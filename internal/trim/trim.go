package trim

import "math"

// Span is a half-open [Start, End) range of track positions.
type Span struct {
	Start int
	End   int
}

// Len returns the number of positions in the span.
func (s Span) Len() int { return s.End - s.Start }

// ToSupport finds the minimal contiguous span of track positions whose
// contribution magnitude meets or exceeds threshold (inclusive boundary),
// then expands it by padding positions on each side, clipped to the track.
// The second return value is false when no position qualifies, in which
// case the seqlet should be excluded.
//
// One forward scan finds the first qualifying position, one backward scan
// the last. No backtracking.
func ToSupport(track []float64, threshold float64, padding int) (Span, bool) {
	first := -1
	for i, v := range track {
		if math.Abs(v) >= threshold {
			first = i
			break
		}
	}
	if first < 0 {
		return Span{}, false
	}
	last := first
	for i := len(track) - 1; i > first; i-- {
		if math.Abs(track[i]) >= threshold {
			last = i
			break
		}
	}

	start := first - padding
	if start < 0 {
		start = 0
	}
	end := last + padding + 1
	if end > len(track) {
		end = len(track)
	}
	return Span{Start: start, End: end}, true
}
