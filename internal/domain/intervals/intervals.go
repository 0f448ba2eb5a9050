// Package intervals provides the repo's standard time-interval overlap
// math, used for deduplication and overlap-based selection throughout the
// pipeline.
package intervals

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && bStart < aEnd
}

// OverlapRatio returns overlap duration divided by the shorter interval's
// duration, in [0, 1]. Zero when the intervals are disjoint or degenerate.
func OverlapRatio(aStart, aEnd, bStart, bEnd float64) float64 {
	start := max(aStart, bStart)
	end := min(aEnd, bEnd)
	if start >= end {
		return 0
	}
	minDur := min(aEnd-aStart, bEnd-bStart)
	if minDur <= 0 {
		return 0
	}
	return (end - start) / minDur
}
