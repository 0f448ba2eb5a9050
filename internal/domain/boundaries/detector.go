// Package boundaries derives natural cut points from a transcript and
// snaps clip edges onto them. Cutting mid-sentence reads as an editing
// mistake; the index marks the places a careful editor would cut.
package boundaries

import (
	"sort"
	"strings"

	"github.com/iamwhitegod/arena/internal/types"
)

// DefaultMinPauseSec is the smallest inter-segment silence treated as a
// natural pause.
const DefaultMinPauseSec = 0.5

const (
	sentenceEndConfidence = 0.9
	pauseConfidence       = 0.7
	transitionConfidence  = 0.85
)

// transitionStarters are words that commonly open a new thought. A
// sentence ending followed by one of these marks a topic transition.
var transitionStarters = map[string]bool{
	"so": true, "now": true, "but": true, "however": true,
	"because": true, "and": true, "first": true, "second": true,
	"next": true, "finally": true, "also": true, "then": true,
	"therefore": true, "meanwhile": true, "additionally": true,
}

// Index holds the detected boundaries of one transcript, time-sorted, and
// answers nearest-boundary queries.
type Index struct {
	boundaries []types.Boundary
}

// BuildIndex scans ordered segments and emits a boundary at every sentence
// ending, every inter-segment pause of at least minPause seconds, and
// every topic transition. Boundaries sharing a timestamp collapse to the
// highest-confidence one. A minPause of zero or below uses the default.
func BuildIndex(segs []types.Segment, minPause float64) *Index {
	if minPause <= 0 {
		minPause = DefaultMinPauseSec
	}

	var found []types.Boundary
	for i, seg := range segs {
		text := strings.TrimSpace(seg.Text)
		if hasSentenceEnding(text) {
			found = append(found, types.Boundary{
				Time:       seg.End,
				Type:       types.BoundarySentenceEnd,
				Confidence: sentenceEndConfidence,
			})
		}
		if i+1 < len(segs) {
			next := segs[i+1]
			if next.Start-seg.End >= minPause {
				found = append(found, types.Boundary{
					Time:       seg.End,
					Type:       types.BoundaryPause,
					Confidence: pauseConfidence,
				})
			}
			if hasSentenceEnding(text) && startsWithTransition(next.Text) {
				found = append(found, types.Boundary{
					Time:       next.Start,
					Type:       types.BoundaryTopicTransition,
					Confidence: transitionConfidence,
				})
			}
		}
	}

	byTime := make(map[float64]types.Boundary, len(found))
	for _, b := range found {
		if prev, ok := byTime[b.Time]; !ok || b.Confidence > prev.Confidence {
			byTime[b.Time] = b
		}
	}
	out := make([]types.Boundary, 0, len(byTime))
	for _, b := range byTime {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return &Index{boundaries: out}
}

// Boundaries returns the time-sorted boundary list.
func (ix *Index) Boundaries() []types.Boundary {
	return ix.boundaries
}

func (ix *Index) Len() int { return len(ix.boundaries) }

// NearestBefore finds the closest boundary at or before t, no farther than
// maxDistance back.
func (ix *Index) NearestBefore(t, maxDistance float64) (types.Boundary, bool) {
	// First boundary strictly after t; the candidate precedes it.
	i := sort.Search(len(ix.boundaries), func(i int) bool {
		return ix.boundaries[i].Time > t
	})
	if i == 0 {
		return types.Boundary{}, false
	}
	b := ix.boundaries[i-1]
	if t-b.Time > maxDistance {
		return types.Boundary{}, false
	}
	return b, true
}

// NearestAfter finds the closest boundary at or after t, no farther than
// maxDistance forward.
func (ix *Index) NearestAfter(t, maxDistance float64) (types.Boundary, bool) {
	i := sort.Search(len(ix.boundaries), func(i int) bool {
		return ix.boundaries[i].Time >= t
	})
	if i == len(ix.boundaries) {
		return types.Boundary{}, false
	}
	b := ix.boundaries[i]
	if b.Time-t > maxDistance {
		return types.Boundary{}, false
	}
	return b, true
}

func hasSentenceEnding(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, end := range []string{".", "!", "?", "..."} {
		if strings.HasSuffix(text, end) {
			return true
		}
	}
	// Quote-wrapped terminal: `He said "stop."` style endings.
	if strings.HasSuffix(text, `"`) || strings.HasSuffix(text, "'") {
		if len(text) > 1 {
			switch text[len(text)-2] {
			case '.', '!', '?':
				return true
			}
		}
	}
	return false
}

func startsWithTransition(text string) bool {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], ".,!?;:")
	return transitionStarters[first]
}
