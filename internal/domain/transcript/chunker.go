package transcript

import "github.com/iamwhitegod/arena/internal/types"

// DefaultOverlapRatio is the fraction of a closed chunk's segments carried
// forward into the next chunk for cross-chunk continuity.
const DefaultOverlapRatio = 0.10

// Chunk splits ordered segments into windows whose estimated token total
// stays within maxTokens, carrying the trailing overlapRatio fraction of
// each closed chunk (by segment count) into the next one. Every chunk is
// non-empty, and only the seed overlap may push a chunk past the budget.
func Chunk(segs []types.Segment, maxTokens int, overlapRatio float64) [][]types.Segment {
	if len(segs) == 0 || maxTokens <= 0 {
		return nil
	}
	if overlapRatio < 0 {
		overlapRatio = 0
	}

	var chunks [][]types.Segment
	var current []types.Segment
	currentTokens := 0

	for _, seg := range segs {
		tokens := segmentTokens(seg)
		if currentTokens+tokens > maxTokens && len(current) > 0 {
			chunks = append(chunks, current)

			overlap := int(float64(len(current)) * overlapRatio)
			var carried []types.Segment
			if overlap > 0 {
				carried = append(carried, current[len(current)-overlap:]...)
			}
			current = carried
			currentTokens = 0
			for _, c := range current {
				currentTokens += segmentTokens(c)
			}
		}
		current = append(current, seg)
		currentTokens += tokens
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
