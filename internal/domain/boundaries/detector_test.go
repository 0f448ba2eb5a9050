package boundaries

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwhitegod/arena/internal/types"
)

func TestBuildIndex_SentenceEndings(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 5, Text: "This ends with a period."},
		{Start: 5, End: 10, Text: "no terminal punctuation"},
		{Start: 10, End: 15, Text: "Really?"},
		{Start: 15, End: 20, Text: "Wow!"},
		{Start: 20, End: 25, Text: "Trailing off..."},
		{Start: 25, End: 30, Text: `He said "stop."`},
	}
	idx := BuildIndex(segs, 0)

	var times []float64
	for _, b := range idx.Boundaries() {
		require.Equal(t, types.BoundarySentenceEnd, b.Type)
		assert.Equal(t, 0.9, b.Confidence)
		times = append(times, b.Time)
	}
	assert.Equal(t, []float64{5, 15, 20, 25, 30}, times)
}

func TestBuildIndex_PausesAndTransitions(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 5, Text: "First thought ends here."},
		// 1.2s silence before the next segment, which opens with a
		// transition word.
		{Start: 6.2, End: 10, Text: "So the next thought begins"},
		{Start: 10.1, End: 15, Text: "and keeps going"},
	}
	idx := BuildIndex(segs, 0.5)

	byType := map[types.BoundaryType]types.Boundary{}
	for _, b := range idx.Boundaries() {
		byType[b.Type] = b
	}

	// The sentence end and the pause share t=5; the sentence end's higher
	// confidence wins the collision.
	se, ok := byType[types.BoundarySentenceEnd]
	require.True(t, ok)
	assert.Equal(t, 5.0, se.Time)
	assert.NotContains(t, byType, types.BoundaryPause)

	tt, ok := byType[types.BoundaryTopicTransition]
	require.True(t, ok)
	assert.Equal(t, 6.2, tt.Time)
	assert.Equal(t, 0.85, tt.Confidence)
}

func TestBuildIndex_SortedByTime(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 4, Text: "One."},
		{Start: 4, End: 9, Text: "Two."},
		{Start: 10, End: 14, Text: "Three."},
	}
	idx := BuildIndex(segs, 0.5)

	bs := idx.Boundaries()
	require.NotEmpty(t, bs)
	assert.True(t, sort.SliceIsSorted(bs, func(i, j int) bool { return bs[i].Time < bs[j].Time }))
}

func TestNearestQueries(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 90, End: 98, Text: "Setup sentence ends."},
		{Start: 98, End: 150, Text: "long middle with nothing to cut on"},
		{Start: 235, End: 240, Text: "Far away ending."},
	}
	idx := BuildIndex(segs, 0)

	b, ok := idx.NearestBefore(100, 10)
	require.True(t, ok)
	assert.Equal(t, 98.0, b.Time)

	_, ok = idx.NearestBefore(100, 1)
	assert.False(t, ok, "outside the distance budget")

	_, ok = idx.NearestBefore(50, 100)
	assert.False(t, ok, "nothing earlier exists")

	b, ok = idx.NearestAfter(160, 100)
	require.True(t, ok)
	assert.Equal(t, 240.0, b.Time)

	_, ok = idx.NearestAfter(160, 10)
	assert.False(t, ok)

	// A query sitting exactly on a boundary finds it in both directions.
	b, ok = idx.NearestBefore(98, 0)
	require.True(t, ok)
	assert.Equal(t, 98.0, b.Time)
	b, ok = idx.NearestAfter(98, 0)
	require.True(t, ok)
	assert.Equal(t, 98.0, b.Time)
}
