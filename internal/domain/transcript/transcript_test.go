package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwhitegod/arena/internal/types"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sec  float64
		want string
	}{
		{0, "00:00"},
		{59.9, "00:59"},
		{60, "01:00"},
		{125.4, "02:05"},
		{3600, "60:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.sec), "sec=%v", tt.sec)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 4, Text: "hello there"},
		{Start: 4, End: 8, Text: "   "},
		{Start: 65, End: 70, Text: "second minute"},
	}
	got := Format(segs)
	want := "[00:00] hello there\n[01:05] second minute"
	assert.Equal(t, want, got)
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 10, Text: "one"},
		{Start: 10, End: 20, Text: "two"},
		{Start: 20, End: 30, Text: "three"},
	}

	tests := []struct {
		name       string
		start, end float64
		want       string
	}{
		{"full range", 0, 30, "one two three"},
		{"middle only", 12, 18, "two"},
		{"overlapping edges", 5, 25, "one two three"},
		{"outside", 40, 50, ""},
		{"touching boundary excluded", 10, 20, "two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(segs, tt.start, tt.end))
		})
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	segs := []types.Segment{
		{Start: 0, End: 10, Text: "a"},
		{Start: 10, End: 20, Text: "b"},
		{Start: 20, End: 30, Text: "c"},
	}

	got := Window(segs, 5, 25)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Text)

	got = Window(segs, 0, 30)
	assert.Len(t, got, 3)

	assert.Empty(t, Window(segs, 50, 60))
}

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 10, EstimateTokens(strings.Repeat("x", 40)))
	assert.Equal(t, 10, EstimateTokens(strings.Repeat("x", 43)))
}
