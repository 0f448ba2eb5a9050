package editorial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

func testValidatedClip(start, end, interest, standalone float64) types.ValidatedClip {
	th := testThought(start, end)
	th.Moment.InterestScore = interest
	return types.ValidatedClip{
		RefinedStart: start, RefinedEnd: end,
		StandaloneScore: standalone,
		Verdict:         types.VerdictPass,
		Thought:         th,
	}
}

func TestPackageAll_ParsesMetadata(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		return fmt.Sprintf(`{
			"title": %q,
			"description": "Hook. Context. Takeaway.",
			"hashtags": ["#a", "#b", "#c", "#d", "#e", "#f", "#g"],
			"thumbnail_time": 500.0
		}`, strings.Repeat("T", 80)), nil
	}}
	p := NewPackager(llm, nil, PackagerConfig{})

	clips := p.PackageAll(context.Background(), []types.ValidatedClip{testValidatedClip(100, 160, 0.8, 0.9)}, testTranscript(30).Segments)
	require.Len(t, clips, 1)

	c := clips[0]
	assert.Equal(t, TitleMaxRunes, utf8.RuneCountInString(c.Title))
	assert.Len(t, c.Hashtags, MaxHashtags)
	assert.Equal(t, 160.0, c.ThumbnailTime, "thumbnail clamps into the clip")
	assert.Equal(t, "Hook. Context. Takeaway.", c.Description)
}

func TestPackageAll_FewerHashtagsPassThrough(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		return `{"title": "t", "description": "d", "hashtags": ["#one", "#two"], "thumbnail_time": 120}`, nil
	}}
	p := NewPackager(llm, nil, PackagerConfig{})

	clips := p.PackageAll(context.Background(), []types.ValidatedClip{testValidatedClip(100, 160, 0.8, 0.9)}, testTranscript(30).Segments)
	require.Len(t, clips, 1)
	assert.Equal(t, []string{"#one", "#two"}, clips[0].Hashtags)
	assert.Equal(t, 120.0, clips[0].ThumbnailTime)
}

func TestPackageAll_FallbackOnFailure(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		return "", errors.New("boom")
	}}
	p := NewPackager(llm, nil, PackagerConfig{})

	src := testValidatedClip(100, 160, 0.8, 0.9)
	clips := p.PackageAll(context.Background(), []types.ValidatedClip{src}, testTranscript(30).Segments)
	require.Len(t, clips, 1, "a clip that survived the gate is never dropped here")

	c := clips[0]
	assert.Equal(t, src.Thought.Moment.CoreIdea, c.Title)
	assert.Equal(t, src.Thought.Summary, c.Description)
	assert.InDelta(t, 120.0, c.ThumbnailTime, 1e-9)
}

func TestSelectTop(t *testing.T) {
	t.Parallel()

	p := NewPackager(nil, nil, PackagerConfig{})
	clips := []types.PackagedClip{
		{ValidatedClip: testValidatedClip(0, 30, 0.5, 0.5)},   // combined 0.5
		{ValidatedClip: testValidatedClip(40, 70, 0.9, 0.9)},  // combined 0.9
		{ValidatedClip: testValidatedClip(80, 110, 0.6, 0.9)}, // combined 0.72
	}

	top := p.SelectTop(clips, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 40.0, top[0].RefinedStart)
	assert.Equal(t, 80.0, top[1].RefinedStart)

	assert.Len(t, p.SelectTop(clips, 10), 3)
	assert.Nil(t, p.SelectTop(nil, 3))
	assert.Nil(t, p.SelectTop(clips, 0))
}

func TestCombinedScore_Weights(t *testing.T) {
	t.Parallel()

	p := NewPackager(nil, nil, PackagerConfig{InterestWeight: 1, StandaloneWeight: 0})
	c := types.PackagedClip{ValidatedClip: testValidatedClip(0, 30, 0.7, 0.2)}
	assert.InDelta(t, 0.7, p.CombinedScore(c), 1e-9)
}
