package editorial

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

func expansionJSON(start, end float64) string {
	return fmt.Sprintf(`{
		"expanded_start": %.1f, "expanded_end": %.1f,
		"thought_summary": "setup through payoff", "confidence": 0.8
	}`, start, end)
}

func testMoment(start, end float64) types.Moment {
	return types.Moment{
		RoughStart: start, RoughEnd: end,
		CoreIdea: "a point", WhyInteresting: "quotable",
		InterestScore: 0.8, ContentType: types.ContentInsight,
	}
}

func TestExpandAll_ParsesResponse(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		return expansionJSON(90, 170), nil
	}}
	e := NewThoughtBoundaryExpander(llm, nil, ExpanderConfig{Workers: 1})

	thoughts := e.ExpandAll(context.Background(), []types.Moment{testMoment(100, 160)}, testTranscript(30).Segments)
	require.Len(t, thoughts, 1)

	th := thoughts[0]
	assert.Equal(t, 90.0, th.ExpandedStart)
	assert.Equal(t, 170.0, th.ExpandedEnd)
	assert.Equal(t, "setup through payoff", th.Summary)
	assert.Equal(t, 0.8, th.Confidence)
	assert.Equal(t, testMoment(100, 160), th.Moment)
}

func TestExpandAll_ClampsBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		respStart, respEnd   float64
		wantStart, wantEnd   float64
	}{
		{"too far backward", 20, 165, 70, 165},
		{"too far forward", 95, 400, 95, 190},
		{"inside rough span", 120, 140, 100, 160},
		{"exact rough span", 100, 160, 100, 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
				return expansionJSON(tt.respStart, tt.respEnd), nil
			}}
			e := NewThoughtBoundaryExpander(llm, nil, ExpanderConfig{Workers: 1})

			thoughts := e.ExpandAll(context.Background(), []types.Moment{testMoment(100, 160)}, testTranscript(30).Segments)
			require.Len(t, thoughts, 1)
			assert.Equal(t, tt.wantStart, thoughts[0].ExpandedStart)
			assert.Equal(t, tt.wantEnd, thoughts[0].ExpandedEnd)
		})
	}
}

func TestExpandAll_BoundsInvariants(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(call int, _ ports.CompletionRequest) (string, error) {
		// Responses deliberately wander outside the allowed range.
		return expansionJSON(float64(call*37%200), float64(200+call*53%200)), nil
	}}
	e := NewThoughtBoundaryExpander(llm, nil, ExpanderConfig{})

	moments := []types.Moment{
		testMoment(50, 90), testMoment(120, 150), testMoment(200, 240),
	}
	thoughts := e.ExpandAll(context.Background(), moments, testTranscript(40).Segments)

	for _, th := range thoughts {
		assert.LessOrEqual(t, th.ExpandedStart, th.Moment.RoughStart)
		assert.GreaterOrEqual(t, th.ExpandedEnd, th.Moment.RoughEnd)
		assert.LessOrEqual(t, th.Moment.RoughStart-th.ExpandedStart, DefaultMaxExpansionSec)
		assert.LessOrEqual(t, th.ExpandedEnd-th.Moment.RoughEnd, DefaultMaxExpansionSec)
	}
}

func TestExpandAll_DropsFailedMoments(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(call int, _ ports.CompletionRequest) (string, error) {
		if call == 0 {
			return "", errors.New("boom")
		}
		return expansionJSON(110, 170), nil
	}}
	e := NewThoughtBoundaryExpander(llm, nil, ExpanderConfig{Workers: 1})

	moments := []types.Moment{testMoment(100, 160), testMoment(120, 150)}
	thoughts := e.ExpandAll(context.Background(), moments, testTranscript(30).Segments)

	require.Len(t, thoughts, 1)
	assert.Equal(t, 120.0, thoughts[0].Moment.RoughStart)
}

func TestExpandAll_EmptyInputs(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		t.Fatal("no request expected")
		return "", nil
	}}
	e := NewThoughtBoundaryExpander(llm, nil, ExpanderConfig{})

	assert.Nil(t, e.ExpandAll(context.Background(), nil, testTranscript(5).Segments))
	assert.Nil(t, e.ExpandAll(context.Background(), []types.Moment{testMoment(0, 10)}, nil))
}
