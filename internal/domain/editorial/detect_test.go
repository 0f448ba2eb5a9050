package editorial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwhitegod/arena/internal/domain/intervals"
	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

// fakeLLM scripts responses per call, safe under concurrent use.
type fakeLLM struct {
	mu    sync.Mutex
	calls []ports.CompletionRequest
	fn    func(call int, req ports.CompletionRequest) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.fn(call, req)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testTranscript(n int) types.Transcript {
	segs := make([]types.Segment, n)
	for i := range segs {
		segs[i] = types.Segment{
			Start: float64(i * 10),
			End:   float64(i*10 + 10),
			Text:  fmt.Sprintf("This is what the speaker says in part %d.", i),
		}
	}
	return types.Transcript{Segments: segs, Duration: float64(n * 10)}
}

func candidateJSON(start, end, score float64) string {
	return fmt.Sprintf(`{
		"rough_start": %.1f, "rough_end": %.1f,
		"core_idea": "idea at %.0f", "why_interesting": "it hooks",
		"interest_score": %.2f, "content_type": "insight"
	}`, start, end, start, score)
}

func TestDetect_ParsesCandidates(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		return fmt.Sprintf(`{"candidates": [%s, %s, {"rough_start": 5}]}`,
			candidateJSON(10, 40, 0.7), candidateJSON(100, 130, 0.9)), nil
	}}
	d := NewMomentDetector(llm, nil, DetectorConfig{TargetMoments: 10})

	moments, err := d.Detect(context.Background(), testTranscript(20))
	require.NoError(t, err)
	require.Len(t, moments, 2, "the invalid candidate is skipped")

	// Sorted by interest descending.
	assert.Equal(t, 0.9, moments[0].InterestScore)
	assert.Equal(t, types.ContentInsight, moments[0].ContentType)
	assert.Equal(t, "idea at 10", moments[1].CoreIdea)
}

func TestDetect_FencedResponse(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		return "```json\n" + fmt.Sprintf(`{"candidates": [%s]}`, candidateJSON(10, 40, 0.8)) + "\n```", nil
	}}
	d := NewMomentDetector(llm, nil, DetectorConfig{TargetMoments: 5})

	moments, err := d.Detect(context.Background(), testTranscript(10))
	require.NoError(t, err)
	assert.Len(t, moments, 1)
}

func TestDetect_EmptyTranscript(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		t.Fatal("no request expected")
		return "", nil
	}}
	d := NewMomentDetector(llm, nil, DetectorConfig{})

	moments, err := d.Detect(context.Background(), types.Transcript{})
	require.NoError(t, err)
	assert.Nil(t, moments)
}

func TestDetect_FailedChunkSkipped(t *testing.T) {
	t.Parallel()

	// Segments sized to force multiple chunks under a 100-token budget.
	tr := types.Transcript{}
	text := strings.Repeat("a", 31)
	for i := 0; i < 20; i++ {
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(i * 5), End: float64(i*5 + 5), Text: text,
		})
	}

	llm := &fakeLLM{fn: func(call int, _ ports.CompletionRequest) (string, error) {
		if call == 0 {
			return "", &ports.ParseError{Msg: "garbage"}
		}
		return fmt.Sprintf(`{"candidates": [%s]}`, candidateJSON(float64(50+call), float64(70+call), 0.8)), nil
	}}
	d := NewMomentDetector(llm, nil, DetectorConfig{TargetMoments: 5, MaxChunkTokens: 100})

	moments, err := d.Detect(context.Background(), tr)
	require.NoError(t, err)
	assert.NotEmpty(t, moments, "surviving chunks still contribute")
	assert.Greater(t, llm.callCount(), 1)
}

func TestDedupeMoments(t *testing.T) {
	t.Parallel()

	mk := func(start, end, score float64) types.Moment {
		return types.Moment{RoughStart: start, RoughEnd: end, InterestScore: score}
	}

	t.Run("below threshold keeps both", func(t *testing.T) {
		// Overlap ratio (40-35)/min(30,20) = 0.25.
		got := dedupeMoments([]types.Moment{mk(10, 40, 0.9), mk(35, 55, 0.7)}, 0.5)
		assert.Len(t, got, 2)
	})

	t.Run("above threshold keeps higher score", func(t *testing.T) {
		got := dedupeMoments([]types.Moment{mk(10, 40, 0.6), mk(15, 45, 0.9)}, 0.5)
		require.Len(t, got, 1)
		assert.Equal(t, 0.9, got[0].InterestScore)
	})

	t.Run("deduplicated pairs stay under threshold", func(t *testing.T) {
		in := []types.Moment{
			mk(0, 30, 0.9), mk(5, 35, 0.8), mk(28, 60, 0.7),
			mk(100, 120, 0.95), mk(101, 121, 0.5),
		}
		got := dedupeMoments(in, 0.5)
		for i := range got {
			for j := i + 1; j < len(got); j++ {
				ratio := intervals.OverlapRatio(
					got[i].RoughStart, got[i].RoughEnd,
					got[j].RoughStart, got[j].RoughEnd,
				)
				assert.LessOrEqual(t, ratio, 0.5)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, dedupeMoments(nil, 0.5))
	})
}

func TestDetect_PropagatesCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &fakeLLM{fn: func(int, ports.CompletionRequest) (string, error) {
		return "", errors.New("context canceled")
	}}
	d := NewMomentDetector(llm, nil, DetectorConfig{TargetMoments: 5})

	_, err := d.Detect(ctx, testTranscript(5))
	assert.ErrorIs(t, err, context.Canceled)
}
