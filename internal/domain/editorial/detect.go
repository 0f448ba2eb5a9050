package editorial

import (
	"context"
	"log/slog"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/iamwhitegod/arena/internal/domain/intervals"
	"github.com/iamwhitegod/arena/internal/domain/transcript"
	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

const (
	// DefaultMaxChunkTokens leaves headroom for prompt overhead under a
	// 24k-token request ceiling.
	DefaultMaxChunkTokens = 21000

	// DefaultDedupThreshold: candidates overlapping more than this (by the
	// shorter candidate's duration) are duplicates.
	DefaultDedupThreshold = 0.5

	// chunkTargetMultiplier scales the per-chunk candidate target when the
	// transcript spans multiple chunks, compensating for cross-chunk
	// deduplication loss.
	chunkTargetMultiplier = 1.5

	detectTemperature = 0.7
)

type DetectorConfig struct {
	TargetMoments  int
	MaxChunkTokens int
	OverlapRatio   float64
	DedupThreshold float64
}

// MomentDetector is stage 1: it casts a wide net over the transcript and
// returns rough-timestamped candidate moments ranked by interest.
type MomentDetector struct {
	llm ports.Completer
	log *slog.Logger
	cfg DetectorConfig
}

func NewMomentDetector(llm ports.Completer, log *slog.Logger, cfg DetectorConfig) *MomentDetector {
	if cfg.TargetMoments <= 0 {
		cfg.TargetMoments = 25
	}
	if cfg.MaxChunkTokens <= 0 {
		cfg.MaxChunkTokens = DefaultMaxChunkTokens
	}
	if cfg.OverlapRatio <= 0 {
		cfg.OverlapRatio = transcript.DefaultOverlapRatio
	}
	if cfg.DedupThreshold <= 0 {
		cfg.DedupThreshold = DefaultDedupThreshold
	}
	return &MomentDetector{llm: llm, log: logOrNop(log), cfg: cfg}
}

// Detect finds candidate moments across the whole transcript, chunking
// oversized inputs and merging per-chunk results. A chunk whose response
// cannot be used contributes zero candidates; it never fails the batch.
func (d *MomentDetector) Detect(ctx context.Context, tr types.Transcript) ([]types.Moment, error) {
	if len(tr.Segments) == 0 {
		d.log.Warn("no transcript segments")
		return nil, nil
	}

	chunks := transcript.Chunk(tr.Segments, d.cfg.MaxChunkTokens, d.cfg.OverlapRatio)
	perChunk := d.cfg.TargetMoments
	if len(chunks) > 1 {
		perChunk = int(float64(d.cfg.TargetMoments) * chunkTargetMultiplier)
	}
	d.log.Info("detecting moments", "chunks", len(chunks), "target_per_chunk", perChunk)

	var all []types.Moment
	for i, chunk := range chunks {
		moments, err := d.detectChunk(ctx, chunk, perChunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.log.Warn("chunk dropped", "chunk", i+1, "error", err)
			continue
		}
		d.log.Debug("chunk detected", "chunk", i+1, "moments", len(moments))
		all = append(all, moments...)
	}

	merged := dedupeMoments(all, d.cfg.DedupThreshold)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].InterestScore > merged[j].InterestScore
	})
	if len(merged) > d.cfg.TargetMoments {
		merged = merged[:d.cfg.TargetMoments]
	}
	return merged, nil
}

func (d *MomentDetector) detectChunk(ctx context.Context, segs []types.Segment, target int) ([]types.Moment, error) {
	content, err := d.llm.Complete(ctx, ports.CompletionRequest{
		System:      detectSystem,
		User:        detectPrompt(transcript.Format(segs), target),
		Temperature: detectTemperature,
	})
	if err != nil {
		return nil, err
	}

	doc, err := parseObject(content)
	if err != nil {
		return nil, err
	}
	arr := doc.Get("candidates")
	if !arr.IsArray() {
		return nil, &ports.ParseError{Msg: `missing "candidates" array`}
	}

	var out []types.Moment
	for _, c := range arr.Array() {
		m, err := parseMoment(c)
		if err != nil {
			d.log.Warn("skipping invalid candidate", "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func parseMoment(doc gjson.Result) (types.Moment, error) {
	roughStart, err := requireNumber(doc, "rough_start")
	if err != nil {
		return types.Moment{}, err
	}
	roughEnd, err := requireNumber(doc, "rough_end")
	if err != nil {
		return types.Moment{}, err
	}
	if roughEnd <= roughStart {
		return types.Moment{}, &ports.ParseError{Msg: "rough_end must exceed rough_start"}
	}
	coreIdea, err := requireString(doc, "core_idea")
	if err != nil {
		return types.Moment{}, err
	}
	why, err := requireString(doc, "why_interesting")
	if err != nil {
		return types.Moment{}, err
	}
	score, err := requireNumber(doc, "interest_score")
	if err != nil {
		return types.Moment{}, err
	}
	contentType := types.ContentType(doc.Get("content_type").String())
	if contentType == "" {
		contentType = types.ContentGeneral
	}
	return types.Moment{
		RoughStart:     roughStart,
		RoughEnd:       roughEnd,
		CoreIdea:       coreIdea,
		WhyInteresting: why,
		InterestScore:  score,
		ContentType:    contentType,
	}, nil
}

// dedupeMoments removes temporal duplicates: the list is swept in start
// order, and when two moments overlap by more than threshold (relative to
// the shorter one) the lower-interest moment is dropped. The inner sweep
// exits early once a later moment starts after the current one ends.
func dedupeMoments(moments []types.Moment, threshold float64) []types.Moment {
	if len(moments) == 0 {
		return nil
	}
	sorted := make([]types.Moment, len(moments))
	copy(sorted, moments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RoughStart < sorted[j].RoughStart
	})

	skip := make(map[int]bool)
	var out []types.Moment
	for i := range sorted {
		if skip[i] {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			if skip[j] {
				continue
			}
			if sorted[j].RoughStart > sorted[i].RoughEnd {
				break
			}
			ratio := intervals.OverlapRatio(
				sorted[i].RoughStart, sorted[i].RoughEnd,
				sorted[j].RoughStart, sorted[j].RoughEnd,
			)
			if ratio <= threshold {
				continue
			}
			if sorted[j].InterestScore > sorted[i].InterestScore {
				skip[i] = true
				break
			}
			skip[j] = true
		}
		if !skip[i] {
			out = append(out, sorted[i])
		}
	}
	return out
}
