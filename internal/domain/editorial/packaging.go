package editorial

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/iamwhitegod/arena/internal/domain/transcript"
	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

const (
	// TitleMaxRunes is a hard cap; longer titles are truncated, not
	// rejected.
	TitleMaxRunes = 60

	// MaxHashtags caps the tag list. Fewer tags pass through unchanged;
	// they are presentation metadata, not a correctness invariant.
	MaxHashtags = 5

	DefaultInterestWeight   = 0.6
	DefaultStandaloneWeight = 0.4

	packageTemperature = 0.8
)

type PackagerConfig struct {
	InterestWeight   float64
	StandaloneWeight float64
}

// Packager is stage 4: it attaches presentation metadata (title,
// description, hashtags, thumbnail time) to clips that passed the gate.
type Packager struct {
	llm ports.Completer
	log *slog.Logger
	cfg PackagerConfig
}

func NewPackager(llm ports.Completer, log *slog.Logger, cfg PackagerConfig) *Packager {
	if cfg.InterestWeight <= 0 && cfg.StandaloneWeight <= 0 {
		cfg.InterestWeight = DefaultInterestWeight
		cfg.StandaloneWeight = DefaultStandaloneWeight
	}
	return &Packager{llm: llm, log: logOrNop(log), cfg: cfg}
}

// PackageAll packages every clip with one request each. When a request or
// its response is unusable the clip keeps deterministic fallback metadata
// derived from the detection output rather than being dropped: by stage 4
// the clip has already survived the gate.
func (p *Packager) PackageAll(ctx context.Context, clips []types.ValidatedClip, segs []types.Segment) []types.PackagedClip {
	out := make([]types.PackagedClip, 0, len(clips))
	for i, clip := range clips {
		pc, err := p.packageOne(ctx, clip, segs)
		if err != nil {
			p.log.Warn("packaging failed, using fallback", "clip", i+1, "error", err)
			pc = fallbackPackaging(clip)
		}
		out = append(out, pc)
	}
	return out
}

func (p *Packager) packageOne(ctx context.Context, clip types.ValidatedClip, segs []types.Segment) (types.PackagedClip, error) {
	clipText := transcript.ExtractText(segs, clip.RefinedStart, clip.RefinedEnd)
	if clipText == "" {
		return types.PackagedClip{}, fmt.Errorf("no transcript text in [%.1f, %.1f)", clip.RefinedStart, clip.RefinedEnd)
	}

	content, err := p.llm.Complete(ctx, ports.CompletionRequest{
		System:      packageSystem,
		User:        packagePrompt(clipText, clip.RefinedStart, clip.RefinedEnd, clip),
		Temperature: packageTemperature,
	})
	if err != nil {
		return types.PackagedClip{}, err
	}

	doc, err := parseObject(content)
	if err != nil {
		return types.PackagedClip{}, err
	}
	title, err := requireString(doc, "title")
	if err != nil {
		return types.PackagedClip{}, err
	}
	description, err := requireString(doc, "description")
	if err != nil {
		return types.PackagedClip{}, err
	}

	var hashtags []string
	for _, h := range doc.Get("hashtags").Array() {
		if s := h.String(); s != "" {
			hashtags = append(hashtags, s)
		}
	}
	if len(hashtags) > MaxHashtags {
		hashtags = hashtags[:MaxHashtags]
	}

	thumbnail := doc.Get("thumbnail_time").Float()
	thumbnail = min(max(thumbnail, clip.RefinedStart), clip.RefinedEnd)

	return types.PackagedClip{
		ValidatedClip: clip,
		Title:         truncate(title, TitleMaxRunes),
		Description:   description,
		Hashtags:      hashtags,
		ThumbnailTime: thumbnail,
	}, nil
}

// fallbackPackaging builds serviceable metadata from what detection and
// expansion already produced.
func fallbackPackaging(clip types.ValidatedClip) types.PackagedClip {
	description := clip.Thought.Summary
	if description == "" {
		description = clip.Thought.Moment.WhyInteresting
	}
	return types.PackagedClip{
		ValidatedClip: clip,
		Title:         truncate(clip.Thought.Moment.CoreIdea, TitleMaxRunes),
		Description:   description,
		ThumbnailTime: clip.RefinedStart + (clip.RefinedEnd-clip.RefinedStart)/3,
	}
}

// CombinedScore ranks a packaged clip by weighted interest and standalone
// quality.
func (p *Packager) CombinedScore(clip types.PackagedClip) float64 {
	return p.cfg.InterestWeight*clip.Thought.Moment.InterestScore +
		p.cfg.StandaloneWeight*clip.StandaloneScore
}

// SelectTop sorts packaged clips by combined score descending and keeps at
// most n. The input slice is not modified.
func (p *Packager) SelectTop(clips []types.PackagedClip, n int) []types.PackagedClip {
	if len(clips) == 0 || n <= 0 {
		return nil
	}
	ranked := make([]types.PackagedClip, len(clips))
	copy(ranked, clips)
	sort.SliceStable(ranked, func(i, j int) bool {
		return p.CombinedScore(ranked[i]) > p.CombinedScore(ranked[j])
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
