package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iamwhitegod/arena/internal/domain/boundaries"
	"github.com/iamwhitegod/arena/internal/domain/editorial"
	"github.com/iamwhitegod/arena/internal/domain/scoring"
	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

// overDetectionMultiplier sizes stage 1's target above the requested clip
// count; later stages are selective and need surplus to cut from.
const overDetectionMultiplier = 2.5

const defaultTargetClips = 10

// Event is one progress notification. Stage is one of detect, expand,
// gate, package, finalize.
type Event struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

type Deps struct {
	LLM ports.Completer
	Log *slog.Logger

	// OnEvent, when set, receives a notification after each stage.
	OnEvent func(Event)
}

type Usecase struct {
	d Deps
}

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Usecase{d: d}
}

type Input struct {
	Transcript types.Transcript

	// Energy and Scenes come from external collaborators and are
	// optional; missing signals score neutral.
	Energy []types.EnergySegment
	Scenes []types.SceneChange

	TargetClips int
	MinClip     float64
	MaxClip     float64

	Detector editorial.DetectorConfig
	Expander editorial.ExpanderConfig
	Gate     editorial.GateConfig
	Packager editorial.PackagerConfig
	Weights  scoring.Weights
}

// Result carries the manifest plus every intermediate stage output, so
// callers can export per-stage debug files.
type Result struct {
	RunID     string
	Moments   []types.Moment
	Thoughts  []types.Thought
	Validated []types.ValidatedClip
	GateStats editorial.GateStats
	Packaged  []types.PackagedClip
	Scored    []scoring.ScoredClip
	Manifest  types.Manifest
}

// Run drives the four editorial stages and the post-processing passes. An
// empty result at any stage short-circuits to a zero-clip manifest; only
// infrastructure failures (a cancelled context, an unreadable transcript)
// return an error.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := u.d.Log.With("run_id", res.RunID)

	target := in.TargetClips
	if target <= 0 {
		target = defaultTargetClips
	}

	detCfg := in.Detector
	if detCfg.TargetMoments <= 0 {
		detCfg.TargetMoments = int(float64(target) * overDetectionMultiplier)
	}
	gateCfg := in.Gate
	if gateCfg.MinDuration <= 0 {
		gateCfg.MinDuration = in.MinClip
	}
	if gateCfg.MaxDuration <= 0 {
		gateCfg.MaxDuration = in.MaxClip
	}

	detector := editorial.NewMomentDetector(u.d.LLM, log, detCfg)
	expander := editorial.NewThoughtBoundaryExpander(u.d.LLM, log, in.Expander)
	gate := editorial.NewQualityGate(u.d.LLM, log, gateCfg)
	packager := editorial.NewPackager(u.d.LLM, log, in.Packager)

	moments, err := detector.Detect(ctx, in.Transcript)
	if err != nil {
		return Result{}, fmt.Errorf("detect moments: %w", err)
	}
	res.Moments = moments
	u.emit(res.RunID, "detect", len(moments))
	if len(moments) == 0 {
		log.Info("no interesting moments found")
		res.Manifest = types.Manifest{RunID: res.RunID}
		return res, nil
	}

	res.Thoughts = expander.ExpandAll(ctx, moments, in.Transcript.Segments)
	u.emit(res.RunID, "expand", len(res.Thoughts))
	if len(res.Thoughts) == 0 {
		log.Info("no complete thoughts identified")
		res.Manifest = types.Manifest{RunID: res.RunID}
		return res, nil
	}

	res.Validated, res.GateStats = gate.ValidateAll(ctx, res.Thoughts, in.Transcript.Segments)
	passed := make([]types.ValidatedClip, 0, len(res.Validated))
	for _, c := range res.Validated {
		if c.Verdict == types.VerdictPass {
			passed = append(passed, c)
		}
	}
	u.emit(res.RunID, "gate", len(passed))
	log.Info("quality gate done",
		"passed", res.GateStats.Passed,
		"revised", res.GateStats.Revised,
		"rejected", res.GateStats.Rejected,
		"pass_rate", res.GateStats.PassRate,
	)
	if len(passed) == 0 {
		log.Info("no clips passed standalone validation")
		res.Manifest = types.Manifest{RunID: res.RunID}
		return res, nil
	}

	res.Packaged = packager.PackageAll(ctx, passed, in.Transcript.Segments)
	top := packager.SelectTop(res.Packaged, target)
	u.emit(res.RunID, "package", len(top))

	records := u.finalize(top, in)
	scorer := scoring.NewScorer(in.Weights)
	res.Scored = scorer.SelectTop(scorer.ScoreAll(records, in.Energy, in.Scenes), target, in.MinClip, in.MaxClip)
	u.emit(res.RunID, "finalize", len(res.Scored))

	final := make([]types.ClipRecord, 0, len(res.Scored))
	for _, sc := range res.Scored {
		final = append(final, sc.Clip)
	}
	res.Manifest = types.Manifest{RunID: res.RunID, Clips: final}
	return res, nil
}

// finalize converts packaged clips to output records, snapping each one's
// edges to natural cut points.
func (u Usecase) finalize(clips []types.PackagedClip, in Input) []types.ClipRecord {
	idx := boundaries.BuildIndex(in.Transcript.Segments, 0)
	aligner := boundaries.NewAligner(idx, boundaries.AlignerConfig{
		MinClipDuration: in.MinClip,
		MaxClipDuration: in.MaxClip,
	})

	records := make([]types.ClipRecord, 0, len(clips))
	for i, clip := range clips {
		al := aligner.Align(clip.RefinedStart, clip.RefinedEnd)
		start, end := al.AdjustedStart, al.AdjustedEnd

		thumbnail := clip.ThumbnailTime
		thumbnail = min(max(thumbnail, start), end)

		records = append(records, types.ClipRecord{
			ID:              fmt.Sprintf("clip_%03d", i+1),
			StartTime:       start,
			EndTime:         end,
			Duration:        end - start,
			Title:           clip.Title,
			Description:     clip.Description,
			Hashtags:        clip.Hashtags,
			ThumbnailTime:   thumbnail,
			InterestScore:   clip.Thought.Moment.InterestScore,
			StandaloneScore: clip.StandaloneScore,
			ContentType:     clip.Thought.Moment.ContentType,
			Alignment:       &al,
		})
	}
	return records
}

func (u Usecase) emit(runID, stage string, count int) {
	if u.d.OnEvent == nil {
		return
	}
	u.d.OnEvent(Event{RunID: runID, Stage: stage, Count: count})
}
