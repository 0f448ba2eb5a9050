package editorial

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/tidwall/gjson"

	"github.com/iamwhitegod/arena/internal/domain/transcript"
	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

const (
	// PassThreshold: score at or above this passes the gate.
	PassThreshold = 0.7

	// ReviseThreshold: score below this is an immediate reject.
	ReviseThreshold = 0.4

	// MaxGateIterations bounds the refinement loop per candidate.
	MaxGateIterations = 2

	// MaxAdjustmentSec caps how far refined bounds may move from the
	// expanded bounds per edge. Larger moves convert to a reject rather
	// than silently over-expanding.
	MaxAdjustmentSec = 15.0

	gateTemperature = 0.3
)

type GateConfig struct {
	PassThreshold   float64
	ReviseThreshold float64
	MaxIterations   int
	MaxAdjustment   float64

	// MinDuration/MaxDuration, when positive, reject clips outside the
	// range regardless of score.
	MinDuration float64
	MaxDuration float64
}

// GateStats summarizes one gate run. The pass rate is a tuning signal: a
// healthy range is 0.5-0.7.
type GateStats struct {
	Passed          int     `json:"passed"`
	Revised         int     `json:"revised"`
	Rejected        int     `json:"rejected"`
	NoChangesNeeded int     `json:"no_changes_needed"`
	PassRate        float64 `json:"pass_rate"`
	BoundaryQuality float64 `json:"boundary_quality_rate"`
}

// QualityGate is stage 3, the pipeline's quality gate: it validates each
// expanded candidate for context-independence and is the only stage that
// can terminally reject a candidate. Each candidate runs a small state
// machine: EVALUATING, then PASS, REVISE (loops back at most once), or
// REJECT.
type QualityGate struct {
	llm ports.Completer
	log *slog.Logger
	cfg GateConfig
}

func NewQualityGate(llm ports.Completer, log *slog.Logger, cfg GateConfig) *QualityGate {
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = PassThreshold
	}
	if cfg.ReviseThreshold <= 0 {
		cfg.ReviseThreshold = ReviseThreshold
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = MaxGateIterations
	}
	if cfg.MaxAdjustment <= 0 {
		cfg.MaxAdjustment = MaxAdjustmentSec
	}
	return &QualityGate{llm: llm, log: logOrNop(log), cfg: cfg}
}

// ValidateAll runs the gate over every thought. A thought whose judgment
// cannot be obtained is dropped; the rest of the batch continues.
func (g *QualityGate) ValidateAll(ctx context.Context, thoughts []types.Thought, segs []types.Segment) ([]types.ValidatedClip, GateStats) {
	var (
		out   []types.ValidatedClip
		stats GateStats
	)
	for i, th := range thoughts {
		clip, changed, err := g.validateOne(ctx, th, segs)
		if err != nil {
			g.log.Warn("thought dropped", "thought", i+1, "error", err)
			continue
		}
		out = append(out, clip)
		switch clip.Verdict {
		case types.VerdictPass:
			stats.Passed++
			if !changed {
				stats.NoChangesNeeded++
			}
		case types.VerdictRevise:
			stats.Revised++
		case types.VerdictReject:
			stats.Rejected++
		}
		g.log.Debug("thought judged",
			"thought", i+1,
			"verdict", clip.Verdict,
			"score", clip.StandaloneScore,
		)
	}

	total := stats.Passed + stats.Revised + stats.Rejected
	if total > 0 {
		stats.PassRate = float64(stats.Passed) / float64(total)
	}
	if eligible := stats.Passed + stats.Revised; eligible > 0 {
		stats.BoundaryQuality = float64(stats.NoChangesNeeded) / float64(eligible)
	}
	return out, stats
}

// judgment is one round's parsed response.
type judgment struct {
	score        float64
	refinedStart float64
	refinedEnd   float64
	changesMade  bool
	notes        string
	reason       types.RejectionReason
}

// validateOne judges one thought. The returned bool is the last round's
// reported changes_made flag, feeding the boundary-quality stat.
func (g *QualityGate) validateOne(ctx context.Context, th types.Thought, segs []types.Segment) (types.ValidatedClip, bool, error) {
	currentStart := th.ExpandedStart
	currentEnd := th.ExpandedEnd
	var history []types.Refinement

	for iteration := 1; iteration <= g.cfg.MaxIterations; iteration++ {
		clipText := transcript.ExtractText(segs, currentStart, currentEnd)
		if clipText == "" {
			return types.ValidatedClip{}, false, fmt.Errorf("no transcript text in [%.1f, %.1f)", currentStart, currentEnd)
		}

		j, err := g.judge(ctx, clipText, currentStart, currentEnd, th)
		if err != nil {
			return types.ValidatedClip{}, false, err
		}
		history = append(history, types.Refinement{Start: currentStart, End: currentEnd, Score: j.score})

		// Duration constraints trump the score.
		if reject, notes := g.checkDuration(j.refinedEnd - j.refinedStart); reject {
			return clipResult(th, currentStart, currentEnd, j.score, types.VerdictReject,
				types.RejectDurationConstraint, notes, history), j.changesMade, nil
		}

		switch {
		case j.score >= g.cfg.PassThreshold:
			// The adjustment cap holds independently of the score.
			if !g.withinAdjustment(th, j.refinedStart, j.refinedEnd) {
				return clipResult(th, currentStart, currentEnd, j.score, types.VerdictReject,
					types.RejectStructuralIssue,
					fmt.Sprintf("needed adjustments exceed %.0fs limit; %s", g.cfg.MaxAdjustment, j.notes),
					history), j.changesMade, nil
			}
			return clipResult(th, j.refinedStart, j.refinedEnd, j.score, types.VerdictPass,
				types.RejectNone, j.notes, history), j.changesMade, nil

		case j.score >= g.cfg.ReviseThreshold:
			// The adjustment cap gates every adoption of refined bounds,
			// including the final round's settle-as-revise.
			if !g.withinAdjustment(th, j.refinedStart, j.refinedEnd) {
				reason := j.reason
				if reason == types.RejectNone {
					reason = types.RejectStructuralIssue
				}
				return clipResult(th, currentStart, currentEnd, j.score, types.VerdictReject,
					reason,
					fmt.Sprintf("needed adjustments exceed %.0fs limit; %s", g.cfg.MaxAdjustment, j.notes),
					history), j.changesMade, nil
			}
			if iteration >= g.cfg.MaxIterations {
				// Out of iterations: settle as marginal, not a pass.
				return clipResult(th, j.refinedStart, j.refinedEnd, j.score, types.VerdictRevise,
					types.RejectNone,
					fmt.Sprintf("after %d iterations: %s", iteration, j.notes),
					history), j.changesMade, nil
			}
			currentStart = j.refinedStart
			currentEnd = j.refinedEnd

		default:
			return clipResult(th, currentStart, currentEnd, j.score, types.VerdictReject,
				j.reason, j.notes, history), j.changesMade, nil
		}
	}

	// Unreachable with MaxIterations >= 1; kept as a hard stop.
	return clipResult(th, currentStart, currentEnd, 0, types.VerdictReject,
		types.RejectStructuralIssue, "max iterations exceeded", history), false, nil
}

func (g *QualityGate) judge(ctx context.Context, clipText string, start, end float64, th types.Thought) (judgment, error) {
	content, err := g.llm.Complete(ctx, ports.CompletionRequest{
		System:      gateSystem,
		User:        gatePrompt(clipText, start, end, th, g.cfg.MaxAdjustment),
		Temperature: gateTemperature,
	})
	if err != nil {
		return judgment{}, err
	}

	doc, err := parseObject(content)
	if err != nil {
		return judgment{}, err
	}
	score, err := requireNumber(doc, "standalone_score")
	if err != nil {
		return judgment{}, err
	}
	// changes_made is required: a judgment that omits it is ambiguous
	// about whether the boundaries were touched, so it is a parse error,
	// not a default.
	changed, err := requireBool(doc, "changes_made")
	if err != nil {
		return judgment{}, err
	}

	j := judgment{
		score:        score,
		refinedStart: start,
		refinedEnd:   end,
		changesMade:  changed,
		notes:        doc.Get("editor_notes").String(),
	}
	if v := doc.Get("refined_start"); v.Type == gjson.Number {
		j.refinedStart = v.Float()
	}
	if v := doc.Get("refined_end"); v.Type == gjson.Number {
		j.refinedEnd = v.Float()
	}
	if v := doc.Get("rejection_reason"); v.Type == gjson.String && types.ValidRejectionReason(v.String()) {
		j.reason = types.RejectionReason(v.String())
	}
	if j.refinedEnd <= j.refinedStart {
		return judgment{}, &ports.ParseError{Msg: "refined_end must exceed refined_start"}
	}
	return j, nil
}

func (g *QualityGate) checkDuration(duration float64) (bool, string) {
	if g.cfg.MinDuration > 0 && duration < g.cfg.MinDuration {
		return true, fmt.Sprintf("duration %.1fs below minimum %.0fs", duration, g.cfg.MinDuration)
	}
	if g.cfg.MaxDuration > 0 && duration > g.cfg.MaxDuration {
		return true, fmt.Sprintf("duration %.1fs exceeds maximum %.0fs", duration, g.cfg.MaxDuration)
	}
	return false, ""
}

// withinAdjustment checks the proposed bounds against the thought's
// expanded bounds, not the current iteration's, so two small moves cannot
// compound past the cap.
func (g *QualityGate) withinAdjustment(th types.Thought, start, end float64) bool {
	return math.Abs(start-th.ExpandedStart) <= g.cfg.MaxAdjustment &&
		math.Abs(end-th.ExpandedEnd) <= g.cfg.MaxAdjustment
}

func clipResult(th types.Thought, start, end, score float64, verdict types.Verdict, reason types.RejectionReason, notes string, history []types.Refinement) types.ValidatedClip {
	return types.ValidatedClip{
		RefinedStart:    start,
		RefinedEnd:      end,
		StandaloneScore: score,
		Verdict:         verdict,
		RejectionReason: reason,
		EditorNotes:     notes,
		History:         history,
		Thought:         th,
	}
}
