package boundaries

import "github.com/iamwhitegod/arena/internal/types"

const (
	// DefaultMaxAdjustmentSec bounds how far each edge may move to reach a
	// boundary.
	DefaultMaxAdjustmentSec = 10.0

	// correctiveSearchSec bounds the secondary boundary search used when a
	// duration constraint is violated after alignment.
	correctiveSearchSec = 5.0

	// minViableDurationSec is the floor under which an aligned clip cannot
	// express setup, statement and resolution; shorter results revert.
	minViableDurationSec = 8.0

	// collapseRatio: an alignment that keeps less than this share of the
	// original duration found bad boundaries and reverts entirely.
	collapseRatio = 0.2
)

type AlignerConfig struct {
	MaxAdjustment float64

	// MinClipDuration/MaxClipDuration, when positive, trigger one
	// corrective boundary search after alignment.
	MinClipDuration float64
	MaxClipDuration float64
}

// Aligner snaps clip edges to the nearest acceptable cut points in a
// boundary index. Alignment never inverts a clip and never collapses it;
// when the boundaries on offer would do either, the original bounds win.
type Aligner struct {
	idx *Index
	cfg AlignerConfig
}

func NewAligner(idx *Index, cfg AlignerConfig) *Aligner {
	if cfg.MaxAdjustment <= 0 {
		cfg.MaxAdjustment = DefaultMaxAdjustmentSec
	}
	return &Aligner{idx: idx, cfg: cfg}
}

// Align snaps start back to the nearest boundary at or before it and end
// forward to the nearest boundary at or after it, each within the
// adjustment budget. An edge with no candidate stays put. Aligning an
// already-aligned pair returns it unchanged.
func (a *Aligner) Align(start, end float64) types.Alignment {
	al := types.Alignment{
		OriginalStart: start,
		OriginalEnd:   end,
		AdjustedStart: start,
		AdjustedEnd:   end,
	}

	if sb, ok := a.idx.NearestBefore(start, a.cfg.MaxAdjustment); ok {
		al.AdjustedStart = sb.Time
		al.StartAligned = true
		al.StartBoundaryType = sb.Type
	}
	if eb, ok := a.idx.NearestAfter(end, a.cfg.MaxAdjustment); ok {
		al.AdjustedEnd = eb.Time
		al.EndAligned = true
		al.EndBoundaryType = eb.Type
	}

	// Guard: never invert the clip.
	if al.AdjustedEnd <= al.AdjustedStart {
		a.revertEnd(&al)
	}

	// Guard: an alignment that collapses the clip found bad boundaries.
	originalDuration := end - start
	if originalDuration > 0 && al.AdjustedEnd-al.AdjustedStart < originalDuration*collapseRatio {
		a.revertAll(&al)
	}

	a.applyDurationConstraints(&al)

	// Final sanity floor.
	if al.AdjustedEnd-al.AdjustedStart < minViableDurationSec {
		a.revertAll(&al)
	}
	return al
}

// applyDurationConstraints runs at most one corrective boundary search per
// violated constraint, extending the end forward for too-short clips and
// trimming it backward for too-long ones. No candidate means the
// constraint stays violated; the sanity floor still applies.
func (a *Aligner) applyDurationConstraints(al *types.Alignment) {
	duration := al.AdjustedEnd - al.AdjustedStart

	if a.cfg.MinClipDuration > 0 && duration < a.cfg.MinClipDuration {
		target := al.AdjustedStart + a.cfg.MinClipDuration
		if eb, ok := a.idx.NearestAfter(target, correctiveSearchSec); ok {
			al.AdjustedEnd = eb.Time
			al.EndAligned = true
			al.EndBoundaryType = eb.Type
		}
	}
	if a.cfg.MaxClipDuration > 0 && duration > a.cfg.MaxClipDuration {
		target := al.AdjustedStart + a.cfg.MaxClipDuration
		if eb, ok := a.idx.NearestBefore(target, correctiveSearchSec); ok && eb.Time > al.AdjustedStart {
			al.AdjustedEnd = eb.Time
			al.EndAligned = true
			al.EndBoundaryType = eb.Type
		}
	}
}

func (a *Aligner) revertEnd(al *types.Alignment) {
	al.AdjustedEnd = al.OriginalEnd
	al.EndAligned = false
	al.EndBoundaryType = ""
}

func (a *Aligner) revertAll(al *types.Alignment) {
	al.AdjustedStart = al.OriginalStart
	al.AdjustedEnd = al.OriginalEnd
	al.StartAligned = false
	al.EndAligned = false
	al.StartBoundaryType = ""
	al.EndBoundaryType = ""
}
