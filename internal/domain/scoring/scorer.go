// Package scoring ranks clip records by combining heterogeneous signals:
// content interest, audio energy and visual scene activity.
package scoring

import (
	"sort"

	"github.com/iamwhitegod/arena/internal/domain/intervals"
	"github.com/iamwhitegod/arena/internal/types"
)

const (
	DefaultInterestWeight = 0.4
	DefaultAudioWeight    = 0.3
	DefaultVisualWeight   = 0.3

	// DefaultOverlapThreshold: a candidate overlapping a kept clip by more
	// than this is discarded during greedy selection.
	DefaultOverlapThreshold = 0.3

	// neutralScore stands in for a signal with no data; absent collaborator
	// output must not bias the ranking either way.
	neutralScore = 0.5
)

type Weights struct {
	Interest float64
	Audio    float64
	Visual   float64
}

// Scores breaks a clip's ranking down per signal.
type Scores struct {
	Interest float64 `json:"interest"`
	Audio    float64 `json:"audio_energy"`
	Visual   float64 `json:"visual_change"`
	Combined float64 `json:"combined"`
}

type ScoredClip struct {
	Clip   types.ClipRecord `json:"clip"`
	Scores Scores           `json:"scores"`
}

// Scorer combines the three signals under weights normalized to sum to 1.
type Scorer struct {
	w Weights
}

func NewScorer(w Weights) *Scorer {
	if w.Interest <= 0 && w.Audio <= 0 && w.Visual <= 0 {
		w = Weights{Interest: DefaultInterestWeight, Audio: DefaultAudioWeight, Visual: DefaultVisualWeight}
	}
	total := w.Interest + w.Audio + w.Visual
	w.Interest /= total
	w.Audio /= total
	w.Visual /= total
	return &Scorer{w: w}
}

// ScoreAll scores every clip and returns them sorted by combined score
// descending. Energy and scene data are optional; a missing signal scores
// neutral.
func (s *Scorer) ScoreAll(clips []types.ClipRecord, energy []types.EnergySegment, scenes []types.SceneChange) []ScoredClip {
	out := make([]ScoredClip, 0, len(clips))
	for _, clip := range clips {
		sc := Scores{
			Interest: clip.InterestScore,
			Audio:    audioScore(clip, energy),
			Visual:   visualScore(clip, scenes),
		}
		sc.Combined = s.w.Interest*sc.Interest + s.w.Audio*sc.Audio + s.w.Visual*sc.Visual
		out = append(out, ScoredClip{Clip: clip, Scores: sc})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Scores.Combined > out[j].Scores.Combined
	})
	return out
}

// FilterOverlapping greedily keeps the highest-scored clips: the input
// must already be sorted by score descending, and each candidate is
// dropped when it overlaps any kept clip by more than threshold. The
// sweep, not the raw ordering, decides the final set.
func FilterOverlapping(clips []ScoredClip, threshold float64) []ScoredClip {
	if len(clips) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultOverlapThreshold
	}
	kept := []ScoredClip{clips[0]}
	for _, c := range clips[1:] {
		overlapping := false
		for _, k := range kept {
			ratio := intervals.OverlapRatio(
				c.Clip.StartTime, c.Clip.EndTime,
				k.Clip.StartTime, k.Clip.EndTime,
			)
			if ratio > threshold {
				overlapping = true
				break
			}
		}
		if !overlapping {
			kept = append(kept, c)
		}
	}
	return kept
}

// SelectTop filters by duration, removes overlaps and keeps at most
// target clips. Duration bounds of zero or below disable that side.
func (s *Scorer) SelectTop(clips []ScoredClip, target int, minDuration, maxDuration float64) []ScoredClip {
	var valid []ScoredClip
	for _, c := range clips {
		d := c.Clip.Duration
		if minDuration > 0 && d < minDuration {
			continue
		}
		if maxDuration > 0 && d > maxDuration {
			continue
		}
		valid = append(valid, c)
	}
	picked := FilterOverlapping(valid, DefaultOverlapThreshold)
	if target > 0 && len(picked) > target {
		picked = picked[:target]
	}
	return picked
}

// audioScore is the mean energy of overlapping energy segments, neutral
// when nothing overlaps.
func audioScore(clip types.ClipRecord, energy []types.EnergySegment) float64 {
	var sum float64
	var n int
	for _, e := range energy {
		if intervals.Overlaps(clip.StartTime, clip.EndTime, e.Start, e.End) {
			sum += e.EnergyScore
			n++
		}
	}
	if n == 0 {
		return neutralScore
	}
	return sum / float64(n)
}

// visualScore is a step function of scene-change count inside the clip.
// More cuts read as more visual activity, capped so a montage does not
// dominate the ranking.
func visualScore(clip types.ClipRecord, scenes []types.SceneChange) float64 {
	if len(scenes) == 0 {
		return neutralScore
	}
	var changes int
	for _, sc := range scenes {
		if sc.Time >= clip.StartTime && sc.Time <= clip.EndTime {
			changes++
		}
	}
	switch {
	case changes == 0:
		return 0.3
	case changes <= 2:
		return 0.6
	default:
		return 0.9
	}
}
