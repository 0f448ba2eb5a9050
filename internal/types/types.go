package types

// Segment is one timestamped line of a transcript, as supplied by the
// transcription collaborator. Segments are ordered by start time and may
// overlap negligibly at boundaries.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	Segments []Segment `json:"segments"`
	Duration float64   `json:"duration"`
}

// ContentType classifies what makes a moment interesting.
type ContentType string

const (
	ContentHook            ContentType = "hook"
	ContentInsight         ContentType = "insight"
	ContentAdvice          ContentType = "advice"
	ContentStory           ContentType = "story"
	ContentControversial   ContentType = "controversial"
	ContentEmotional       ContentType = "emotional"
	ContentProblemSolution ContentType = "problem-solution"
	ContentGeneral         ContentType = "general"
)

// Moment is a stage-1 candidate: a rough-timestamped region judged
// interesting. Timestamps are approximate by design; later stages refine
// them.
type Moment struct {
	RoughStart     float64     `json:"rough_start"`
	RoughEnd       float64     `json:"rough_end"`
	CoreIdea       string      `json:"core_idea"`
	WhyInteresting string      `json:"why_interesting"`
	InterestScore  float64     `json:"interest_score"`
	ContentType    ContentType `json:"content_type"`
}

// Thought is a stage-2 result: a moment expanded to structurally complete
// narrative boundaries. ExpandedStart <= RoughStart and
// ExpandedEnd >= RoughEnd always hold, with at most 30s of expansion on
// each side.
type Thought struct {
	ExpandedStart float64 `json:"expanded_start"`
	ExpandedEnd   float64 `json:"expanded_end"`
	Summary       string  `json:"thought_summary"`
	Confidence    float64 `json:"confidence"`
	Moment        Moment  `json:"moment"`
}

// Verdict is the tri-state outcome of the quality gate for one candidate.
type Verdict string

const (
	VerdictPass   Verdict = "PASS"
	VerdictRevise Verdict = "REVISE"
	VerdictReject Verdict = "REJECT"
)

// RejectionReason is the closed set of reasons the quality gate rejects a
// clip. Empty means not rejected.
type RejectionReason string

const (
	RejectNone                 RejectionReason = ""
	RejectMissingPremise       RejectionReason = "missing_premise"
	RejectDanglingReference    RejectionReason = "dangling_reference"
	RejectIncompleteResolution RejectionReason = "incomplete_resolution"
	RejectTopicDrift           RejectionReason = "topic_drift"
	RejectDurationConstraint   RejectionReason = "duration_constraint"
	RejectStructuralIssue      RejectionReason = "structural_issue"
)

// ValidRejectionReason reports whether s names a known rejection reason.
func ValidRejectionReason(s string) bool {
	switch RejectionReason(s) {
	case RejectMissingPremise, RejectDanglingReference, RejectIncompleteResolution,
		RejectTopicDrift, RejectDurationConstraint, RejectStructuralIssue:
		return true
	}
	return false
}

// Refinement is one round of the quality gate's iterative refinement.
type Refinement struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// ValidatedClip is a stage-3 result. RefinedStart/RefinedEnd differ from
// the source thought's bounds by at most 15s on each edge; a larger
// adjustment forces VerdictReject instead.
type ValidatedClip struct {
	RefinedStart    float64         `json:"refined_start"`
	RefinedEnd      float64         `json:"refined_end"`
	StandaloneScore float64         `json:"standalone_score"`
	Verdict         Verdict         `json:"verdict"`
	RejectionReason RejectionReason `json:"rejection_reason,omitempty"`
	EditorNotes     string          `json:"editor_notes"`
	History         []Refinement    `json:"iteration_history"`
	Thought         Thought         `json:"thought"`
}

// PackagedClip is a stage-4 result: a passed clip with presentation
// metadata attached.
type PackagedClip struct {
	ValidatedClip
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Hashtags      []string `json:"hashtags"`
	ThumbnailTime float64  `json:"thumbnail_time"`
}

// BoundaryType tags the linguistic signal that produced a cut point.
type BoundaryType string

const (
	BoundarySentenceEnd     BoundaryType = "sentence_end"
	BoundaryPause           BoundaryType = "pause"
	BoundaryTopicTransition BoundaryType = "topic_transition"
)

// Boundary is a timestamp judged a safe place to cut.
type Boundary struct {
	Time       float64      `json:"time"`
	Type       BoundaryType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// Alignment records how a clip's edges were snapped to boundaries.
type Alignment struct {
	OriginalStart     float64      `json:"original_start"`
	OriginalEnd       float64      `json:"original_end"`
	AdjustedStart     float64      `json:"adjusted_start"`
	AdjustedEnd       float64      `json:"adjusted_end"`
	StartAligned      bool         `json:"start_aligned"`
	EndAligned        bool         `json:"end_aligned"`
	StartBoundaryType BoundaryType `json:"start_boundary_type,omitempty"`
	EndBoundaryType   BoundaryType `json:"end_boundary_type,omitempty"`
}

// EnergySegment is supplied by the audio-energy collaborator.
type EnergySegment struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	EnergyScore float64 `json:"energy_score"`
}

// SceneChange is supplied by the scene-detection collaborator.
type SceneChange struct {
	Time  float64 `json:"time"`
	Score float64 `json:"score"`
}

// ClipRecord is the output contract handed to clip-generation and export
// collaborators.
type ClipRecord struct {
	ID              string      `json:"id"`
	StartTime       float64     `json:"start_time"`
	EndTime         float64     `json:"end_time"`
	Duration        float64     `json:"duration"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Hashtags        []string    `json:"hashtags,omitempty"`
	ThumbnailTime   float64     `json:"thumbnail_time,omitempty"`
	InterestScore   float64     `json:"interest_score"`
	StandaloneScore float64     `json:"standalone_score"`
	ContentType     ContentType `json:"content_type"`
	Alignment       *Alignment  `json:"alignment,omitempty"`
}

type Manifest struct {
	Input string       `json:"input"`
	RunID string       `json:"run_id"`
	Clips []ClipRecord `json:"clips"`
}
