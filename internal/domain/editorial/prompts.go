package editorial

import (
	"fmt"

	"github.com/iamwhitegod/arena/internal/domain/transcript"
	"github.com/iamwhitegod/arena/internal/types"
)

const (
	detectSystem  = "You are a senior content analyst identifying interesting moments in video content."
	expandSystem  = "You are a senior video editor analyzing complete thought boundaries in spoken content."
	gateSystem    = "You are a senior video editor evaluating whether clips can stand alone without prior context."
	packageSystem = "You are a social media expert creating compelling titles and descriptions for short-form video content."
)

func detectPrompt(formatted string, targetMoments int) string {
	return fmt.Sprintf(`ROLE: Senior content analyst.

TASK:
Identify the %d most interesting and valuable moments in this transcript
that are strong candidates for short-form clips.

IMPORTANT:
You are identifying candidate regions, not final clip boundaries.
Rough timestamps are acceptable at this stage.

LOOK FOR MOMENTS THAT CONTAIN:
1. Strong hooks or pattern interrupts
2. Key insights or "aha" realizations
3. Clear opinions or contrarian takes
4. Actionable advice or lessons
5. Emotional or personal moments
6. Clear problem -> realization -> outcome patterns
7. Statements a viewer would want to quote or share
8. Surprising facts or statistics

DO NOT:
- Try to perfectly align sentence boundaries
- Optimize for standalone completeness (a later stage does that)
- Over-expand candidates for context

Transcript (with timestamps):
%s

OUTPUT JSON ONLY:
{
  "candidates": [
    {
      "rough_start": 123.4,
      "rough_end": 152.8,
      "core_idea": "One-sentence summary of the moment",
      "why_interesting": "Why this moment matters",
      "interest_score": 0.85,
      "content_type": "insight"
    }
  ]
}

RULES:
- Return exactly %d candidates ranked by interest_score (highest first)
- Timestamps are in seconds and may be imprecise
- Focus on idea density, not polish
- Content types: "hook", "insight", "advice", "story", "controversial", "emotional", "problem-solution"
- Interest scores should range 0.5-1.0`, targetMoments, formatted, targetMoments)
}

func expandPrompt(m types.Moment, contextTranscript string, maxExpansion float64) string {
	return fmt.Sprintf(`ROLE: Senior video editor analyzing thought boundaries.

CONTEXT:
An interesting moment was identified in a video:
- Core Idea: %s
- Why Interesting: %s
- Rough Timestamps: [%s] to [%s]
- Content Type: %s

TASK:
Find the COMPLETE THOUGHT BOUNDARIES for this moment.

YOUR FOCUS: Narrative structure ONLY.
- Where does the idea BEGIN (setup)?
- Where does the idea END (payoff)?

DO NOT WORRY ABOUT:
- Whether pronouns are clear (a later stage's job)
- Whether viewers understand context (a later stage's job)

STRATEGY:
1. Look BACKWARD from [%s]: where does the speaker begin setting up this
   idea? Include setup or framing needed for the narrative.
2. Look FORWARD from [%s]: where does this idea reach completion or
   payoff? Include resolution, but do not extend into the next topic.
3. Ensure the expanded clip has a clear beginning, middle, and end.

CONTEXT TRANSCRIPT:
%s

OUTPUT JSON ONLY:
{
  "expanded_start": 123.4,
  "expanded_end": 198.6,
  "thought_summary": "Complete one-sentence summary from setup to payoff",
  "confidence": 0.85
}

HARD CONSTRAINTS:
- expanded_start must be <= %.1f (earlier or same)
- expanded_end must be >= %.1f (later or same)
- NEVER expand more than %.0f seconds backward from the rough start
- NEVER expand more than %.0f seconds forward from the rough end
- If the idea needs more expansion than that, report confidence below 0.5
- Stop expanding when the thought is complete, not when context is perfect`,
		m.CoreIdea, m.WhyInteresting,
		transcript.FormatTimestamp(m.RoughStart), transcript.FormatTimestamp(m.RoughEnd),
		m.ContentType,
		transcript.FormatTimestamp(m.RoughStart), transcript.FormatTimestamp(m.RoughEnd),
		contextTranscript,
		m.RoughStart, m.RoughEnd, maxExpansion, maxExpansion)
}

func gatePrompt(clipText string, start, end float64, th types.Thought, maxAdjustment float64) string {
	duration := end - start
	return fmt.Sprintf(`ROLE: Senior video editor evaluating standalone clip quality.

CONTEXT:
You are evaluating a %.1fs clip for a short-form video platform.
Clip timestamps: [%s] to [%s]
Original core idea: %s

CRITICAL QUESTION:
Can someone who JUST clicked on this clip understand it without any prior
context from the video?

CLIP TRANSCRIPT:
%s

EVALUATION CRITERIA:
1. Who/what context: is it clear who or what this is about? Are pronoun
   referents clear?
2. Topic: is the topic or situation explained within the clip?
3. Stakes: is it clear why this matters?
4. Unresolved references: "this", "that", "the problem" without
   explanation significantly reduce the score.
5. Structure: clear beginning, substance, and resolution.

SCORING GUIDE:
- 0.9-1.0 perfect standalone: topic stated, problem defined, payoff clear
- 0.7-0.9 good standalone: minor inferable gaps
- 0.5-0.7 marginal: some prior knowledge helpful
- 0.3-0.5 poor: key referents undefined
- 0.0-0.3 unusable: meaningless without the full video
Be strict: when in doubt, score lower.

BOUNDARY REFINEMENT RULES:
- You may suggest MINOR adjustments only: at most %.0f seconds per edge
- Only adjust if standalone_score is below 0.7
- If larger changes would be needed, reject instead of expanding

OUTPUT JSON ONLY:
{
  "standalone_score": 0.75,
  "refined_start": %.1f,
  "refined_end": %.1f,
  "changes_made": false,
  "rejection_reason": null,
  "editor_notes": "Brief explanation of score and any issues"
}

FIELD DEFINITIONS:
- changes_made: boolean, REQUIRED - did you adjust the boundaries at all?
- rejection_reason: null or one of "missing_premise", "dangling_reference",
  "incomplete_resolution", "topic_drift", "duration_constraint",
  "structural_issue" (set when score is below 0.4)

RULES:
- Default refined times to the current times unless you have specific
  boundary suggestions
- Score based on what is IN the clip, not what could be added`,
		duration,
		transcript.FormatTimestamp(start), transcript.FormatTimestamp(end),
		th.Moment.CoreIdea, clipText, maxAdjustment, start, end)
}

func packagePrompt(clipText string, start, end float64, clip types.ValidatedClip) string {
	duration := end - start
	return fmt.Sprintf(`ROLE: Social media expert creating content for short-form video platforms.

CONTEXT:
You are packaging a %.1fs clip.
- Type: %s
- Core idea: %s
- Timestamps: [%s] to [%s]
- Standalone score: %.2f/1.0

CLIP TRANSCRIPT:
%s

TASK:
Generate compelling packaging for this clip.

TITLE GUIDELINES:
- Max 60 characters (strict limit)
- Specific, not generic; strong hooks when appropriate

DESCRIPTION GUIDELINES:
- 2-3 sentences: hook, context, optional takeaway
- Natural tone, no excessive emojis

HASHTAG GUIDELINES:
- Exactly 5 hashtags mixing broad reach and niche tags
- No generic tags like #content #video #viral

THUMBNAIL GUIDELINES:
- Pick the best visual moment inside the clip, as a timestamp between
  %.1f and %.1f

OUTPUT JSON ONLY:
{
  "title": "Specific compelling title under 60 chars",
  "description": "Hook sentence. Main point context. Optional value statement.",
  "hashtags": ["#one", "#two", "#three", "#four", "#five"],
  "thumbnail_time": %.1f
}`,
		duration,
		clip.Thought.Moment.ContentType, clip.Thought.Moment.CoreIdea,
		transcript.FormatTimestamp(start), transcript.FormatTimestamp(end),
		clip.StandaloneScore,
		clipText,
		start, end, start+duration/3)
}
