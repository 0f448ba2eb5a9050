// Package transcript holds the shared transcript plumbing every stage
// depends on: timestamp formatting for prompts, text extraction for a time
// range, token estimation, and token-budget chunking of oversized inputs.
package transcript

import (
	"fmt"
	"strings"

	"github.com/iamwhitegod/arena/internal/types"
)

// FormatTimestamp renders seconds as MM:SS.
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	minutes := int(sec) / 60
	secs := int(sec) % 60
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// Format renders segments as "[MM:SS] text" lines for prompt excerpts.
// Segments with empty text are skipped.
func Format(segs []types.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[" + FormatTimestamp(s.Start) + "] " + text)
	}
	return b.String()
}

// ExtractText concatenates the text of every segment overlapping
// [start, end).
func ExtractText(segs []types.Segment, start, end float64) string {
	var parts []string
	for _, s := range segs {
		if s.Start < end && s.End > start {
			text := strings.TrimSpace(s.Text)
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

// Window returns the segments fully contained in [start, end].
func Window(segs []types.Segment, start, end float64) []types.Segment {
	var out []types.Segment
	for _, s := range segs {
		if s.Start >= start && s.End <= end {
			out = append(out, s)
		}
	}
	return out
}

// EstimateTokens approximates the token cost of text at four characters
// per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}

func segmentTokens(s types.Segment) int {
	return EstimateTokens("[" + FormatTimestamp(s.Start) + "] " + s.Text + "\n")
}
