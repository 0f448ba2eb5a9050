// Package editorial implements the four-stage candidate pipeline: moment
// detection, thought-boundary expansion, the standalone quality gate, and
// packaging. Each stage consumes the previous stage's output type and asks
// the external text-completion service exactly one kind of question; the
// editorial contract between stages is enforced by the prompts and by the
// hard caps checked here.
package editorial

import (
	"io"
	"log/slog"
)

func logOrNop(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
