package editorial

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/iamwhitegod/arena/internal/domain/transcript"
	"github.com/iamwhitegod/arena/internal/ports"
	"github.com/iamwhitegod/arena/internal/types"
)

const (
	// DefaultContextWindowSec is how far around a moment's midpoint the
	// expander looks for setup and payoff.
	DefaultContextWindowSec = 60.0

	// DefaultMaxExpansionSec caps how far a boundary may move beyond the
	// rough timestamps on each side.
	DefaultMaxExpansionSec = 30.0

	// DefaultExpandWorkers bounds concurrent in-flight requests.
	DefaultExpandWorkers = 5

	expandTemperature = 0.5
)

type ExpanderConfig struct {
	ContextWindowSec float64
	MaxExpansionSec  float64
	Workers          int
}

// ThoughtBoundaryExpander is stage 2: it expands each rough moment to
// structurally complete narrative boundaries (setup through payoff). It
// deliberately does not judge standalone comprehension; that is the
// quality gate's exclusive concern.
type ThoughtBoundaryExpander struct {
	llm ports.Completer
	log *slog.Logger
	cfg ExpanderConfig
}

func NewThoughtBoundaryExpander(llm ports.Completer, log *slog.Logger, cfg ExpanderConfig) *ThoughtBoundaryExpander {
	if cfg.ContextWindowSec <= 0 {
		cfg.ContextWindowSec = DefaultContextWindowSec
	}
	if cfg.MaxExpansionSec <= 0 {
		cfg.MaxExpansionSec = DefaultMaxExpansionSec
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultExpandWorkers
	}
	return &ThoughtBoundaryExpander{llm: llm, log: logOrNop(log), cfg: cfg}
}

// ExpandAll expands every moment across a bounded worker pool, collecting
// results as they complete. Output order does not match input order;
// consumers rely on the embedded source moment, never on index
// correspondence. A single moment's failure is logged and excluded.
func (e *ThoughtBoundaryExpander) ExpandAll(ctx context.Context, moments []types.Moment, segs []types.Segment) []types.Thought {
	if len(moments) == 0 || len(segs) == 0 {
		return nil
	}

	var (
		mu  sync.Mutex
		out []types.Thought
	)
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Workers)
	for i, m := range moments {
		i, m := i, m
		g.Go(func() error {
			th, err := e.expandOne(ctx, m, segs)
			if err != nil {
				e.log.Warn("moment dropped", "moment", i+1, "error", err)
				return nil
			}
			mu.Lock()
			out = append(out, th)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *ThoughtBoundaryExpander) expandOne(ctx context.Context, m types.Moment, segs []types.Segment) (types.Thought, error) {
	center := (m.RoughStart + m.RoughEnd) / 2
	ctxStart := max(0, center-e.cfg.ContextWindowSec)
	ctxEnd := center + e.cfg.ContextWindowSec
	window := transcript.Window(segs, ctxStart, ctxEnd)
	if len(window) == 0 {
		return types.Thought{}, fmt.Errorf("no context segments around %.1fs", center)
	}

	content, err := e.llm.Complete(ctx, ports.CompletionRequest{
		System:      expandSystem,
		User:        expandPrompt(m, transcript.Format(window), e.cfg.MaxExpansionSec),
		Temperature: expandTemperature,
	})
	if err != nil {
		return types.Thought{}, err
	}

	doc, err := parseObject(content)
	if err != nil {
		return types.Thought{}, err
	}
	start, err := requireNumber(doc, "expanded_start")
	if err != nil {
		return types.Thought{}, err
	}
	end, err := requireNumber(doc, "expanded_end")
	if err != nil {
		return types.Thought{}, err
	}
	summary, err := requireString(doc, "thought_summary")
	if err != nil {
		return types.Thought{}, err
	}
	confidence, err := requireNumber(doc, "confidence")
	if err != nil {
		return types.Thought{}, err
	}

	start, end = e.clampBounds(m, start, end)
	return types.Thought{
		ExpandedStart: start,
		ExpandedEnd:   end,
		Summary:       summary,
		Confidence:    confidence,
		Moment:        m,
	}, nil
}

// clampBounds enforces the expansion contract: expanded bounds contain the
// rough bounds and move at most MaxExpansionSec beyond them per side.
func (e *ThoughtBoundaryExpander) clampBounds(m types.Moment, start, end float64) (float64, float64) {
	if start > m.RoughStart {
		start = m.RoughStart
	}
	if start < m.RoughStart-e.cfg.MaxExpansionSec {
		start = m.RoughStart - e.cfg.MaxExpansionSec
	}
	if start < 0 {
		start = 0
	}
	if end < m.RoughEnd {
		end = m.RoughEnd
	}
	if end > m.RoughEnd+e.cfg.MaxExpansionSec {
		end = m.RoughEnd + e.cfg.MaxExpansionSec
	}
	return start, end
}
