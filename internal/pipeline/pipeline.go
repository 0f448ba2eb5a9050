package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/iamwhitegod/arena/internal/ports/adapters/openai"
	"github.com/iamwhitegod/arena/internal/types"
	"github.com/iamwhitegod/arena/internal/usecase"
)

type Config struct {
	// TranscriptPath points to the transcript JSON supplied by the
	// transcription collaborator: {"segments": [...], "duration": ...}.
	TranscriptPath string

	// EnergyPath and ScenesPath are optional collaborator outputs.
	EnergyPath string
	ScenesPath string

	OutDir  string
	ClipsN  int
	MinClip time.Duration
	MaxClip time.Duration

	// ExportStages writes each stage's intermediate output as JSON next
	// to the manifest.
	ExportStages bool

	Log *slog.Logger

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// RequestsPerMinute paces outbound LLM requests. Zero disables
	// pacing.
	RequestsPerMinute int
	MaxRetries        int
}

func (c Config) Validate() error {
	if c.TranscriptPath == "" {
		return errors.New("transcript is empty")
	}
	if _, err := os.Stat(c.TranscriptPath); err != nil {
		return fmt.Errorf("stat transcript: %w", err)
	}
	if c.ClipsN <= 0 {
		return fmt.Errorf("clips must be > 0")
	}
	if c.MinClip < 0 || c.MaxClip < 0 {
		return fmt.Errorf("clip durations must be >= 0")
	}
	if c.MinClip > 0 && c.MaxClip > 0 && c.MinClip > c.MaxClip {
		return fmt.Errorf("min clip must be <= max clip")
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("api key is required")
	}
	return nil
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	tr, err := loadTranscript(cfg.TranscriptPath)
	if err != nil {
		return err
	}
	log.Info("transcript loaded", "segments", len(tr.Segments), "duration", tr.Duration)

	var energy []types.EnergySegment
	if cfg.EnergyPath != "" {
		if err := loadJSON(cfg.EnergyPath, &energy); err != nil {
			return fmt.Errorf("load energy segments: %w", err)
		}
	}
	var scenes []types.SceneChange
	if cfg.ScenesPath != "" {
		if err := loadJSON(cfg.ScenesPath, &scenes); err != nil {
			return fmt.Errorf("load scene changes: %w", err)
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1)
	}
	llm := openai.New(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Limiter: limiter,
		Retry:   openai.RetryPolicy{MaxRetries: cfg.MaxRetries},
	})

	uc := usecase.New(usecase.Deps{
		LLM: llm,
		Log: log,
		OnEvent: func(e usecase.Event) {
			log.Info("stage done", "stage", e.Stage, "count", e.Count)
		},
	})

	res, err := uc.Run(ctx, usecase.Input{
		Transcript:  tr,
		Energy:      energy,
		Scenes:      scenes,
		TargetClips: cfg.ClipsN,
		MinClip:     cfg.MinClip.Seconds(),
		MaxClip:     cfg.MaxClip.Seconds(),
	})
	if err != nil {
		return err
	}
	res.Manifest.Input = cfg.TranscriptPath

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.TranscriptPath, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}
	log.Info("output run dir", "path", runOutDir)

	if cfg.ExportStages {
		if err := exportStages(runOutDir, res); err != nil {
			return err
		}
	}

	b, err := json.MarshalIndent(res.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return err
	}
	log.Info("manifest written", "clips", len(res.Manifest.Clips), "path", manifestPath)
	return nil
}

func loadTranscript(path string) (types.Transcript, error) {
	var tr types.Transcript
	if err := loadJSON(path, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("load transcript: %w", err)
	}
	if len(tr.Segments) == 0 {
		return types.Transcript{}, fmt.Errorf("transcript %s has no segments", path)
	}
	return tr, nil
}

func loadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// exportStages writes each stage's intermediate output for debugging.
func exportStages(dir string, res usecase.Result) error {
	stageDir := filepath.Join(dir, "stages")
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return err
	}
	files := map[string]any{
		"stage1_moments.json":   res.Moments,
		"stage2_thoughts.json":  res.Thoughts,
		"stage3_validated.json": res.Validated,
		"stage3_stats.json":     res.GateStats,
		"stage4_packaged.json":  res.Packaged,
		"final_scored.json":     res.Scored,
	}
	for name, v := range files {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(stageDir, name), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func buildRunOutDir(outRoot, inputPath string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputPath, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
