package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamwhitegod/arena/internal/pipeline"
)

func run(cmd *cobra.Command, transcript string) error {
	outDir, _ := cmd.Flags().GetString("out")
	clipsN, _ := cmd.Flags().GetInt("clips")
	energyPath, _ := cmd.Flags().GetString("energy")
	scenesPath, _ := cmd.Flags().GetString("scenes")
	exportStages, _ := cmd.Flags().GetBool("export-stages")
	minSec, _ := cmd.Flags().GetInt("min")
	maxSec, _ := cmd.Flags().GetInt("max")
	rpm, _ := cmd.Flags().GetInt("rpm")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return errors.New("OPENAI_API_KEY is required (set it in .env)")
	}

	absIn, err := filepath.Abs(transcript)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		TranscriptPath: absIn,
		EnergyPath:     energyPath,
		ScenesPath:     scenesPath,
		OutDir:         outDir,
		ClipsN:         clipsN,
		MinClip:        time.Duration(minSec) * time.Second,
		MaxClip:        time.Duration(maxSec) * time.Second,
		ExportStages:   exportStages,
		Log:            slog.Default(),

		OpenAIAPIKey:      apiKey,
		OpenAIModel:       getenvDefault("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		RequestsPerMinute: rpm,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
