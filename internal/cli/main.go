package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present
	configureLogger()

	root := &cobra.Command{
		Use:          "arena <transcript.json>",
		Short:        "Extract short-form clip candidates from a transcript",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "out", "Output directory")
	root.Flags().Int("clips", 10, "Number of clips")
	root.Flags().String("energy", "", "Audio energy JSON from the loudness collaborator")
	root.Flags().String("scenes", "", "Scene change JSON from the scene-detection collaborator")
	root.Flags().Bool("export-stages", false, "Write per-stage debug JSON next to the manifest")

	// Hidden tuning flags (internal)
	root.Flags().Int("min", 0, "Min clip duration seconds")
	root.Flags().Int("max", 90, "Max clip duration seconds")
	root.Flags().Int("rpm", 0, "Max LLM requests per minute")
	_ = root.Flags().MarkHidden("min")
	_ = root.Flags().MarkHidden("max")
	_ = root.Flags().MarkHidden("rpm")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
