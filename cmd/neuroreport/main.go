package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "neuroreport",
	Short: "Builds student learning reports from form exports and measurement PDFs",
	Long: `neuroreport runs the per-student flow: read the questionnaire export,
validate the student's row, score the self-report dimensions, extract band
metrics from the measurement PDF (with OCR fallback), generate the analysis,
and write the Markdown/HTML report.`,
	SilenceUsage: true,
}

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
