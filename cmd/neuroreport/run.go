package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edupipe/neuroreport/internal/common"
	"github.com/edupipe/neuroreport/internal/llm"
	"github.com/edupipe/neuroreport/internal/llm/openai"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/ocr"
	"github.com/edupipe/neuroreport/internal/pdftext"
	"github.com/edupipe/neuroreport/internal/pipeline"
	"github.com/edupipe/neuroreport/internal/report"
	"github.com/edupipe/neuroreport/internal/repository"
)

var (
	runForms string
	runPDF   string
	runOut   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one student",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()
		cfg := common.LoadConfig()
		if runOut != "" {
			cfg.Report.OutputDir = runOut
		}

		deps, cleanup, err := buildDeps(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		st, err := deps.flow.Run(ctx, pipeline.State{
			Inputs: pipeline.Inputs{FormsPath: runForms, PDFPath: runPDF},
		})
		if err != nil {
			return err
		}

		fmt.Printf("Report written: %s\n", st.Report.MarkdownPath)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runForms, "forms", "", "path to the questionnaire export (csv/tsv/xlsx)")
	runCmd.Flags().StringVar(&runPDF, "pdf", "", "path to the measurement PDF (optional)")
	runCmd.Flags().StringVar(&runOut, "out", "", "report output directory (overrides REPORT_OUTPUT_DIR)")
	_ = runCmd.MarkFlagRequired("forms")
	rootCmd.AddCommand(runCmd)
}

type deps struct {
	flow *pipeline.Orchestrator
}

// buildDeps wires the extractor, optional OpenAI client, report writer, and
// run store from configuration. The returned cleanup closes the database.
func buildDeps(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*deps, func(), error) {
	engine := ocr.NewEngine(ocr.Config{
		Tesseract: cfg.OCR.Tesseract,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Language:  cfg.OCR.Language,
		Scale:     cfg.OCR.Scale,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)
	extractor := neuro.NewExtractor(pdftext.NewReader(logger), engine, logger)

	var generator llm.AnalysisGenerator
	if cfg.LLM.APIKey != "" {
		generator = openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("OpenAI client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("OpenAI API key not configured, analysis will be skipped")
	}

	db, pool, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		SQLitePath:  cfg.Database.SQLitePath,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open run store: %w", err)
	}
	cleanup := func() { repository.Close(db, pool, logger) }

	if err := pingStore(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, err
	}

	runs := repository.NewRunRepository(db, logger)
	if err := runs.EnsureSchema(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}

	writer := report.NewWriter(cfg.Report.OutputDir, logger)
	return &deps{
		flow: pipeline.New(logger, extractor, generator, writer, runs),
	}, cleanup, nil
}

func pingStore(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return repository.HealthCheck(ctx, db, 5*time.Second, logger)
}
