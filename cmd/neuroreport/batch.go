package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/async"
	"github.com/edupipe/neuroreport/internal/common"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/report"
)

var (
	batchDir     string
	batchForms   string
	batchOut     string
	batchXLSX    string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a directory of measurement PDFs against one form export",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()
		cfg := common.LoadConfig()
		if batchOut != "" {
			cfg.Report.OutputDir = batchOut
		}
		if batchXLSX == "" {
			batchXLSX = filepath.Join(filepath.Dir(batchDir), "reports.xlsx")
		}

		deps, cleanup, err := buildDeps(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		pdfs, err := listPDFs(batchDir)
		if err != nil {
			return err
		}
		if len(pdfs) == 0 {
			return fmt.Errorf("no PDF files under %s", batchDir)
		}

		start := time.Now()
		queue := async.NewRunQueue(deps.flow, logger,
			async.WithWorkers(batchWorkers),
			async.WithQueueSize(len(pdfs)),
		)
		for _, pdf := range pdfs {
			_ = queue.Enqueue(ctx, async.Job{FormsPath: batchForms, PDFPath: pdf})
		}
		queue.Shutdown(ctx)

		var (
			rows      []report.Data
			paths     []string
			processed int
			failures  int
		)
		for res := range queue.Results() {
			if res.Err != nil {
				failures++
				continue
			}
			processed++

			st := res.State
			var metrics neuro.MetricRecord
			if st.Metrics != nil {
				metrics = *st.Metrics
			} else {
				metrics.Source = constants.SourceTextOnly
			}
			rows = append(rows, report.Data{
				StudentID:    st.Student.ID,
				StudentName:  st.Student.Name,
				StudentGrade: st.Student.Grade,
				Metrics:      metrics,
				Scores:       st.Scores,
			})
			paths = append(paths, st.Report.MarkdownPath)
		}

		if len(rows) > 0 {
			xlsxBytes, err := report.BuildSummaryXLSX(rows, paths, logger)
			if err != nil {
				return fmt.Errorf("build summary workbook: %w", err)
			}
			if err := os.WriteFile(batchXLSX, xlsxBytes, 0o644); err != nil {
				return fmt.Errorf("write summary workbook: %w", err)
			}
		}

		logger.Info("batch complete",
			"pdfs", len(pdfs),
			"processed", processed,
			"failures", failures,
			"summary", batchXLSX,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		fmt.Printf("Batch complete: %d processed, %d failed, summary %s\n", processed, failures, batchXLSX)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of measurement PDFs")
	batchCmd.Flags().StringVar(&batchForms, "forms", "", "path to the questionnaire export (csv/tsv/xlsx)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "report output directory (overrides REPORT_OUTPUT_DIR)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "summary workbook path (default <dir>/../reports.xlsx)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent runs")
	_ = batchCmd.MarkFlagRequired("dir")
	_ = batchCmd.MarkFlagRequired("forms")
	rootCmd.AddCommand(batchCmd)
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf directory: %w", err)
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}
