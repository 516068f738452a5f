// neuroparse runs the metric extraction cascade on one PDF and prints the
// resulting record as JSON. Debug tool for checking what a report yields
// before wiring it into a full run.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/edupipe/neuroreport/internal/common"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/ocr"
	"github.com/edupipe/neuroreport/internal/pdftext"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "neuroparse <report.pdf>")
		os.Exit(2)
	}
	pdfPath := os.Args[1]
	if _, err := os.Stat(pdfPath); err != nil {
		logger.Error("cannot stat pdf", "path", pdfPath, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	engine := ocr.NewEngine(ocr.Config{
		Tesseract: cfg.OCR.Tesseract,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Language:  cfg.OCR.Language,
		Scale:     cfg.OCR.Scale,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)
	extractor := neuro.NewExtractor(pdftext.NewReader(logger), engine, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	rec, err := extractor.Extract(ctx, pdfPath)
	dur := time.Since(start)
	if err != nil {
		logger.Error("extraction failed", "path", pdfPath, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"path", pdfPath,
		"source", rec.Source,
		"duration_ms", dur.Milliseconds(),
	)

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Error("encode record", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
