package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var sidToken = regexp.MustCompile(`(?i)S\d{3,4}`)

// Writer renders reports and persists them under a single output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// Write renders Markdown and HTML for the student and writes both files.
// Returns the written paths. The filename carries the student ID when one
// looks valid, otherwise "unknown".
func (w *Writer) Write(d Data) (mdPath, htmlPath string, err error) {
	start := time.Now()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	sid := "unknown"
	if m := sidToken.FindString(d.StudentID); m != "" {
		sid = m
	}

	md := BuildMarkdown(d)
	mdPath = filepath.Join(w.dir, fmt.Sprintf("report_%s.md", sid))
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", "", fmt.Errorf("write markdown report: %w", err)
	}

	html, err := RenderHTML(md)
	if err != nil {
		return mdPath, "", err
	}
	htmlPath = filepath.Join(w.dir, fmt.Sprintf("report_%s.html", sid))
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return mdPath, "", fmt.Errorf("write html report: %w", err)
	}

	w.logger.Info("report.write.ok",
		"student_id", sid,
		"md_path", mdPath,
		"html_path", htmlPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return mdPath, htmlPath, nil
}
