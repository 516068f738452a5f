package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/edupipe/neuroreport/internal/common"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	Language string // tesseract language hint, default "kor+eng"
	Scale    int    // rasterization upscale factor, default 2 (2x base 72 DPI)
	MaxPages int    // 0 = no limit
}

// Engine drives tesseract over rasterized report pages. It is the last rung
// of the extraction cascade and deliberately never fails: a report whose
// pages cannot be rendered or recognized degrades to empty OCR text.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "kor+eng"
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewEngineWithRunner is NewEngine with a stubbed command runner, for tests.
func NewEngineWithRunner(cfg Config, r Runner, logger *slog.Logger) *Engine {
	e := NewEngine(cfg, logger)
	e.runner = r
	return e
}

// Recognize runs tesseract over one page image. An empty langHint lets
// tesseract fall back to its default traineddata, which is the retry path
// for installations missing the kor pack.
func (e *Engine) Recognize(ctx context.Context, imagePath, langHint string) (string, error) {
	args := []string{imagePath, "stdout"}
	if langHint != "" {
		args = append(args, "-l", langHint)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("%w: tesseract: %s", common.ErrOCREngineFailure, truncate(string(errb), 512))
	}
	return string(out), nil
}

// FallbackText rasterizes every page of the PDF at the configured upscale
// and concatenates the per-page OCR text in page order. A page whose
// recognition fails with the language hint is retried once without it and
// skipped if it still fails. Total failure returns "".
func (e *Engine) FallbackText(ctx context.Context, pdfPath string) string {
	tmpDir, err := os.MkdirTemp("", "nr-pp-*")
	if err != nil {
		e.logger.Error("ocr.tmpdir.failed", "error", err)
		return ""
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("ocr.tmpdir.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	dpi := 72 * e.cfg.Scale
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", dpi), "-png", pdfPath, prefix)
	if err != nil {
		e.logger.Warn("ocr.rasterize.failed", "path", pdfPath, "stderr", truncate(string(errb), 512))
		return ""
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPages(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		e.logger.Warn("ocr.rasterize.no_pages", "path", pdfPath)
		return ""
	}

	var b strings.Builder
	skipped := 0
	for _, img := range matches {
		txt, rerr := e.Recognize(ctx, img, e.cfg.Language)
		if rerr != nil {
			txt, rerr = e.Recognize(ctx, img, "")
		}
		if rerr != nil {
			skipped++
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	if skipped > 0 {
		e.logger.Warn("ocr.pages.skipped", "path", pdfPath, "skipped", skipped, "total", len(matches))
	}
	return b.String()
}

var pageSuffix = regexp.MustCompile(`-(\d+)\.png$`)

// sortPages orders rasterized page files by their numeric page suffix, so
// page-10 sorts after page-2 even when pdftoppm does not zero-pad.
func sortPages(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		ni, iok := pageNumber(paths[i])
		nj, jok := pageNumber(paths[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})
}

func pageNumber(path string) (int, bool) {
	m := pageSuffix.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
