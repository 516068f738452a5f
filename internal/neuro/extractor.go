package neuro

import (
	"context"
	"log/slog"
	"strings"

	"github.com/edupipe/neuroreport/constants"
)

// textStrategies are the recognizers tried, in order, over a body of text
// until one yields at least one labeled pair.
var textStrategies = []struct {
	name string
	run  func(text string) map[constants.MetricLabel]MetricPair
}{
	{"pair_pattern", ParsePairs},
	{"compact_table", ParseCompactTable},
}

// Extractor runs the full extraction cascade over one report document.
type Extractor struct {
	source TextSource
	ocr    OCRFallback
	logger *slog.Logger
}

func NewExtractor(source TextSource, ocr OCRFallback, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{source: source, ocr: ocr, logger: logger}
}

// Extract produces the four-metric record for the document at path.
//
// The cascade: native text through the recognizers first; only when all
// four averaged values are absent does it rasterize and OCR the document
// and re-run the recognizers over the combined text, focused on its most
// numeric block. One successfully extracted metric suppresses the OCR pass
// for the whole document. The record's source is "ocr_text" only when the
// OCR pass actually produced a value.
//
// The only error is an unopenable document; everything past open degrades
// into absent values instead of failing.
func (e *Extractor) Extract(ctx context.Context, path string) (MetricRecord, error) {
	text, err := e.source.Text(path)
	if err != nil {
		return MetricRecord{Source: constants.SourceTextOnly}, err
	}

	rec := Assemble(e.runStrategies(text), constants.SourceTextOnly)
	if !rec.Empty() {
		e.logger.Debug("neuro.extract.native_hit", "path", path)
		return rec, nil
	}

	ocrText := e.ocr.FallbackText(ctx, path)
	combined := strings.TrimSpace(text + "\n" + ocrText)
	focus := BestBlock(combined)

	pairs := ParsePairs(focus)
	if len(pairs) == 0 {
		pairs = ParseCompactTable(combined)
	}
	ocrRec := Assemble(pairs, constants.SourceOCRText)
	if ocrRec.Empty() {
		// nothing anywhere: keep the all-nil text_only record
		e.logger.Debug("neuro.extract.exhausted", "path", path)
		return rec, nil
	}
	e.logger.Debug("neuro.extract.ocr_hit", "path", path)
	return ocrRec, nil
}

func (e *Extractor) runStrategies(text string) map[constants.MetricLabel]MetricPair {
	for _, s := range textStrategies {
		if pairs := s.run(text); len(pairs) > 0 {
			e.logger.Debug("neuro.strategy.hit", "strategy", s.name, "pairs", len(pairs))
			return pairs
		}
	}
	return nil
}

// Assemble reduces labeled pairs to the final record under the given
// provenance tag. Labels without a pair stay nil.
func Assemble(pairs map[constants.MetricLabel]MetricPair, source constants.SourceTag) MetricRecord {
	rec := MetricRecord{Source: source}
	for _, label := range constants.Labels {
		if p, ok := pairs[label]; ok {
			rec.set(label, AveragePair(&p))
		}
	}
	return rec
}
