// Package pdftext reads page-ordered native text out of PDF documents.
// It is the cheap first rung of the extraction cascade; scanned or
// image-only reports come back (near) empty and fall through to OCR.
package pdftext

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/edupipe/neuroreport/internal/common"
)

type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Text returns the concatenated plain text of every page, in page order.
// A page that fails to decode is skipped rather than failing the document;
// only an unopenable file is an error. The pdf package panics on some
// malformed cross-reference tables, so panics surface as
// ErrUnreadableDocument too.
func (r *Reader) Text(path string) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", common.ErrUnreadableDocument, p)
		}
	}()

	f, doc, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnreadableDocument, err)
	}
	defer f.Close()

	var b strings.Builder
	skipped := 0
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, perr := page.GetPlainText(nil)
		if perr != nil {
			skipped++
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	if skipped > 0 {
		r.logger.Debug("pdftext.pages.skipped", "path", path, "skipped", skipped)
	}
	return b.String(), nil
}
