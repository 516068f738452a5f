package constants

// SourceTag records which extraction strategy ultimately produced a metric
// record, for downstream trust and diagnostics.
type SourceTag string

// Stable values (store these exact strings in DB and log payloads).
const (
	SourceTextOnly SourceTag = "text_only" // native PDF text (or nothing found at all)
	SourceOCRText  SourceTag = "ocr_text"  // rasterize + OCR pass produced the values
)

// ParseStatus is the outcome reported by the neuro_parse stage.
type ParseStatus string

const (
	ParseStatusNoPDF    ParseStatus = "no_pdf"    // no path was provided
	ParseStatusNotFound ParseStatus = "not_found" // path given but unreadable
	ParseStatusOK       ParseStatus = "ok"        // record assembled (values may still be null)
)
