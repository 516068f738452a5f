package common

import "errors"

// Extraction-cascade taxonomy. MissingInput and UnreadableDocument
// short-circuit the neuro_parse stage (logged, state otherwise unchanged);
// OcrEngineFailure is retried once without a language hint and then
// degrades to empty OCR text. "No metrics found" is a valid degraded
// result, not an error, so it has no sentinel.
var (
	ErrMissingInput       = errors.New("missing input")
	ErrUnreadableDocument = errors.New("unreadable document")
	ErrOCREngineFailure   = errors.New("ocr engine failure")
)

// Forms and persistence taxonomy. NotFound marks a lookup miss, not a
// storage failure; Validation marks a schema violation in an otherwise
// readable row.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)
