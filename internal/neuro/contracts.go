// Package neuro extracts the four relative-power indicators (Theta, BetaL,
// BetaH, SMR) out of a semi-structured neurofeedback PDF report. Reports in
// the wild range from clean text layers to scanned images with run-together
// digit columns, so extraction is a cascade of increasingly expensive
// strategies: native text parse, compact-table heuristic, rasterize + OCR.
package neuro

import (
	"context"

	"github.com/edupipe/neuroreport/constants"
)

// TextSource produces the page-ordered native text of a report document.
type TextSource interface {
	Text(path string) (string, error)
}

// OCRFallback produces OCR text for a whole document. It degrades to the
// empty string on failure, never an error.
type OCRFallback interface {
	FallbackText(ctx context.Context, path string) string
}

// MetricPair is one (left channel, right channel) reading for a single
// indicator, before averaging. Produced transiently by the recognizers.
type MetricPair struct {
	Left  *float64
	Right *float64
}

// MetricRecord is the final normalized record. All four keys are always
// present; nil means "not extractable", never "key missing", so consumers
// can tell measured-near-zero from unreadable.
type MetricRecord struct {
	Theta  *float64            `json:"theta_rel_open"`
	BetaL  *float64            `json:"betaL_rel_open"`
	BetaH  *float64            `json:"betaH_rel_open"`
	SMR    *float64            `json:"smr_rel_open"`
	Source constants.SourceTag `json:"source"`
}

// Value returns the averaged score for one label, nil when absent.
func (r MetricRecord) Value(label constants.MetricLabel) *float64 {
	switch label {
	case constants.Theta:
		return r.Theta
	case constants.BetaL:
		return r.BetaL
	case constants.BetaH:
		return r.BetaH
	case constants.SMR:
		return r.SMR
	}
	return nil
}

func (r *MetricRecord) set(label constants.MetricLabel, v *float64) {
	switch label {
	case constants.Theta:
		r.Theta = v
	case constants.BetaL:
		r.BetaL = v
	case constants.BetaH:
		r.BetaH = v
	case constants.SMR:
		r.SMR = v
	}
}

// Empty reports whether all four values are absent.
func (r MetricRecord) Empty() bool {
	return r.Theta == nil && r.BetaL == nil && r.BetaH == nil && r.SMR == nil
}

// Payload flattens the record into a log-event payload.
func (r MetricRecord) Payload() map[string]any {
	return map[string]any{
		"theta_rel_open": deref(r.Theta),
		"betaL_rel_open": deref(r.BetaL),
		"betaH_rel_open": deref(r.BetaH),
		"smr_rel_open":   deref(r.SMR),
		"source":         string(r.Source),
	}
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
