package constants

import "strings"

// MetricLabel tags one of the four relative-power bands extracted from a
// neurofeedback report.
type MetricLabel string

// Stable values (stored in DB rows and log payloads).
const (
	Theta MetricLabel = "Theta"
	BetaL MetricLabel = "BetaL"
	BetaH MetricLabel = "BetaH"
	SMR   MetricLabel = "SMR"
)

// Labels is the canonical label order.
var Labels = []MetricLabel{Theta, BetaL, BetaH, SMR}

// LabelPatterns holds, per label, the regex alternation over every
// recognized token spelling: English, Korean, and Greek-letter variants.
// This is the single place the bilingual vocabulary lives; the pair
// recognizer and the compact-table classifier both derive from it.
var LabelPatterns = map[MetricLabel]string{
	Theta: `theta|세타|θ`,
	BetaL: `betal|저\s*베타|βl`,
	BetaH: `betah|고\s*베타|βh`,
	SMR:   `smr|에스엠알|sensorimotor`,
}

// ClassifyToken maps a single header token to its label. Matching is by
// containment: OCR output glues punctuation onto tokens, and the Korean
// short forms ("저", "고") appear inside longer words like "저베타".
func ClassifyToken(tok string) (MetricLabel, bool) {
	t := strings.ToLower(tok)
	switch {
	case containsAny(t, "theta", "세타", "θ"):
		return Theta, true
	case containsAny(t, "betal", "βl", "저"):
		return BetaL, true
	case containsAny(t, "betah", "βh", "고"):
		return BetaH, true
	case containsAny(t, "smr", "sensorimotor", "에스엠알"):
		return SMR, true
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
