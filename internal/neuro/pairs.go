package neuro

import (
	"regexp"
	"strconv"

	"github.com/edupipe/neuroreport/constants"
)

// One recognizer per label: the label token in any of its spellings,
// arbitrary non-numeric filler (whitespace, "=", ":", fullwidth colon),
// then two decimal numbers for the left and right channels.
var pairPatterns = func() map[constants.MetricLabel]*regexp.Regexp {
	m := make(map[constants.MetricLabel]*regexp.Regexp, len(constants.Labels))
	for label, alt := range constants.LabelPatterns {
		m[label] = regexp.MustCompile(`(?i)(?:` + alt + `)\D*?([0-9]+(?:\.[0-9]+)?)\D*?([0-9]+(?:\.[0-9]+)?)`)
	}
	return m
}()

// ParsePairs scans raw text for labeled (left, right) readings. A label
// occurring more than once is overwritten by its last occurrence; labels
// without a full two-number match are simply absent. Never fails.
func ParsePairs(text string) map[constants.MetricLabel]MetricPair {
	pairs := make(map[constants.MetricLabel]MetricPair)
	for _, label := range constants.Labels {
		ms := pairPatterns[label].FindAllStringSubmatch(text, -1)
		if len(ms) == 0 {
			continue
		}
		m := ms[len(ms)-1]
		left, lerr := strconv.ParseFloat(m[1], 64)
		right, rerr := strconv.ParseFloat(m[2], 64)
		if lerr != nil || rerr != nil {
			continue
		}
		pairs[label] = MetricPair{Left: &left, Right: &right}
	}
	return pairs
}
