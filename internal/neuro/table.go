package neuro

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/edupipe/neuroreport/constants"
)

// The tail region: how many lines after the header may carry the readings.
const tailLines = 5

// headerTokenPatterns must all occur on one line, in any order, for it to
// count as a compact-table header: the four target labels plus the Delta
// and Alpha band tokens, which anchor the header but are never extracted.
var headerTokenPatterns = func() []*regexp.Regexp {
	alts := []string{`delta|델타`, `alpha|알파`}
	for _, label := range constants.Labels {
		alts = append(alts, constants.LabelPatterns[label])
	}
	ps := make([]*regexp.Regexp, len(alts))
	for i, alt := range alts {
		ps[i] = regexp.MustCompile(`(?i)` + alt)
	}
	return ps
}()

var decimalNumber = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?`)

// ParseCompactTable handles reports where a single header line lists the
// band labels and the numeric readings follow run-together on the next few
// lines. Header column order strictly determines label-to-value
// assignment: labels and deglued values are consumed in lock-step, two
// values per label, with no positional column alignment beyond that. The
// walk stops early (partial result) when the values run out. Returns an
// empty mapping when no header line exists.
func ParseCompactTable(text string) map[constants.MetricLabel]MetricPair {
	lines := strings.Split(text, "\n")
	headerIdx := -1
	for i, ln := range lines {
		if isHeaderLine(ln) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	var order []constants.MetricLabel
	for _, tok := range strings.Fields(lines[headerIdx]) {
		if label, ok := constants.ClassifyToken(tok); ok {
			order = append(order, label)
		}
	}

	end := headerIdx + 1 + tailLines
	if end > len(lines) {
		end = len(lines)
	}
	tail := DeglueNumbers(strings.Join(lines[headerIdx+1:end], "\n"))

	var vals []float64
	for _, n := range decimalNumber.FindAllString(tail, -1) {
		if v, err := strconv.ParseFloat(n, 64); err == nil {
			vals = append(vals, v)
		}
	}

	pairs := make(map[constants.MetricLabel]MetricPair)
	i := 0
	for _, label := range order {
		if i+1 >= len(vals) {
			break
		}
		left, right := vals[i], vals[i+1]
		pairs[label] = MetricPair{Left: &left, Right: &right}
		i += 2
	}
	return pairs
}

func isHeaderLine(line string) bool {
	for _, p := range headerTokenPatterns {
		if !p.MatchString(line) {
			return false
		}
	}
	return true
}
