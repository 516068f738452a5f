// Package scores derives named questionnaire scores and risk flags from a
// validated form submission row.
package scores

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/edupipe/neuroreport/internal/forms"
)

// Result holds the derived scores plus any risk flags raised.
type Result struct {
	Values map[string]float64
	Flags  []string
}

// Answers on the form run 1 (never) to 5 (always); a dimension averaging
// below this is flagged for follow-up.
const riskThreshold = 2.0

// formulas define the derived scores, in output order. calc reports
// ok=false when an answer it needs is missing or non-numeric.
var formulas = []struct {
	name    string
	flagged bool // participates in risk flagging
	calc    func(a answers) (float64, bool)
}{
	{"attention", true, func(a answers) (float64, bool) { return a.mean("Q1", "Q2") }},
	{"emotion", true, func(a answers) (float64, bool) { return a.mean("Q3", "Q4") }},
	{"habit", true, func(a answers) (float64, bool) { return a.mean("Q5") }},
	{"total", false, func(a answers) (float64, bool) { return a.mean("Q1", "Q2", "Q3", "Q4", "Q5") }},
}

type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Score computes every formula over the row. A formula whose inputs are
// missing yields no value and an "incomplete_<name>" flag; a flagged
// dimension under the risk threshold yields "low_<name>". One bad answer
// never blocks the other scores.
func (e *Engine) Score(row forms.Row) Result {
	a := parseAnswers(row)
	res := Result{Values: make(map[string]float64, len(formulas))}

	for _, f := range formulas {
		v, ok := f.calc(a)
		if !ok {
			res.Flags = append(res.Flags, "incomplete_"+f.name)
			continue
		}
		v = math.Round(v*100) / 100
		res.Values[f.name] = v
		if f.flagged && v < riskThreshold {
			res.Flags = append(res.Flags, "low_"+f.name)
		}
	}

	if len(res.Flags) > 0 {
		e.logger.Debug("scores.flags", "flags", res.Flags)
	}
	return res
}

type answers map[string]float64

func parseAnswers(row forms.Row) answers {
	a := make(answers, len(row))
	for k, v := range row {
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			a[k] = n
		}
	}
	return a
}

func (a answers) mean(cols ...string) (float64, bool) {
	sum := 0.0
	for _, c := range cols {
		v, ok := a[c]
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum / float64(len(cols)), true
}
