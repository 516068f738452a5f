package neuro

import (
	"regexp"
	"strings"
)

// gluedDecimal matches a short decimal immediately followed by the start
// of another decimal: the junction where two run-together readings meet
// in a compact table ("44.553.8"). Requiring the remainder to be a
// decimal itself keeps a lone "44.55" intact instead of backtracking
// \d{1,2} down to one fractional digit and splitting it.
var gluedDecimal = regexp.MustCompile(`(\d+\.\d{1,2})\d+\.\d`)

// DeglueNumbers inserts a single space after every decimal number that is
// immediately followed by another decimal: "44.553.8" -> "44.55 3.8".
// Idempotent on already-separated text.
//
// The followed-by-decimal condition is a lookahead in spirit; RE2 has no
// lookahead, so the scan resumes at the glued digit instead of consuming
// it, which keeps chains like "10.111.212.3" splitting at every junction.
func DeglueNumbers(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		loc := gluedDecimal.FindStringSubmatchIndex(s[i:])
		if loc == nil {
			b.WriteString(s[i:])
			break
		}
		// loc[2]:loc[3] bound the decimal; the glued digit sits at loc[3].
		b.WriteString(s[i : i+loc[3]])
		b.WriteByte(' ')
		i += loc[3]
	}
	return b.String()
}
