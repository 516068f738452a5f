package neuro

import "strings"

// BestBlock selects the paragraph-like block (blank-line separated) with
// the greatest count of digit characters, on the theory that the metrics
// table is the most numerically dense region. It focuses re-extraction
// after OCR instead of re-scanning the whole noisy page set.
func BestBlock(text string) string {
	blocks := strings.Split(text, "\n\n")
	best, bestCount := blocks[0], countDigits(blocks[0])
	for _, b := range blocks[1:] {
		if c := countDigits(b); c > bestCount {
			best, bestCount = b, c
		}
	}
	return best
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
