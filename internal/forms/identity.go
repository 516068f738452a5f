package forms

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	sidPattern = regexp.MustCompile(`(?i)(S\d{3,4})`)
	hangulName = regexp.MustCompile(`[가-힣]{2,}`)
)

// StudentFromFilename pulls the student id ("S" + 3-4 digits) and, when
// present, the Hangul name out of a report filename shaped like
// "S001_홍길동_2025-09-01.pdf". Either return value may be empty.
func StudentFromFilename(path string) (sid, name string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := sidPattern.FindString(stem); m != "" {
		sid = strings.ToUpper(m)
	}
	parts := strings.Split(stem, "_")
	if len(parts) >= 2 {
		name = hangulName.FindString(parts[1])
	}
	return sid, name
}
