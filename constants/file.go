package constants

import "strings"

// Form table formats accepted by the validate stage.
const (
	CSV  = "CSV"
	XLSX = "XLSX"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a form table format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "csv", "txt", "tsv":
		return CSV
	case "xlsx", "xlsm":
		return XLSX
	default:
		return ""
	}
}
