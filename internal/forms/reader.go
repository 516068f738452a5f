// Package forms decodes tabular form submissions (questionnaire answers)
// and validates the selected student row. Exports arrive as CSV in a mix of
// encodings (UTF-8, UTF-8 with BOM, CP949/EUC-KR) or as XLSX workbooks.
package forms

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/common"
)

// Row is one form submission keyed by column header.
type Row map[string]string

// Table is a decoded form-submission table.
type Table struct {
	Columns []string
	Rows    []Row
}

// ReadTable decodes the table at path, choosing the reader by extension.
func ReadTable(path string) (*Table, error) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.CSV:
		return readCSV(path)
	case constants.XLSX:
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: unsupported form table extension %q", common.ErrInvalidInput, filepath.Ext(path))
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form table: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	text := decodeBytes(raw)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse form table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("form table is empty")
	}
	return tableFromRecords(records), nil
}

// decodeBytes tries UTF-8 first, then the Korean legacy encoding
// (EUC-KR/CP949), then Latin-1 as the cannot-fail fallback.
func decodeBytes(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if dec, err := korean.EUCKR.NewDecoder().Bytes(raw); err == nil {
		return string(dec)
	}
	dec, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(dec)
}

// sniffDelimiter picks the separator with the most occurrences on the
// header line. Comma wins ties.
func sniffDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	best, bestCount := ',', strings.Count(header, ",")
	for _, c := range []rune{'\t', ';'} {
		if n := strings.Count(header, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("form table is empty")
	}
	return tableFromRecords(records), nil
}

func tableFromRecords(records [][]string) *Table {
	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}

	t := &Table{Columns: columns}
	for _, rec := range records[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// MissingColumns lists required columns absent from the table header.
func (t *Table) MissingColumns() []string {
	have := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// SelectRow returns the first row whose student_id matches sid
// (case-insensitive). ok is false when no row matches.
func (t *Table) SelectRow(sid string) (Row, bool) {
	for _, row := range t.Rows {
		if strings.EqualFold(strings.TrimSpace(row["student_id"]), sid) {
			return row, true
		}
	}
	return nil, false
}
