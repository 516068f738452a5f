package forms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"

	"github.com/edupipe/neuroreport/internal/common"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadTable_CSV(t *testing.T) {
	path := writeTemp(t, "forms.csv", []byte("student_id,Q1,Q2,Q3,Q4,Q5\nS001,3,4,2,5,1\nS002,1,1,1,1,1\n"))

	table, err := ReadTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"student_id", "Q1", "Q2", "Q3", "Q4", "Q5"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "S001", table.Rows[0]["student_id"])
	assert.Equal(t, "5", table.Rows[0]["Q4"])
}

func TestReadTable_CSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("student_id,Q1,Q2,Q3,Q4,Q5\nS001,1,2,3,4,5\n")...)
	path := writeTemp(t, "forms.csv", data)

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "student_id", table.Columns[0], "BOM must not stick to the first header")
}

func TestReadTable_CSVKoreanEncoding(t *testing.T) {
	utf := "student_id,student_name,Q1,Q2,Q3,Q4,Q5\nS001,홍길동,1,2,3,4,5\n"
	enc, err := korean.EUCKR.NewEncoder().Bytes([]byte(utf))
	require.NoError(t, err)
	path := writeTemp(t, "forms.csv", enc)

	table, err := ReadTable(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "홍길동", table.Rows[0]["student_name"])
}

func TestReadTable_TabDelimited(t *testing.T) {
	path := writeTemp(t, "forms.tsv", []byte("student_id\tQ1\tQ2\tQ3\tQ4\tQ5\nS001\t1\t2\t3\t4\t5\n"))

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Empty(t, table.MissingColumns())
	assert.Equal(t, "3", table.Rows[0]["Q3"])
}

func TestReadTable_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := []string{"student_id", "Q1", "Q2", "Q3", "Q4", "Q5"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	values := []any{"S003", 1, 2, 3, 4, 5}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	path := filepath.Join(t.TempDir(), "forms.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := ReadTable(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "S003", table.Rows[0]["student_id"])
	assert.Equal(t, "4", table.Rows[0]["Q4"])
}

func TestReadTable_UnsupportedExtension(t *testing.T) {
	_, err := ReadTable("forms.pdf")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestTable_MissingColumns(t *testing.T) {
	table := &Table{Columns: []string{"student_id", "Q1", "Q2"}}
	assert.Equal(t, []string{"Q3", "Q4", "Q5"}, table.MissingColumns())
}

func TestTable_SelectRow(t *testing.T) {
	table := &Table{
		Columns: []string{"student_id"},
		Rows: []Row{
			{"student_id": "s001"},
			{"student_id": "S002"},
		},
	}

	row, ok := table.SelectRow("S001")
	require.True(t, ok)
	assert.Equal(t, "s001", row["student_id"])

	_, ok = table.SelectRow("S999")
	assert.False(t, ok)
}

func TestStudentFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantSID  string
		wantName string
	}{
		{"full", "data/raw/S001_홍길동_2025-09-01.pdf", "S001", "홍길동"},
		{"lowercase-sid", "s012_김철수.pdf", "S012", "김철수"},
		{"four-digit", "S1234_report.pdf", "S1234", ""},
		{"no-sid", "report_final.pdf", "", ""},
		{"no-name-part", "S001.pdf", "S001", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid, name := StudentFromFilename(tt.path)
			assert.Equal(t, tt.wantSID, sid)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestValidateRow(t *testing.T) {
	good := Row{"student_id": "S001", "Q1": "1", "Q2": "2", "Q3": "3", "Q4": "4", "Q5": "5"}
	assert.NoError(t, ValidateRow(good))

	badID := Row{"student_id": "X1", "Q1": "1", "Q2": "2", "Q3": "3", "Q4": "4", "Q5": "5"}
	assert.ErrorIs(t, ValidateRow(badID), common.ErrValidation)

	badAnswer := Row{"student_id": "S001", "Q1": "often", "Q2": "2", "Q3": "3", "Q4": "4", "Q5": "5"}
	assert.Error(t, ValidateRow(badAnswer))

	missingAnswer := Row{"student_id": "S001", "Q1": "1"}
	assert.Error(t, ValidateRow(missingAnswer))
}
