package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/edupipe/neuroreport/constants"
)

// BuildSummaryXLSX returns an XLSX workbook (as bytes) summarizing a batch of
// processed students, one row per report.
func BuildSummaryXLSX(rows []Data, reportPaths []string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Reports"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Student ID", "Name", "Grade"}
	for _, label := range constants.Labels {
		headers = append(headers, string(label))
	}
	headers = append(headers, "Source", "Total Score", "Flags", "Report Path")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, d := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, orDash(d.StudentID))
		write(2, orDash(d.StudentName))
		write(3, orDash(d.StudentGrade))
		col := 4
		for _, label := range constants.Labels {
			write(col, metricCell(d.Metrics.Value(label)))
			col++
		}
		write(col, string(d.Metrics.Source))
		col++
		if v, ok := d.Scores.Values["total"]; ok {
			write(col, fmt.Sprintf("%.2f", v))
		} else {
			write(col, "-")
		}
		col++
		write(col, strings.Join(d.Scores.Flags, ", "))
		col++
		if i < len(reportPaths) {
			write(col, reportPaths[i])
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "C", 14)
	_ = f.SetColWidth(sheet, "D", "G", 10)
	_ = f.SetColWidth(sheet, "J", "K", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("report.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
