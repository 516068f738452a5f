package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/report"
)

// ReportStage renders and writes the Markdown and HTML reports. Failing to
// write a report is a real I/O fault and stops the run.
type ReportStage struct {
	writer *report.Writer
	logger *slog.Logger
}

func NewReportStage(writer *report.Writer, logger *slog.Logger) *ReportStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportStage{writer: writer, logger: logger}
}

func (s *ReportStage) Name() string { return constants.StageReport }

func (s *ReportStage) Run(_ context.Context, st State) (State, error) {
	var metrics neuro.MetricRecord
	if st.Metrics != nil {
		metrics = *st.Metrics
	} else {
		metrics.Source = constants.SourceTextOnly
	}

	mdPath, htmlPath, err := s.writer.Write(report.Data{
		StudentID:    st.Student.ID,
		StudentName:  st.Student.Name,
		StudentGrade: st.Student.Grade,
		Metrics:      metrics,
		Scores:       st.Scores,
		Analysis:     st.Analysis,
		GeneratedAt:  time.Now(),
	})
	if err != nil {
		return st, err
	}

	st.Report = Report{MarkdownPath: mdPath, HTMLPath: htmlPath}
	return st.WithEvent(constants.StageReport, map[string]any{
		"md_path":   mdPath,
		"html_path": htmlPath,
	}), nil
}
