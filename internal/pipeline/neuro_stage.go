package pipeline

import (
	"context"
	"log/slog"
	"os"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/neuro"
)

// MetricExtractor produces the band-metric record for a report PDF.
type MetricExtractor interface {
	Extract(ctx context.Context, path string) (neuro.MetricRecord, error)
}

// NeuroStage runs metric extraction on the report PDF. A missing or
// unreadable document degrades to a parse status; it never fails the run.
type NeuroStage struct {
	extractor MetricExtractor
	logger    *slog.Logger
}

func NewNeuroStage(extractor MetricExtractor, logger *slog.Logger) *NeuroStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &NeuroStage{extractor: extractor, logger: logger}
}

func (s *NeuroStage) Name() string { return constants.StageNeuro }

func (s *NeuroStage) Run(ctx context.Context, st State) (State, error) {
	if st.Inputs.PDFPath == "" {
		st.ParseStatus = constants.ParseStatusNoPDF
		s.logger.Info("pipeline.neuro.no_pdf", "student_id", st.Student.ID)
		return st.WithEvent(constants.StageNeuro, map[string]any{
			"status": string(constants.ParseStatusNoPDF),
		}), nil
	}

	if _, err := os.Stat(st.Inputs.PDFPath); err != nil {
		st.ParseStatus = constants.ParseStatusNotFound
		s.logger.Warn("pipeline.neuro.not_found", "path", st.Inputs.PDFPath, "error", err)
		return st.WithEvent(constants.StageNeuro, map[string]any{
			"status": string(constants.ParseStatusNotFound),
			"error":  err.Error(),
		}), nil
	}

	rec, err := s.extractor.Extract(ctx, st.Inputs.PDFPath)
	if err != nil {
		st.ParseStatus = constants.ParseStatusNotFound
		s.logger.Warn("pipeline.neuro.unreadable", "path", st.Inputs.PDFPath, "error", err)
		return st.WithEvent(constants.StageNeuro, map[string]any{
			"status": string(constants.ParseStatusNotFound),
			"error":  err.Error(),
		}), nil
	}

	st.ParseStatus = constants.ParseStatusOK
	st.Metrics = &rec

	s.logger.Info("pipeline.neuro.ok",
		"student_id", st.Student.ID,
		"source", rec.Source,
	)
	payload := rec.Payload()
	payload["status"] = string(constants.ParseStatusOK)
	return st.WithEvent(constants.StageNeuro, payload), nil
}
