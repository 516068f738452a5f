package pipeline

import (
	"context"
	"log/slog"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/llm"
	"github.com/edupipe/neuroreport/internal/neuro"
)

// AnalyzeStage asks the analysis generator for a narrative the report can
// embed. Without a generator, or when the call fails, the run continues and
// the report falls back to its placeholder text.
type AnalyzeStage struct {
	generator llm.AnalysisGenerator
	logger    *slog.Logger
}

func NewAnalyzeStage(generator llm.AnalysisGenerator, logger *slog.Logger) *AnalyzeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeStage{generator: generator, logger: logger}
}

func (s *AnalyzeStage) Name() string { return constants.StageAnalyze }

func (s *AnalyzeStage) Run(ctx context.Context, st State) (State, error) {
	if s.generator == nil {
		s.logger.Info("pipeline.analyze.skipped", "reason", "no generator configured")
		return st.WithEvent(constants.StageAnalyze, map[string]any{
			"generated": false,
			"reason":    "not_configured",
		}), nil
	}

	var metrics neuro.MetricRecord
	if st.Metrics != nil {
		metrics = *st.Metrics
	} else {
		metrics.Source = constants.SourceTextOnly
	}

	analysis, err := s.generator.GenerateAnalysis(ctx, llm.AnalysisRequest{
		StudentName:  st.Student.Name,
		StudentGrade: st.Student.Grade,
		Metrics:      metrics,
		Scores:       st.Scores,
	})
	if err != nil {
		s.logger.Warn("pipeline.analyze.failed", "student_id", st.Student.ID, "error", err)
		return st.WithEvent(constants.StageAnalyze, map[string]any{
			"generated": false,
			"error":     err.Error(),
		}), nil
	}

	st.Analysis = analysis
	s.logger.Info("pipeline.analyze.ok",
		"student_id", st.Student.ID,
		"content_len", len(analysis),
	)
	return st.WithEvent(constants.StageAnalyze, map[string]any{
		"generated":   true,
		"content_len": len(analysis),
	}), nil
}
