package pipeline

import (
	"log/slog"

	"github.com/edupipe/neuroreport/internal/llm"
	"github.com/edupipe/neuroreport/internal/report"
	"github.com/edupipe/neuroreport/internal/repository"
	"github.com/edupipe/neuroreport/internal/scores"
)

// New assembles the standard flow in its fixed order. The generator and runs
// repository may be nil; those stages degrade instead of failing.
func New(
	logger *slog.Logger,
	extractor MetricExtractor,
	generator llm.AnalysisGenerator,
	writer *report.Writer,
	runs repository.RunRepository,
) *Orchestrator {
	return NewOrchestrator(logger,
		NewIngestStage(logger),
		NewValidateStage(logger),
		NewScoreStage(scores.NewEngine(logger), logger),
		NewNeuroStage(extractor, logger),
		NewAnalyzeStage(generator, logger),
		NewReportStage(writer, logger),
		NewPersistStage(runs, logger),
	)
}
