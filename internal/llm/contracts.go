package llm

import (
	"context"

	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/scores"
)

// AnalysisRequest carries everything the teacher-helper needs to write an
// interpretation of one student's results.
type AnalysisRequest struct {
	StudentName  string
	StudentGrade string
	Metrics      neuro.MetricRecord
	Scores       scores.Result
}

// AnalysisGenerator is the interface the pipeline depends on. The returned
// string is the three-part analysis text (summary, training points,
// encouragement).
type AnalysisGenerator interface {
	GenerateAnalysis(ctx context.Context, req AnalysisRequest) (string, error)
}
