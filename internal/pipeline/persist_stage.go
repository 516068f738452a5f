package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/repository"
)

// PersistStage writes the finished run to the runs table. Persistence is
// best-effort: without a repository, or when the insert fails, the run still
// completes with saved=false in the log.
type PersistStage struct {
	runs   repository.RunRepository
	logger *slog.Logger
}

func NewPersistStage(runs repository.RunRepository, logger *slog.Logger) *PersistStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStage{runs: runs, logger: logger}
}

func (s *PersistStage) Name() string { return constants.StagePersist }

func (s *PersistStage) Run(ctx context.Context, st State) (State, error) {
	if s.runs == nil {
		s.logger.Info("pipeline.persist.skipped", "reason", "no repository configured")
		return st.WithEvent(constants.StagePersist, map[string]any{
			"saved":  false,
			"reason": "not_configured",
		}), nil
	}

	var metrics neuro.MetricRecord
	if st.Metrics != nil {
		metrics = *st.Metrics
	} else {
		metrics.Source = constants.SourceTextOnly
	}

	// The persist event is appended before the insert so the saved audit
	// log contains all stages, its own included.
	rec := &repository.RunRecord{
		ID:           uuid.New(),
		StudentID:    st.Student.ID,
		StudentName:  st.Student.Name,
		StudentGrade: st.Student.Grade,
		Metrics:      metrics,
		ParseStatus:  st.ParseStatus,
		Scores:       st.Scores.Values,
		Flags:        st.Scores.Flags,
		Analysis:     st.Analysis,
		ReportPath:   st.Report.MarkdownPath,
	}
	next := st.WithEvent(constants.StagePersist, map[string]any{
		"saved":  true,
		"run_id": rec.ID.String(),
	})
	rec.Log = next.LogPayloads()
	if err := s.runs.SaveRun(ctx, rec); err != nil {
		s.logger.Warn("pipeline.persist.failed", "student_id", st.Student.ID, "error", err)
		return st.WithEvent(constants.StagePersist, map[string]any{
			"saved": false,
			"error": err.Error(),
		}), nil
	}

	return next, nil
}
