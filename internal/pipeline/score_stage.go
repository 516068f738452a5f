package pipeline

import (
	"context"
	"log/slog"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/scores"
)

// ScoreStage computes self-report dimension scores from the selected row.
// With no row selected it still runs: every dimension degrades to an
// incomplete flag.
type ScoreStage struct {
	engine *scores.Engine
	logger *slog.Logger
}

func NewScoreStage(engine *scores.Engine, logger *slog.Logger) *ScoreStage {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = scores.NewEngine(logger)
	}
	return &ScoreStage{engine: engine, logger: logger}
}

func (s *ScoreStage) Name() string { return constants.StageScore }

func (s *ScoreStage) Run(_ context.Context, st State) (State, error) {
	st.Scores = s.engine.Score(st.Inputs.FormsRow)

	s.logger.Info("pipeline.score.ok",
		"student_id", st.Student.ID,
		"values", len(st.Scores.Values),
		"flags", len(st.Scores.Flags),
	)
	return st.WithEvent(constants.StageScore, map[string]any{
		"values": st.Scores.Values,
		"flags":  st.Scores.Flags,
	}), nil
}
