package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Stage is one unit of the flow. Run returns the updated state; it must
// append exactly one event to the log, whether it succeeded or degraded.
type Stage interface {
	Name() string
	Run(ctx context.Context, st State) (State, error)
}

// Orchestrator executes stages in a fixed order, checking the one-event
// contract after each stage. A stage error stops the flow; the partial state
// is returned so callers can inspect the log up to the failure.
type Orchestrator struct {
	stages []Stage
	logger *slog.Logger
}

func NewOrchestrator(logger *slog.Logger, stages ...Stage) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{stages: stages, logger: logger}
}

func (o *Orchestrator) Run(ctx context.Context, st State) (State, error) {
	start := time.Now()
	for _, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		before := len(st.Log)
		stageStart := time.Now()
		o.logger.Info("pipeline.stage.start", "stage", stage.Name())

		next, err := stage.Run(ctx, st)
		if err != nil {
			o.logger.Error("pipeline.stage.failed",
				"stage", stage.Name(),
				"error", err,
				"elapsed_ms", time.Since(stageStart).Milliseconds(),
			)
			return next, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		if got := len(next.Log) - before; got != 1 {
			return next, fmt.Errorf("stage %s appended %d log events, want 1", stage.Name(), got)
		}

		o.logger.Info("pipeline.stage.ok",
			"stage", stage.Name(),
			"elapsed_ms", time.Since(stageStart).Milliseconds(),
		)
		st = next
	}

	o.logger.Info("pipeline.run.ok",
		"stages", len(o.stages),
		"student_id", st.Student.ID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return st, nil
}
