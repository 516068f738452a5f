package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/common"
)

// IngestStage checks the run has its input artifacts and records what it got.
// The forms table is mandatory; the PDF is optional and its absence is
// handled later as a no_pdf parse.
type IngestStage struct {
	logger *slog.Logger
}

func NewIngestStage(logger *slog.Logger) *IngestStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestStage{logger: logger}
}

func (s *IngestStage) Name() string { return constants.StageIngest }

func (s *IngestStage) Run(_ context.Context, st State) (State, error) {
	if st.Inputs.FormsPath == "" {
		return st, fmt.Errorf("%w: forms table path is empty", common.ErrMissingInput)
	}

	s.logger.Info("pipeline.ingest.ok",
		"forms_path", st.Inputs.FormsPath,
		"pdf_path", st.Inputs.PDFPath,
	)
	return st.WithEvent(constants.StageIngest, map[string]any{
		"forms_path": st.Inputs.FormsPath,
		"pdf_path":   st.Inputs.PDFPath,
		"has_pdf":    st.Inputs.PDFPath != "",
	}), nil
}
