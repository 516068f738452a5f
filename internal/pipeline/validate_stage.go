package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/forms"
)

// ValidateStage reads the form table, resolves the student from the report
// filename, selects that student's row, and validates it against the
// submission schema. Problems degrade into anomalies; only the absence of
// any usable input was already caught by ingest.
type ValidateStage struct {
	logger *slog.Logger
}

func NewValidateStage(logger *slog.Logger) *ValidateStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStage{logger: logger}
}

func (s *ValidateStage) Name() string { return constants.StageValidate }

func (s *ValidateStage) Run(_ context.Context, st State) (State, error) {
	var v Validation

	// Student identity comes from the report filename when a PDF is present,
	// otherwise from the forms filename.
	idSource := st.Inputs.PDFPath
	if idSource == "" {
		idSource = st.Inputs.FormsPath
	}
	sid, name := forms.StudentFromFilename(idSource)
	st.Student.ID = sid
	st.Student.Name = name

	table, err := forms.ReadTable(st.Inputs.FormsPath)
	if err != nil {
		v.Anomalies = append(v.Anomalies, fmt.Sprintf("unreadable_forms: %v", err))
		s.logger.Warn("pipeline.validate.unreadable_forms", "path", st.Inputs.FormsPath, "error", err)
		st.Validation = v
		return st.WithEvent(constants.StageValidate, validatePayload(st.Student, v)), nil
	}
	v.RowCount = len(table.Rows)

	if missing := table.MissingColumns(); len(missing) > 0 {
		v.Anomalies = append(v.Anomalies, "missing_columns: "+strings.Join(missing, ","))
	}

	if sid == "" {
		v.Anomalies = append(v.Anomalies, "student_id_not_in_filename")
	} else if row, ok := table.SelectRow(sid); ok {
		v.SIDSelected = true
		st.Inputs.FormsRow = row

		// Prefer identity columns from the table when present.
		if n := strings.TrimSpace(row["name"]); n != "" {
			st.Student.Name = n
		}
		st.Student.Grade = strings.TrimSpace(row["grade"])

		if err := forms.ValidateRow(row); err != nil {
			v.Anomalies = append(v.Anomalies, fmt.Sprintf("schema_violation: %v", err))
		} else {
			v.SchemaOK = true
		}
	} else {
		v.Anomalies = append(v.Anomalies, "student_row_not_found: "+sid)
	}

	s.logger.Info("pipeline.validate.ok",
		"student_id", st.Student.ID,
		"rows", v.RowCount,
		"schema_ok", v.SchemaOK,
		"anomalies", len(v.Anomalies),
	)
	st.Validation = v
	return st.WithEvent(constants.StageValidate, validatePayload(st.Student, v)), nil
}

func validatePayload(student Student, v Validation) map[string]any {
	return map[string]any{
		"student_id":   student.ID,
		"student_name": student.Name,
		"rows":         v.RowCount,
		"schema_ok":    v.SchemaOK,
		"sid_selected": v.SIDSelected,
		"anomalies":    v.Anomalies,
	}
}
