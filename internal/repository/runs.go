package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/common"
	"github.com/edupipe/neuroreport/internal/neuro"
)

// RunRecord is one completed pipeline run for one student.
type RunRecord struct {
	ID           uuid.UUID
	StudentID    string
	StudentName  string
	StudentGrade string
	Metrics      neuro.MetricRecord
	ParseStatus  constants.ParseStatus
	Scores       map[string]float64
	Flags        []string
	Analysis     string
	ReportPath   string
	Log          []map[string]any
	CreatedAt    time.Time
}

type RunRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, rec *RunRecord) error
	GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error)
	ListRuns(ctx context.Context, studentID string) ([]*RunRecord, error)
}

type runRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRunRepository(db *sql.DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{db: db, logger: logger}
}

// Placeholders use the $n form, which both pgx and sqlite accept.
const runsDDL = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	student_id    TEXT NOT NULL,
	student_name  TEXT NOT NULL DEFAULT '',
	student_grade TEXT NOT NULL DEFAULT '',
	theta_rel     DOUBLE PRECISION,
	betal_rel     DOUBLE PRECISION,
	betah_rel     DOUBLE PRECISION,
	smr_rel       DOUBLE PRECISION,
	source        TEXT NOT NULL DEFAULT '',
	parse_status  TEXT NOT NULL DEFAULT '',
	scores_json   TEXT NOT NULL DEFAULT '{}',
	flags_json    TEXT NOT NULL DEFAULT '[]',
	analysis      TEXT NOT NULL DEFAULT '',
	report_path   TEXT NOT NULL DEFAULT '',
	log_json      TEXT NOT NULL DEFAULT '[]',
	created_at    TIMESTAMP NOT NULL
)`

func (r *runRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, runsDDL); err != nil {
		r.logger.Error("failed to ensure runs schema", "error", err)
		return fmt.Errorf("ensure runs schema: %w", err)
	}
	return nil
}

func (r *runRepository) SaveRun(ctx context.Context, rec *RunRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	scoresJSON, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	flagsJSON, err := json.Marshal(rec.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	logJSON, err := json.Marshal(rec.Log)
	if err != nil {
		return fmt.Errorf("marshal log: %w", err)
	}

	const q = `INSERT INTO runs (
		id, student_id, student_name, student_grade,
		theta_rel, betal_rel, betah_rel, smr_rel,
		source, parse_status, scores_json, flags_json,
		analysis, report_path, log_json, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	_, err = r.db.ExecContext(ctx, q,
		rec.ID.String(), rec.StudentID, rec.StudentName, rec.StudentGrade,
		nullFloat(rec.Metrics.Theta), nullFloat(rec.Metrics.BetaL),
		nullFloat(rec.Metrics.BetaH), nullFloat(rec.Metrics.SMR),
		string(rec.Metrics.Source), string(rec.ParseStatus),
		string(scoresJSON), string(flagsJSON),
		rec.Analysis, rec.ReportPath, string(logJSON), rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to save run", "student_id", rec.StudentID, "error", err)
		return fmt.Errorf("%w: save run: %v", common.ErrDatabase, err)
	}

	r.logger.Info("repository.run.saved",
		"run_id", rec.ID.String(),
		"student_id", rec.StudentID,
		"source", rec.Metrics.Source,
	)
	return nil
}

func (r *runRepository) GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	const q = `SELECT id, student_id, student_name, student_grade,
		theta_rel, betal_rel, betah_rel, smr_rel,
		source, parse_status, scores_json, flags_json,
		analysis, report_path, log_json, created_at
	FROM runs WHERE id = $1`

	rec, err := scanRun(r.db.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
		}
		r.logger.Error("failed to get run", "run_id", id.String(), "error", err)
		return nil, err
	}
	return rec, nil
}

func (r *runRepository) ListRuns(ctx context.Context, studentID string) ([]*RunRecord, error) {
	const q = `SELECT id, student_id, student_name, student_grade,
		theta_rel, betal_rel, betah_rel, smr_rel,
		source, parse_status, scores_json, flags_json,
		analysis, report_path, log_json, created_at
	FROM runs WHERE student_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, q, studentID)
	if err != nil {
		r.logger.Error("failed to list runs", "student_id", studentID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		rec        RunRecord
		idStr      string
		theta      sql.NullFloat64
		betaL      sql.NullFloat64
		betaH      sql.NullFloat64
		smr        sql.NullFloat64
		source     string
		status     string
		scoresJSON string
		flagsJSON  string
		logJSON    string
	)
	err := row.Scan(&idStr, &rec.StudentID, &rec.StudentName, &rec.StudentGrade,
		&theta, &betaL, &betaH, &smr,
		&source, &status, &scoresJSON, &flagsJSON,
		&rec.Analysis, &rec.ReportPath, &logJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	rec.Metrics.Theta = floatPtr(theta)
	rec.Metrics.BetaL = floatPtr(betaL)
	rec.Metrics.BetaH = floatPtr(betaH)
	rec.Metrics.SMR = floatPtr(smr)
	rec.Metrics.Source = constants.SourceTag(source)
	rec.ParseStatus = constants.ParseStatus(status)

	if err := json.Unmarshal([]byte(scoresJSON), &rec.Scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	if err := json.Unmarshal([]byte(flagsJSON), &rec.Flags); err != nil {
		return nil, fmt.Errorf("decode flags: %w", err)
	}
	if err := json.Unmarshal([]byte(logJSON), &rec.Log); err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}
	return &rec, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
