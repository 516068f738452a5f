package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/common"
	"github.com/edupipe/neuroreport/internal/neuro"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := Open(context.Background(), Config{
		SQLitePath: filepath.Join(t.TempDir(), "runs_test.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func f(v float64) *float64 { return &v }

func TestSaveAndGetRun(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	rec := &RunRecord{
		StudentID:    "S123",
		StudentName:  "박지우",
		StudentGrade: "중3",
		Metrics: neuro.MetricRecord{
			Theta:  f(18.5),
			SMR:    f(4.105),
			Source: constants.SourceOCRText,
		},
		ParseStatus: constants.ParseStatusOK,
		Scores:      map[string]float64{"attention": 3.5, "total": 3.2},
		Flags:       []string{"low_habit"},
		Analysis:    "분석 텍스트",
		ReportPath:  "/tmp/report_S123.md",
		Log: []map[string]any{
			{"stage": "neuro_parse", "status": "ok"},
		},
	}
	require.NoError(t, repo.SaveRun(ctx, rec))
	require.NotEqual(t, uuid.Nil, rec.ID)
	require.False(t, rec.CreatedAt.IsZero())

	got, err := repo.GetRun(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "S123", got.StudentID)
	assert.Equal(t, "박지우", got.StudentName)
	require.NotNil(t, got.Metrics.Theta)
	assert.InDelta(t, 18.5, *got.Metrics.Theta, 1e-9)
	assert.Nil(t, got.Metrics.BetaL)
	assert.Equal(t, constants.SourceOCRText, got.Metrics.Source)
	assert.Equal(t, constants.ParseStatusOK, got.ParseStatus)
	assert.Equal(t, 3.5, got.Scores["attention"])
	assert.Equal(t, []string{"low_habit"}, got.Flags)
	assert.Equal(t, "/tmp/report_S123.md", got.ReportPath)
	require.Len(t, got.Log, 1)
	assert.Equal(t, "neuro_parse", got.Log[0]["stage"])
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	for _, sid := range []string{"S100", "S100", "S200"} {
		require.NoError(t, repo.SaveRun(ctx, &RunRecord{
			StudentID: sid,
			Metrics:   neuro.MetricRecord{Source: constants.SourceTextOnly},
			Scores:    map[string]float64{},
		}))
	}

	runs, err := repo.ListRuns(ctx, "S100")
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = repo.ListRuns(ctx, "S999")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGetRunNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	_, err := repo.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveRunWithoutSchema(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)

	// no EnsureSchema: the insert hits a missing table
	err := repo.SaveRun(context.Background(), &RunRecord{StudentID: "S001"})
	assert.ErrorIs(t, err, common.ErrDatabase)
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))
}
