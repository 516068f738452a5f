package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/llm"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/report"
	"github.com/edupipe/neuroreport/internal/repository"
)

func f(v float64) *float64 { return &v }

type fakeExtractor struct {
	rec neuro.MetricRecord
	err error
}

func (e *fakeExtractor) Extract(context.Context, string) (neuro.MetricRecord, error) {
	return e.rec, e.err
}

func writeFormsCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forms.csv")
	data := "student_id,name,grade,Q1,Q2,Q3,Q4,Q5\n" +
		"S001,홍길동,중2,4,3,5,4,2\n" +
		"S002,김영희,중1,2,2,3,3,3\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func writePDFStub(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644))
	return path
}

func TestIngestRequiresForms(t *testing.T) {
	st, err := NewIngestStage(nil).Run(context.Background(), State{})
	require.Error(t, err)
	assert.Empty(t, st.Log)
}

func TestValidateSelectsStudentRow(t *testing.T) {
	st := State{Inputs: Inputs{
		FormsPath: writeFormsCSV(t),
		PDFPath:   "S001_홍길동_2026-03-02.pdf",
	}}

	out, err := NewValidateStage(nil).Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, "S001", out.Student.ID)
	assert.Equal(t, "홍길동", out.Student.Name)
	assert.Equal(t, "중2", out.Student.Grade)
	assert.True(t, out.Validation.SchemaOK)
	assert.True(t, out.Validation.SIDSelected)
	assert.Equal(t, 2, out.Validation.RowCount)
	assert.Empty(t, out.Validation.Anomalies)
	assert.Equal(t, "4", out.Inputs.FormsRow["Q1"])
	require.Len(t, out.Log, 1)
	assert.Equal(t, constants.StageValidate, out.Log[0].Stage)
}

func TestValidateDegradesOnUnreadableForms(t *testing.T) {
	st := State{Inputs: Inputs{
		FormsPath: filepath.Join(t.TempDir(), "missing.csv"),
		PDFPath:   "S001_홍길동.pdf",
	}}

	out, err := NewValidateStage(nil).Run(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, out.Validation.SchemaOK)
	require.Len(t, out.Validation.Anomalies, 1)
	assert.Contains(t, out.Validation.Anomalies[0], "unreadable_forms")
	require.Len(t, out.Log, 1)
}

func TestValidateUnknownStudent(t *testing.T) {
	st := State{Inputs: Inputs{
		FormsPath: writeFormsCSV(t),
		PDFPath:   "S999_아무개.pdf",
	}}

	out, err := NewValidateStage(nil).Run(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, out.Validation.SIDSelected)
	assert.Contains(t, out.Validation.Anomalies, "student_row_not_found: S999")
}

func TestNeuroStageStatuses(t *testing.T) {
	ctx := context.Background()

	t.Run("no pdf", func(t *testing.T) {
		out, err := NewNeuroStage(&fakeExtractor{}, nil).Run(ctx, State{})
		require.NoError(t, err)
		assert.Equal(t, constants.ParseStatusNoPDF, out.ParseStatus)
		assert.Nil(t, out.Metrics)
	})

	t.Run("missing file", func(t *testing.T) {
		st := State{Inputs: Inputs{PDFPath: filepath.Join(t.TempDir(), "gone.pdf")}}
		out, err := NewNeuroStage(&fakeExtractor{}, nil).Run(ctx, st)
		require.NoError(t, err)
		assert.Equal(t, constants.ParseStatusNotFound, out.ParseStatus)
	})

	t.Run("extractor error degrades", func(t *testing.T) {
		st := State{Inputs: Inputs{PDFPath: writePDFStub(t, "S001.pdf")}}
		out, err := NewNeuroStage(&fakeExtractor{err: fmt.Errorf("boom")}, nil).Run(ctx, st)
		require.NoError(t, err)
		assert.Equal(t, constants.ParseStatusNotFound, out.ParseStatus)
		assert.Nil(t, out.Metrics)
	})

	t.Run("ok", func(t *testing.T) {
		rec := neuro.MetricRecord{Theta: f(18.5), Source: constants.SourceTextOnly}
		st := State{Inputs: Inputs{PDFPath: writePDFStub(t, "S001.pdf")}}
		out, err := NewNeuroStage(&fakeExtractor{rec: rec}, nil).Run(ctx, st)
		require.NoError(t, err)
		assert.Equal(t, constants.ParseStatusOK, out.ParseStatus)
		require.NotNil(t, out.Metrics)
		assert.Equal(t, 18.5, *out.Metrics.Theta)
		require.Len(t, out.Log, 1)
		assert.Equal(t, "ok", out.Log[0].Payload["status"])
		assert.Equal(t, "text_only", out.Log[0].Payload["source"])
	})
}

type fakeGenerator struct {
	text string
	err  error
}

func (g *fakeGenerator) GenerateAnalysis(_ context.Context, _ llm.AnalysisRequest) (string, error) {
	return g.text, g.err
}

func TestAnalyzeStageSetsAnalysis(t *testing.T) {
	gen := &fakeGenerator{text: "분석 결과"}
	out, err := NewAnalyzeStage(gen, nil).Run(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, "분석 결과", out.Analysis)
	require.Len(t, out.Log, 1)
	assert.Equal(t, true, out.Log[0].Payload["generated"])
}

func TestAnalyzeStageDegradesOnError(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("api down")}
	out, err := NewAnalyzeStage(gen, nil).Run(context.Background(), State{})
	require.NoError(t, err)
	assert.Empty(t, out.Analysis)
	assert.Equal(t, false, out.Log[0].Payload["generated"])
}

func TestAnalyzeStageDegradesWithoutGenerator(t *testing.T) {
	out, err := NewAnalyzeStage(nil, nil).Run(context.Background(), State{})
	require.NoError(t, err)
	assert.Empty(t, out.Analysis)
	require.Len(t, out.Log, 1)
	assert.Equal(t, false, out.Log[0].Payload["generated"])
}

func TestWithEventDoesNotShareLog(t *testing.T) {
	base := State{}.WithEvent("a", nil)
	b := base.WithEvent("b", nil)
	c := base.WithEvent("c", nil)

	require.Len(t, base.Log, 1)
	assert.Equal(t, "b", b.Log[1].Stage)
	assert.Equal(t, "c", c.Log[1].Stage)
}

type noEventStage struct{}

func (noEventStage) Name() string                                  { return "no_event" }
func (noEventStage) Run(_ context.Context, st State) (State, error) { return st, nil }

func TestOrchestratorEnforcesOneEvent(t *testing.T) {
	o := NewOrchestrator(nil, noEventStage{})
	_, err := o.Run(context.Background(), State{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appended 0 log events")
}

type failStage struct{}

func (failStage) Name() string                                  { return "fail" }
func (failStage) Run(_ context.Context, st State) (State, error) { return st, fmt.Errorf("broken") }

func TestOrchestratorPropagatesStageError(t *testing.T) {
	o := NewOrchestrator(nil, NewIngestStage(nil), failStage{})
	st := State{Inputs: Inputs{FormsPath: writeFormsCSV(t)}}
	out, err := o.Run(context.Background(), st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage fail")
	// ingest ran and logged before the failure
	require.Len(t, out.Log, 1)
}

func TestFullFlow(t *testing.T) {
	ctx := context.Background()
	formsPath := writeFormsCSV(t)
	pdfPath := writePDFStub(t, "S001_홍길동_2026-03-02.pdf")
	outDir := t.TempDir()

	db, _, err := repository.Open(ctx, repository.Config{
		SQLitePath: filepath.Join(t.TempDir(), "flow.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	runs := repository.NewRunRepository(db, nil)
	require.NoError(t, runs.EnsureSchema(ctx))

	extractor := &fakeExtractor{rec: neuro.MetricRecord{
		Theta:  f(18.5),
		BetaL:  f(9.2),
		BetaH:  f(7.1),
		SMR:    f(4.4),
		Source: constants.SourceOCRText,
	}}

	o := New(nil, extractor, nil, report.NewWriter(outDir, nil), runs)
	st, err := o.Run(ctx, State{Inputs: Inputs{FormsPath: formsPath, PDFPath: pdfPath}})
	require.NoError(t, err)

	require.Len(t, st.Log, 7)
	stages := make([]string, len(st.Log))
	for i, ev := range st.Log {
		stages[i] = ev.Stage
	}
	assert.Equal(t, []string{
		constants.StageIngest,
		constants.StageValidate,
		constants.StageScore,
		constants.StageNeuro,
		constants.StageAnalyze,
		constants.StageReport,
		constants.StagePersist,
	}, stages)

	assert.Equal(t, constants.ParseStatusOK, st.ParseStatus)
	assert.FileExists(t, st.Report.MarkdownPath)
	assert.FileExists(t, st.Report.HTMLPath)
	assert.Equal(t, true, st.Log[6].Payload["saved"])

	saved, err := runs.ListRuns(ctx, "S001")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "홍길동", saved[0].StudentName)
	assert.Equal(t, constants.SourceOCRText, saved[0].Metrics.Source)
	require.Len(t, saved[0].Log, 7)
	last := saved[0].Log[6]
	assert.Equal(t, constants.StagePersist, last["stage"])
	assert.Equal(t, true, last["saved"])
}
