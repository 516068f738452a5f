package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/scores"
)

func f(v float64) *float64 { return &v }

func sampleData() Data {
	return Data{
		StudentID:    "S123",
		StudentName:  "이서연",
		StudentGrade: "중1",
		Metrics: neuro.MetricRecord{
			Theta:  f(18.5),
			BetaL:  f(9.25),
			SMR:    f(4.105),
			Source: constants.SourceOCRText,
		},
		Scores: scores.Result{
			Values: map[string]float64{"attention": 2.5, "total": 3.0},
			Flags:  []string{"low_attention"},
		},
		Analysis:    "집중력이 다소 낮은 편입니다.",
		GeneratedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sampleData())

	assert.Contains(t, md, "# 학습 리포트: 이서연")
	assert.Contains(t, md, "학생 ID: S123")
	assert.Contains(t, md, "| Theta | 18.500 |")
	assert.Contains(t, md, "| BetaH | - |")
	assert.Contains(t, md, "| SMR | 4.105 |")
	assert.Contains(t, md, "ocr_text")
	assert.Contains(t, md, "| 집중 | 2.50 |")
	assert.Contains(t, md, "low_attention")
	assert.Contains(t, md, "집중력이 다소 낮은 편입니다.")
	assert.Contains(t, md, "2026-03-02")
}

func TestBuildMarkdownEmpty(t *testing.T) {
	md := BuildMarkdown(Data{Metrics: neuro.MetricRecord{Source: constants.SourceTextOnly}})

	assert.Contains(t, md, "# 학습 리포트: -")
	assert.Contains(t, md, "점수 데이터가 없습니다.")
	assert.Contains(t, md, "분석이 생성되지 않았습니다.")
	assert.Contains(t, md, "| Theta | - |")
}

func TestRenderHTMLTables(t *testing.T) {
	html, err := RenderHTML(BuildMarkdown(sampleData()))
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h1>")
}

func TestWriterWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	mdPath, htmlPath, err := w.Write(sampleData())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_S123.md"), mdPath)
	assert.Equal(t, filepath.Join(dir, "report_S123.html"), htmlPath)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "이서연")
}

func TestWriterUnknownStudent(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	d := sampleData()
	d.StudentID = "not-an-id"
	mdPath, _, err := w.Write(d)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_unknown.md"), mdPath)
}

func TestBuildSummaryXLSX(t *testing.T) {
	b, err := BuildSummaryXLSX([]Data{sampleData()}, []string{"/tmp/report_S123.md"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
