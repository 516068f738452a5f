package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/scores"
)

// Data is everything the report template needs for one student.
type Data struct {
	StudentID    string
	StudentName  string
	StudentGrade string
	Metrics      neuro.MetricRecord
	Scores       scores.Result
	Analysis     string
	GeneratedAt  time.Time
}

// scoreTitles maps score-engine dimension names to report headings.
var scoreTitles = map[string]string{
	"attention": "집중",
	"emotion":   "정서",
	"habit":     "습관",
	"total":     "종합",
}

var scoreOrder = []string{"attention", "emotion", "habit", "total"}

// BuildMarkdown renders the per-student report as Markdown.
// Missing metric values render as "-" rather than being omitted, so a parent
// can see which bands were not measured.
func BuildMarkdown(d Data) string {
	var b strings.Builder

	name := strings.TrimSpace(d.StudentName)
	if name == "" {
		name = "-"
	}
	b.WriteString("# 학습 리포트: ")
	b.WriteString(name)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "- 학생 ID: %s\n", orDash(d.StudentID))
	fmt.Fprintf(&b, "- 학년: %s\n", orDash(d.StudentGrade))
	if !d.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- 생성일: %s\n", d.GeneratedAt.Format("2006-01-02"))
	}
	b.WriteString("\n## 자기보고 점수\n\n")
	if len(d.Scores.Values) == 0 {
		b.WriteString("점수 데이터가 없습니다.\n")
	} else {
		b.WriteString("| 영역 | 점수 |\n|---|---|\n")
		for _, key := range scoreOrder {
			if v, ok := d.Scores.Values[key]; ok {
				fmt.Fprintf(&b, "| %s | %.2f |\n", scoreTitles[key], v)
			}
		}
	}
	if len(d.Scores.Flags) > 0 {
		b.WriteString("\n주의 표시: ")
		b.WriteString(strings.Join(d.Scores.Flags, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\n## 뇌파 상대 파워 (개안)\n\n")
	b.WriteString("| 밴드 | 값 |\n|---|---|\n")
	for _, label := range constants.Labels {
		fmt.Fprintf(&b, "| %s | %s |\n", label, metricCell(d.Metrics.Value(label)))
	}
	fmt.Fprintf(&b, "\n측정 방식: %s\n", d.Metrics.Source)

	b.WriteString("\n## AI 선생님 분석\n\n")
	if a := strings.TrimSpace(d.Analysis); a != "" {
		b.WriteString(a)
		b.WriteString("\n")
	} else {
		b.WriteString("분석이 생성되지 않았습니다.\n")
	}

	return b.String()
}

// RenderHTML converts the Markdown report to a standalone HTML fragment.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func metricCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
