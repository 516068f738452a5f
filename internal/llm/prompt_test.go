package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/scores"
)

func fptr(v float64) *float64 { return &v }

func TestBuildUserPrompt(t *testing.T) {
	req := AnalysisRequest{
		StudentName:  "김민준",
		StudentGrade: "중2",
		Metrics: neuro.MetricRecord{
			Theta:  fptr(12.345),
			SMR:    fptr(4.5),
			Source: constants.SourceTextOnly,
		},
		Scores: scores.Result{
			Values: map[string]float64{"attention": 3.5, "total": 3.1},
			Flags:  []string{"low_emotion"},
		},
	}

	got := BuildUserPrompt(req)

	assert.Contains(t, got, "김민준")
	assert.Contains(t, got, "(중2)")
	assert.Contains(t, got, "Theta: 12.345")
	assert.Contains(t, got, "SMR: 4.500")
	assert.Contains(t, got, "BetaL: -")
	assert.Contains(t, got, "BetaH: -")
	assert.Contains(t, got, "text_only")
	assert.Contains(t, got, "attention: 3.50")
	assert.Contains(t, got, "low_emotion")
}

func TestBuildUserPromptEmptyStudent(t *testing.T) {
	got := BuildUserPrompt(AnalysisRequest{
		Metrics: neuro.MetricRecord{Source: constants.SourceTextOnly},
	})
	assert.Contains(t, got, "Student: -\n")
	assert.Contains(t, got, "Theta: -")
}

func TestBuildSystemPromptShape(t *testing.T) {
	sys := BuildSystemPrompt()
	require.NotEmpty(t, sys)
	assert.Contains(t, sys, "three clearly separated paragraphs")
	assert.Contains(t, sys, "encouragement")
}
