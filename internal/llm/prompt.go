package llm

import (
	"fmt"
	"strings"

	"github.com/edupipe/neuroreport/constants"
)

// BuildSystemPrompt composes the system message for the analysis generator:
// persona, tone constraints, and the required three-paragraph structure.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a warm, professional learning coach who explains neurofeedback and study-habit results to parents and students.",
		"Write in Korean, in plain language a middle-school parent can follow. Avoid clinical jargon; when a band name must appear, add a one-phrase gloss.",
		"Never diagnose. Describe tendencies, not conditions.",
		"Structure the answer as exactly three clearly separated paragraphs:",
		"1) a core summary of the student's current state (focus, emotional balance, habits),",
		"2) concrete training points the student can practice as a weekly routine,",
		"3) a short, warm word of encouragement addressed to the student.",
		"Do not use markdown headers or bullet lists; write flowing paragraphs.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the student identity, band metrics, and score-engine
// output into the user message. Missing values render as "-" so the model does
// not invent readings.
func BuildUserPrompt(req AnalysisRequest) string {
	var b strings.Builder

	b.WriteString("Student: ")
	if name := strings.TrimSpace(req.StudentName); name != "" {
		b.WriteString(name)
	} else {
		b.WriteString("-")
	}
	if grade := strings.TrimSpace(req.StudentGrade); grade != "" {
		b.WriteString(" (")
		b.WriteString(grade)
		b.WriteString(")")
	}
	b.WriteString("\n\nRelative band power (eyes open):\n")
	for _, label := range constants.Labels {
		b.WriteString("- ")
		b.WriteString(string(label))
		b.WriteString(": ")
		if v := req.Metrics.Value(label); v != nil {
			fmt.Fprintf(&b, "%.3f", *v)
		} else {
			b.WriteString("-")
		}
		b.WriteString("\n")
	}
	b.WriteString("Measurement source: ")
	b.WriteString(string(req.Metrics.Source))
	b.WriteString("\n")

	if len(req.Scores.Values) > 0 {
		b.WriteString("\nSelf-report scores (1-5 scale):\n")
		for _, name := range scoreOrder {
			if v, ok := req.Scores.Values[name]; ok {
				fmt.Fprintf(&b, "- %s: %.2f\n", name, v)
			}
		}
	}
	if len(req.Scores.Flags) > 0 {
		b.WriteString("\nFlags raised by the score engine: ")
		b.WriteString(strings.Join(req.Scores.Flags, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\nWrite the three-paragraph analysis now.")
	return b.String()
}

// scoreOrder pins a stable rendering order so prompts are reproducible.
var scoreOrder = []string{"attention", "emotion", "habit", "total"}
