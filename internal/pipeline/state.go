// Package pipeline runs the per-student processing flow: a fixed sequence of
// stages sharing one State value, each stage recording exactly one log event.
package pipeline

import (
	"github.com/edupipe/neuroreport/constants"
	"github.com/edupipe/neuroreport/internal/forms"
	"github.com/edupipe/neuroreport/internal/neuro"
	"github.com/edupipe/neuroreport/internal/scores"
)

// Event is one audit entry appended by a stage.
type Event struct {
	Stage   string         `json:"stage"`
	Payload map[string]any `json:"payload"`
}

// Inputs are the raw artifacts a run starts from.
type Inputs struct {
	FormsPath string
	PDFPath   string
	FormsRow  forms.Row
}

// Student identity resolved during validation.
type Student struct {
	ID    string
	Name  string
	Grade string
}

// Validation summarizes what the schema stage found.
type Validation struct {
	SchemaOK    bool
	SIDSelected bool
	RowCount    int
	Anomalies   []string
}

// Report holds the written report artifact paths.
type Report struct {
	MarkdownPath string
	HTMLPath     string
}

// State is the shared value threaded through the stages. Stages never mutate
// the State they receive; they return an updated copy.
type State struct {
	Inputs      Inputs
	Student     Student
	Validation  Validation
	Metrics     *neuro.MetricRecord
	ParseStatus constants.ParseStatus
	Scores      scores.Result
	Analysis    string
	Report      Report
	Log         []Event
}

// WithEvent returns a copy of the state with one event appended. The log
// slice is copied so earlier snapshots stay intact.
func (s State) WithEvent(stage string, payload map[string]any) State {
	log := make([]Event, len(s.Log), len(s.Log)+1)
	copy(log, s.Log)
	s.Log = append(log, Event{Stage: stage, Payload: payload})
	return s
}

// LogPayloads renders the audit log as plain maps for persistence.
func (s State) LogPayloads() []map[string]any {
	out := make([]map[string]any, 0, len(s.Log))
	for _, ev := range s.Log {
		entry := map[string]any{"stage": ev.Stage}
		for k, v := range ev.Payload {
			entry[k] = v
		}
		out = append(out, entry)
	}
	return out
}
