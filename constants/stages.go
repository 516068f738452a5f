package constants

// Stage names, in the order the orchestrator runs them. These strings key
// the per-stage log events, so they are part of the stable surface.
const (
	StageIngest   = "ingest_inputs"
	StageValidate = "validate_schema"
	StageScore    = "score_engine"
	StageNeuro    = "neuro_parse"
	StageAnalyze  = "ai_teacher_helper"
	StageReport   = "generate_report"
	StagePersist  = "persist_records"
)
