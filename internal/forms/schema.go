package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/edupipe/neuroreport/internal/common"
)

// RequiredColumns are the columns every form export must carry.
var RequiredColumns = []string{"student_id", "Q1", "Q2", "Q3", "Q4", "Q5"}

// SubmissionSchema returns the JSON-Schema (draft 2020-12 subset) for one
// selected submission row, as a generic map.
func SubmissionSchema() map[string]any {
	props := map[string]any{
		"student_id": map[string]any{"type": "string", "pattern": `^[Ss]\d{3,4}$`},
	}
	for _, q := range questionColumns() {
		props[q] = map[string]any{"type": "number", "minimum": 0.0}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   RequiredColumns,
	}
}

// ValidateRow checks one selected submission row against the schema.
// Answer columns are parsed to numbers first; a non-numeric answer is a
// schema violation, not a parse error.
func ValidateRow(row Row) error {
	doc := make(map[string]any, len(row))
	for k, v := range row {
		if isQuestionColumn(k) {
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				doc[k] = n
				continue
			}
		}
		doc[k] = v
	}

	b, err := json.Marshal(SubmissionSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("submission.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("submission.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: row does not match schema: %v", common.ErrValidation, err)
	}
	return nil
}

func questionColumns() []string {
	return RequiredColumns[1:]
}

func isQuestionColumn(name string) bool {
	for _, q := range questionColumns() {
		if name == q {
			return true
		}
	}
	return false
}
