// internal/intent/contract.go
package intent

import (
	"encoding/json"
	"fmt"

	"survey-analyst/internal/common/validation"
	"survey-analyst/internal/models"
)

// ContractSchema is the JSON Schema of a serialised IntentResult.
const ContractSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "IntentResult",
  "oneOf": [
    {
      "type": "object",
      "properties": {
        "error": {"type": "string", "minLength": 1}
      },
      "required": ["error"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {
        "survey_type": {"type": "string", "enum": ["single", "multiple"]},
        "question_type": {"type": "string", "enum": ["quantitative", "qualitative"]},
        "tables": {
          "type": "array",
          "items": {"type": "string", "minLength": 1},
          "minItems": 1,
          "uniqueItems": true
        },
        "diagnostic_id": {"type": ["integer", "null"]}
      },
      "required": ["survey_type", "question_type", "tables", "diagnostic_id"],
      "additionalProperties": false
    }
  ]
}`

var contractSchema = validation.MustCompile(ContractSchema)

// ValidateContract checks a JSON intent document, for instance one written by
// a language model, against the IntentResult contract. The decoded result is
// returned only when the document is valid.
func ValidateContract(raw []byte) (*models.IntentResult, *validation.ValidationResult) {
	report := contractSchema.ValidateJSON(raw)
	if !report.Valid {
		return nil, report
	}

	var result models.IntentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		report.Merge("(root)", err.Error(), "INVALID_JSON")
		return nil, report
	}

	if result.Error == "" {
		switch {
		case result.SurveyType == models.SurveyTypeSingle && len(result.Tables) != 1:
			report.Merge("tables", fmt.Sprintf("survey_type single requires exactly one table, got %d", len(result.Tables)), "CARDINALITY_MISMATCH")
		case result.SurveyType == models.SurveyTypeMultiple && len(result.Tables) < 2:
			report.Merge("tables", "survey_type multiple requires at least two tables", "CARDINALITY_MISMATCH")
		}
	}
	if !report.Valid {
		return nil, report
	}
	return &result, report
}
