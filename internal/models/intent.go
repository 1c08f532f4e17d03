// internal/models/intent.go
package models

import "encoding/json"

type SurveyType string

const (
	SurveyTypeSingle   SurveyType = "single"
	SurveyTypeMultiple SurveyType = "multiple"
)

type QuestionType string

const (
	QuestionTypeQuantitative QuestionType = "quantitative"
	QuestionTypeQualitative  QuestionType = "qualitative"
)

// IntentResult is the structured reading of one survey question.
// When Error is set every other field is empty.
type IntentResult struct {
	SurveyType   SurveyType   `json:"survey_type,omitempty"`
	QuestionType QuestionType `json:"question_type,omitempty"`
	Tables       []string     `json:"tables,omitempty"`
	DiagnosticID *int64       `json:"diagnostic_id"`
	Error        string       `json:"error,omitempty"`
}

// ErrorIntent returns an error-only result.
func ErrorIntent(msg string) *IntentResult {
	return &IntentResult{Error: msg}
}

// Failed reports whether the result carries an error.
func (r *IntentResult) Failed() bool {
	return r != nil && r.Error != ""
}

// MarshalJSON emits exactly {"error": ...} for failed results and the four
// contract keys otherwise, with diagnostic_id null when absent.
func (r IntentResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Error})
	}
	tables := r.Tables
	if tables == nil {
		tables = []string{}
	}
	return json.Marshal(struct {
		SurveyType   SurveyType   `json:"survey_type"`
		QuestionType QuestionType `json:"question_type"`
		Tables       []string     `json:"tables"`
		DiagnosticID *int64       `json:"diagnostic_id"`
	}{
		SurveyType:   r.SurveyType,
		QuestionType: r.QuestionType,
		Tables:       tables,
		DiagnosticID: r.DiagnosticID,
	})
}
