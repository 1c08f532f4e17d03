package models

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var camelKey = regexp.MustCompile(`"[a-z]+[A-Z][A-Za-z]*":`)

func TestRunResponse_JSONKeysAreSnakeCase(t *testing.T) {
	id := int64(42)
	mean := 4.1
	resp := RunResponse{
		RunID:     "run-1",
		UserID:    "u-1",
		SessionID: "s-1",
		Status:    RunStatusCompleted,
		Response:  "Diagnostic 42: ...",
		Intent: &IntentResult{
			SurveyType:   SurveyTypeSingle,
			QuestionType: QuestionTypeQuantitative,
			Tables:       []string{"rating_data"},
			DiagnosticID: &id,
		},
		Query: &Query{SQL: "SELECT 1", Tables: []string{"rating_data"}, QuestionType: QuestionTypeQuantitative},
		Analysis: &Analysis{
			QuestionType: QuestionTypeQuantitative,
			DiagnosticID: &id,
			Sources:      []SourceStats{{Source: "rating_data", Responses: 3, Mean: &mean}},
			Overall:      OverallStats{Responses: 3, Mean: &mean, TopAnswer: "n/a"},
			Chart:        ChartSpec{Type: "bar", XField: "source", YField: "mean"},
		},
		Members:    []MemberOutput{{Member: "Intent agent", Status: "ok", DurationMs: 3}},
		DurationMs: 12,
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Empty(t, camelKey.FindAllString(string(raw), -1), string(raw))
	assert.Contains(t, string(raw), `"question_type":"quantitative"`)
	assert.Contains(t, string(raw), `"x_field":"source"`)
	assert.Contains(t, string(raw), `"top_answer":"n/a"`)
}

func TestQueryResult_JSONKeys(t *testing.T) {
	raw, err := json.Marshal(QueryResult{RowCount: 2, QueryExecutionTime: 7})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"row_count":2`)
	assert.Contains(t, string(raw), `"query_execution_time_ms":7`)
}

func TestTurn_JSONKeys(t *testing.T) {
	raw, err := json.Marshal(Turn{RunID: "run-1", Status: RunStatusCompleted})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"run_id":"run-1"`)
}
