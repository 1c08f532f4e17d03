// internal/workers/survey/analyze-survey-results/handler_test.go
package analyzesurveyresults

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/analysis"
	commonerrors "survey-analyst/internal/common/errors"
	"survey-analyst/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

type stubLLM struct {
	reply string
	err   error
}

func (s stubLLM) Complete(context.Context, string, string) (string, error) {
	return s.reply, s.err
}

func newTestHandler(t *testing.T, narrator *stubLLM) *Handler {
	var a *analysis.Analyzer
	if narrator != nil {
		a = analysis.NewAnalyzer(narrator, logger.NewTestLogger(t))
	} else {
		a = analysis.NewAnalyzer(nil, logger.NewTestLogger(t))
	}
	return NewHandler(&Config{Timeout: 2 * time.Second}, a, logger.NewTestLogger(t))
}

// jobVariables mirrors what the broker hands the worker after the query
// stage completed: numbers arrive as JSON numbers.
const jobVariables = `{
  "question": "Compare diagnostic 42 across surveys",
  "intent": {
    "survey_type": "multiple",
    "question_type": "quantitative",
    "tables": ["customer_data", "rating_data"],
    "diagnostic_id": 42
  },
  "queryResult": {
    "rows": [
      {"source": "customer_data", "responses": 10, "mean": "4.00", "min_value": 1, "max_value": 5},
      {"source": "rating_data", "responses": 20, "mean": "4.15", "min_value": 2, "max_value": 5}
    ],
    "row_count": 2
  }
}`

func decodeInput(t *testing.T, raw string) *Input {
	var in Input
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	return &in
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h := newTestHandler(t, nil)

	out, err := h.Execute(context.Background(), decodeInput(t, jobVariables))
	require.NoError(t, err)

	assert.Equal(t,
		"Diagnostic 42: 30 responses across 2 tables; overall mean 4.10 (customer_data: mean 4.00 over 10 responses; rating_data: mean 4.15 over 20 responses).",
		out.Response)
	assert.Equal(t, "bar", out.Analysis.Chart.Type)
	assert.Equal(t, int64(30), out.Analysis.Overall.Responses)
}

func TestHandler_Execute_WithNarrative(t *testing.T) {
	h := newTestHandler(t, &stubLLM{reply: "Ratings are consistently high."})

	out, err := h.Execute(context.Background(), decodeInput(t, jobVariables))
	require.NoError(t, err)
	assert.Contains(t, out.Response, "\n\nRatings are consistently high.")
}

func TestHandler_Execute_NarrativeFailureIsNotFatal(t *testing.T) {
	h := newTestHandler(t, &stubLLM{err: errors.New("upstream 503")})

	out, err := h.Execute(context.Background(), decodeInput(t, jobVariables))
	require.NoError(t, err)
	assert.NotContains(t, out.Response, "\n\n")
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode commonerrors.ErrorCode
	}{
		{
			name:     "missing query result",
			input:    decodeInput(t, `{"question": "q", "intent": {"question_type": "quantitative", "tables": ["a_data"]}}`),
			wantCode: commonerrors.ErrCodeInvalidInput,
		},
		{
			name: "malformed rows",
			input: decodeInput(t, `{
				"intent": {"survey_type": "single", "question_type": "quantitative", "tables": ["a_data"]},
				"queryResult": {"rows": [{"responses": 3, "mean": "1"}]}
			}`),
			wantCode: commonerrors.ErrCodeMalformedResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, nil)
			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)

			stdErr := commonerrors.FromError(err, errorMappings...)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.False(t, stdErr.Retryable)
			if tt.wantCode == commonerrors.ErrCodeMalformedResult {
				assert.ErrorIs(t, err, analysis.ErrMalformedResult)
				assert.Contains(t, stdErr.Metadata, "rowCount")
			}
		})
	}
}
