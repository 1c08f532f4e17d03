package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type stubLLM struct {
	reply string
	err   error
	calls int
	user  string
}

func (s *stubLLM) Complete(_ context.Context, _, user string) (string, error) {
	s.calls++
	s.user = user
	return s.reply, s.err
}

func id(v int64) *int64 { return &v }

func quantitativeIntent() *models.IntentResult {
	return &models.IntentResult{
		SurveyType:   models.SurveyTypeMultiple,
		QuestionType: models.QuestionTypeQuantitative,
		Tables:       []string{"customer_data", "rating_data"},
		DiagnosticID: id(42),
	}
}

func quantitativeRows() *models.QueryResult {
	return &models.QueryResult{Rows: []models.Row{
		{"source": "customer_data", "responses": int64(10), "mean": "4.00", "min_value": int64(1), "max_value": int64(5)},
		{"source": "rating_data", "responses": int64(20), "mean": "4.15", "min_value": 2.0, "max_value": 5.0},
	}}
}

// ==========================
// Quantitative
// ==========================

func TestAnalyzer_Quantitative(t *testing.T) {
	a := NewAnalyzer(nil, logger.NewTestLogger(t))

	out, err := a.Analyze(context.Background(), "Compare diagnostic 42", quantitativeIntent(), quantitativeRows())
	require.NoError(t, err)

	require.Len(t, out.Sources, 2)
	assert.Equal(t, int64(30), out.Overall.Responses)
	require.NotNil(t, out.Overall.Mean)
	assert.InDelta(t, 4.1, *out.Overall.Mean, 1e-9)
	assert.InDelta(t, 1.0, *out.Sources[0].Min, 1e-9)
	assert.InDelta(t, 5.0, *out.Sources[1].Max, 1e-9)

	assert.Equal(t, "bar", out.Chart.Type)
	require.Len(t, out.Chart.Data, 2)
	assert.Equal(t, "rating_data", out.Chart.Data[1].Label)
	assert.InDelta(t, 4.15, out.Chart.Data[1].Value, 1e-9)

	assert.Equal(t,
		"Diagnostic 42: 30 responses across 2 tables; overall mean 4.10 (customer_data: mean 4.00 over 10 responses; rating_data: mean 4.15 over 20 responses).",
		out.Summary)
	assert.Empty(t, out.Narrative)
}

func TestAnalyzer_Quantitative_NoResponses(t *testing.T) {
	a := NewAnalyzer(nil, logger.NewTestLogger(t))
	intent := quantitativeIntent()
	intent.DiagnosticID = nil

	out, err := a.Analyze(context.Background(), "overall", intent, &models.QueryResult{Rows: []models.Row{
		{"source": "customer_data", "responses": int64(0), "mean": nil, "min_value": nil, "max_value": nil},
	}})
	require.NoError(t, err)
	assert.Nil(t, out.Overall.Mean)
	assert.Empty(t, out.Chart.Data)
	assert.Equal(t, "No responses found for all diagnostics in customer_data, rating_data.", out.Summary)
}

func TestAnalyzer_MalformedRows(t *testing.T) {
	a := NewAnalyzer(nil, logger.NewTestLogger(t))

	tests := []struct {
		name string
		row  models.Row
	}{
		{"missing source", models.Row{"responses": int64(1), "mean": "1"}},
		{"bad mean", models.Row{"source": "a_data", "responses": int64(1), "mean": "n/a"}},
		{"bad count", models.Row{"source": "a_data", "responses": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), "q", quantitativeIntent(), &models.QueryResult{Rows: []models.Row{tt.row}})
			assert.ErrorIs(t, err, ErrMalformedResult)
		})
	}
}

// ==========================
// Qualitative
// ==========================

func TestAnalyzer_Qualitative(t *testing.T) {
	a := NewAnalyzer(nil, logger.NewTestLogger(t))
	intent := &models.IntentResult{
		SurveyType:   models.SurveyTypeMultiple,
		QuestionType: models.QuestionTypeQualitative,
		Tables:       []string{"a_data", "b_data"},
		DiagnosticID: id(7),
	}
	rows := &models.QueryResult{Rows: []models.Row{
		{"source": "a_data", "answer": "yes", "responses": int64(10)},
		{"source": "a_data", "answer": "no", "responses": int64(2)},
		{"source": "b_data", "answer": "no", "responses": int64(9)},
		{"source": "b_data", "answer": []byte("yes"), "responses": int64(8)},
	}}

	out, err := a.Analyze(context.Background(), "q", intent, rows)
	require.NoError(t, err)

	assert.Equal(t, int64(29), out.Overall.Responses)
	assert.Equal(t, "yes", out.Overall.TopAnswer)
	require.Len(t, out.Sources, 2)
	assert.Equal(t, int64(12), out.Sources[0].Responses)
	assert.Equal(t, []string{"a_data", "b_data"}, out.Chart.Series)
	assert.Len(t, out.Chart.Data, 4)
	assert.Equal(t,
		`Diagnostic 7: 29 responses across 2 tables; most common answer "yes" (18). a_data: yes 10, no 2; b_data: no 9, yes 8.`,
		out.Summary)
}

func TestAnalyzer_Qualitative_TieBreaksByAnswer(t *testing.T) {
	a := NewAnalyzer(nil, logger.NewTestLogger(t))
	intent := &models.IntentResult{QuestionType: models.QuestionTypeQualitative, Tables: []string{"a_data"}}

	out, err := a.Analyze(context.Background(), "q", intent, &models.QueryResult{Rows: []models.Row{
		{"source": "a_data", "answer": "maybe", "responses": int64(3)},
		{"source": "a_data", "answer": "agree", "responses": int64(3)},
	}})
	require.NoError(t, err)
	assert.Equal(t, "agree", out.Overall.TopAnswer)
}

// ==========================
// Narrative
// ==========================

func TestAnalyzer_Narrative(t *testing.T) {
	client := &stubLLM{reply: "Ratings run slightly higher than customer scores."}
	a := NewAnalyzer(client, logger.NewTestLogger(t))

	out, err := a.Analyze(context.Background(), "Compare diagnostic 42", quantitativeIntent(), quantitativeRows())
	require.NoError(t, err)
	assert.Equal(t, "Ratings run slightly higher than customer scores.", out.Narrative)
	assert.Equal(t, 1, client.calls)
	assert.Contains(t, client.user, "Question: Compare diagnostic 42")
}

func TestAnalyzer_NarrativeFailureIsNotFatal(t *testing.T) {
	client := &stubLLM{err: errors.New("LLM_TIMEOUT")}
	a := NewAnalyzer(client, logger.NewTestLogger(t))

	out, err := a.Analyze(context.Background(), "q", quantitativeIntent(), quantitativeRows())
	require.NoError(t, err)
	assert.Empty(t, out.Narrative)
	assert.NotEmpty(t, out.Summary)
}

func TestAnalyzer_NoNarrativeWithoutData(t *testing.T) {
	client := &stubLLM{reply: "x"}
	a := NewAnalyzer(client, logger.NewTestLogger(t))

	_, err := a.Analyze(context.Background(), "q", quantitativeIntent(), &models.QueryResult{})
	require.NoError(t, err)
	assert.Zero(t, client.calls)
}
