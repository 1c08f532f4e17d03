package history

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/common/config"
	"survey-analyst/internal/models"
)

func newESServer(t *testing.T, status int, capture *map[string]interface{}, path *string) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		*path = r.Method + " " + r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, capture)
		w.WriteHeader(status)
		io.WriteString(w, `{"result":"created"}`)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func sampleRun() *models.RunResponse {
	id := int64(42)
	return &models.RunResponse{
		RunID:     "run-1",
		SessionID: "s1",
		UserID:    "u1",
		Status:    models.RunStatusCompleted,
		Response:  "Diagnostic 42: ...",
		Intent: &models.IntentResult{
			SurveyType:   models.SurveyTypeSingle,
			QuestionType: models.QuestionTypeQuantitative,
			Tables:       []string{"customer_data"},
			DiagnosticID: &id,
		},
		Query:      &models.Query{SQL: "SELECT 1"},
		DurationMs: 12,
		StartedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestElasticsearchArchive_Record(t *testing.T) {
	var doc map[string]interface{}
	var path string
	client := newESServer(t, http.StatusCreated, &doc, &path)

	archive := NewElasticsearchArchive(client, "analyst-runs")
	require.NoError(t, archive.Record(context.Background(), "How did diagnostic 42 do?", sampleRun()))

	assert.Equal(t, "PUT /analyst-runs/_doc/run-1", path)
	assert.Equal(t, "How did diagnostic 42 do?", doc["question"])
	assert.Equal(t, "single", doc["survey_type"])
	assert.EqualValues(t, 42, doc["diagnostic_id"])
	assert.Equal(t, "SELECT 1", doc["sql"])
}

func TestElasticsearchArchive_RecordError(t *testing.T) {
	var doc map[string]interface{}
	var path string
	client := newESServer(t, http.StatusInternalServerError, &doc, &path)

	err := NewElasticsearchArchive(client, "analyst-runs").Record(context.Background(), "q", sampleRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNewArchive(t *testing.T) {
	assert.IsType(t, NopArchive{}, NewArchive(config.HistoryConfig{}, nil))
	assert.NoError(t, NopArchive{}.Record(context.Background(), "q", sampleRun()))
}
