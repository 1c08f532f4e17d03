// internal/history/archive.go
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"survey-analyst/internal/models"
)

// Archive stores completed runs for later inspection.
type Archive interface {
	Record(ctx context.Context, question string, run *models.RunResponse) error
}

type runDocument struct {
	RunID        string              `json:"run_id"`
	SessionID    string              `json:"session_id"`
	UserID       string              `json:"user_id"`
	Question     string              `json:"question"`
	Status       models.RunStatus    `json:"status"`
	Response     string              `json:"response"`
	SurveyType   models.SurveyType   `json:"survey_type,omitempty"`
	QuestionType models.QuestionType `json:"question_type,omitempty"`
	Tables       []string            `json:"tables,omitempty"`
	DiagnosticID *int64              `json:"diagnostic_id,omitempty"`
	SQL          string              `json:"sql,omitempty"`
	DurationMs   int64               `json:"duration_ms"`
	Timestamp    time.Time           `json:"@timestamp"`
}

// ElasticsearchArchive indexes one document per run, keyed by run id.
type ElasticsearchArchive struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchArchive(client *elasticsearch.Client, index string) *ElasticsearchArchive {
	return &ElasticsearchArchive{client: client, index: index}
}

func (a *ElasticsearchArchive) Record(ctx context.Context, question string, run *models.RunResponse) error {
	doc := runDocument{
		RunID:      run.RunID,
		SessionID:  run.SessionID,
		UserID:     run.UserID,
		Question:   question,
		Status:     run.Status,
		Response:   run.Response,
		DurationMs: run.DurationMs,
		Timestamp:  run.StartedAt,
	}
	if run.Intent != nil && !run.Intent.Failed() {
		doc.SurveyType = run.Intent.SurveyType
		doc.QuestionType = run.Intent.QuestionType
		doc.Tables = run.Intent.Tables
		doc.DiagnosticID = run.Intent.DiagnosticID
	}
	if run.Query != nil {
		doc.SQL = run.Query.SQL
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode run document: %w", err)
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(body),
		a.client.Index.WithDocumentID(run.RunID),
		a.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index run %s: %w", run.RunID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index run %s: %s: %s", run.RunID, res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}

// NopArchive discards runs.
type NopArchive struct{}

func (NopArchive) Record(context.Context, string, *models.RunResponse) error { return nil }
