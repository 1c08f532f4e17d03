// internal/workers/survey/execute-survey-query/models.go
package executesurveyquery

import "survey-analyst/internal/models"

type Input struct {
	Intent *models.IntentResult `json:"intent"`
}

type Output struct {
	QueryResult *models.QueryResult `json:"queryResult"`
	RowCount    int                 `json:"rowCount"`
}
