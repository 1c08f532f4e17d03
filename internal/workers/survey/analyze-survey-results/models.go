// internal/workers/survey/analyze-survey-results/models.go
package analyzesurveyresults

import "survey-analyst/internal/models"

type Input struct {
	Question    string               `json:"question"`
	Intent      *models.IntentResult `json:"intent"`
	QueryResult *models.QueryResult  `json:"queryResult"`
}

type Output struct {
	Analysis *models.Analysis `json:"analysis"`
	// Response is the text returned to the user: the summary, followed by
	// the narrative when one was produced.
	Response string `json:"response"`
}
