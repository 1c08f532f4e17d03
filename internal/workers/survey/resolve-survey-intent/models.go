// internal/workers/survey/resolve-survey-intent/models.go
package resolvesurveyintent

import "survey-analyst/internal/models"

type Input struct {
	Question string `json:"question"`
}

// Output exposes the routing fields at the top level so BPMN gateways can
// branch on them without unpacking the intent.
type Output struct {
	Intent       *models.IntentResult `json:"intent"`
	SurveyType   models.SurveyType    `json:"surveyType"`
	QuestionType models.QuestionType  `json:"questionType"`
	TableCount   int                  `json:"tableCount"`
}
