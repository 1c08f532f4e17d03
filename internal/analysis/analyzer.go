// internal/analysis/analyzer.go
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/llm"
	"survey-analyst/internal/models"
)

const narrativePrompt = `You are the analysis member of a data analyst team. You receive a survey
question, a deterministic summary and the computed statistics as JSON. Write a short
plain-language interpretation (at most four sentences) for a business reader. Use only
the numbers provided. Do not invent data and do not repeat the JSON.`

// Analyzer computes statistics and a chart for query results, optionally
// asking an LLM for a narrative.
type Analyzer struct {
	llm    llm.Client
	logger logger.Logger
}

// NewAnalyzer returns an analyzer; a nil client disables narratives.
func NewAnalyzer(client llm.Client, log logger.Logger) *Analyzer {
	return &Analyzer{
		llm:    client,
		logger: logger.Component(log, "analysis"),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, question string, intent *models.IntentResult, result *models.QueryResult) (*models.Analysis, error) {
	if intent == nil || result == nil {
		return nil, fmt.Errorf("%w: missing intent or query result", ErrMalformedResult)
	}

	out := &models.Analysis{
		QuestionType: intent.QuestionType,
		DiagnosticID: intent.DiagnosticID,
	}

	var err error
	switch intent.QuestionType {
	case models.QuestionTypeQuantitative:
		out.Sources, out.Overall, err = quantitativeStats(result.Rows)
		if err == nil {
			out.Chart = meanChart(out.Sources, intent.DiagnosticID)
			out.Summary = quantitativeSummary(out, intent.Tables)
		}
	case models.QuestionTypeQualitative:
		out.Sources, out.Overall, err = qualitativeStats(result.Rows)
		if err == nil {
			out.Chart = answerChart(out.Sources, intent.DiagnosticID)
			out.Summary = qualitativeSummary(out, intent.Tables)
		}
	default:
		return nil, fmt.Errorf("%w: question type %q", ErrMalformedResult, intent.QuestionType)
	}
	if err != nil {
		return nil, err
	}

	if a.llm != nil && out.Overall.Responses > 0 {
		out.Narrative = a.narrative(ctx, question, out)
	}
	return out, nil
}

func (a *Analyzer) narrative(ctx context.Context, question string, analysis *models.Analysis) string {
	stats, err := json.Marshal(struct {
		Sources []models.SourceStats `json:"sources"`
		Overall models.OverallStats  `json:"overall"`
	}{analysis.Sources, analysis.Overall})
	if err != nil {
		return ""
	}

	user := fmt.Sprintf("Question: %s\nSummary: %s\nStatistics: %s", question, analysis.Summary, stats)
	text, err := a.llm.Complete(ctx, narrativePrompt, user)
	if err != nil {
		a.logger.Warn("Narrative generation failed, continuing without it", map[string]interface{}{
			"error": err,
		})
		return ""
	}
	return text
}

func quantitativeSummary(a *models.Analysis, tables []string) string {
	label := diagnosticLabel(a.DiagnosticID)
	if a.Overall.Responses == 0 || a.Overall.Mean == nil {
		return fmt.Sprintf("No responses found for %s in %s.", label, strings.Join(tables, ", "))
	}

	parts := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		if s.Mean == nil {
			parts = append(parts, fmt.Sprintf("%s: no responses", s.Source))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: mean %.2f over %d responses", s.Source, *s.Mean, s.Responses))
	}
	return fmt.Sprintf("%s: %d responses across %s; overall mean %.2f (%s).",
		capitalize(label), a.Overall.Responses, plural(len(a.Sources), "table"), *a.Overall.Mean, strings.Join(parts, "; "))
}

func qualitativeSummary(a *models.Analysis, tables []string) string {
	label := diagnosticLabel(a.DiagnosticID)
	if a.Overall.Responses == 0 {
		return fmt.Sprintf("No responses found for %s in %s.", label, strings.Join(tables, ", "))
	}

	var top int64
	parts := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		answers := make([]string, 0, len(s.Answers))
		for _, ans := range s.Answers {
			answers = append(answers, fmt.Sprintf("%s %d", ans.Answer, ans.Responses))
			if ans.Answer == a.Overall.TopAnswer {
				top += ans.Responses
			}
		}
		parts = append(parts, fmt.Sprintf("%s: %s", s.Source, strings.Join(answers, ", ")))
	}
	return fmt.Sprintf("%s: %d responses across %s; most common answer %q (%d). %s.",
		capitalize(label), a.Overall.Responses, plural(len(a.Sources), "table"), a.Overall.TopAnswer, top, strings.Join(parts, "; "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
