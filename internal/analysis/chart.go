// internal/analysis/chart.go
package analysis

import (
	"fmt"

	"survey-analyst/internal/models"
)

func diagnosticLabel(id *int64) string {
	if id == nil {
		return "all diagnostics"
	}
	return fmt.Sprintf("diagnostic %d", *id)
}

// meanChart plots the mean value of each source table.
func meanChart(sources []models.SourceStats, id *int64) models.ChartSpec {
	chart := models.ChartSpec{
		Type:   "bar",
		Title:  "Mean value by table, " + diagnosticLabel(id),
		XField: "source",
		YField: "mean",
		Series: []string{"mean"},
		Data:   []models.ChartPoint{},
	}
	for _, s := range sources {
		if s.Mean == nil {
			continue
		}
		chart.Data = append(chart.Data, models.ChartPoint{Series: "mean", Label: s.Source, Value: *s.Mean})
	}
	return chart
}

// answerChart plots answer counts grouped by source table.
func answerChart(sources []models.SourceStats, id *int64) models.ChartSpec {
	chart := models.ChartSpec{
		Type:   "grouped_bar",
		Title:  "Answer distribution, " + diagnosticLabel(id),
		XField: "answer",
		YField: "responses",
		Data:   []models.ChartPoint{},
	}
	for _, s := range sources {
		chart.Series = append(chart.Series, s.Source)
		for _, a := range s.Answers {
			chart.Data = append(chart.Data, models.ChartPoint{Series: s.Source, Label: a.Answer, Value: float64(a.Responses)})
		}
	}
	return chart
}
