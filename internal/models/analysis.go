// internal/models/analysis.go
package models

// AnswerCount is one qualitative answer and how often it was given.
type AnswerCount struct {
	Answer    string `json:"answer"`
	Responses int64  `json:"responses"`
}

// SourceStats summarises one survey table.
type SourceStats struct {
	Source    string        `json:"source"`
	Responses int64         `json:"responses"`
	Mean      *float64      `json:"mean,omitempty"`
	Min       *float64      `json:"min,omitempty"`
	Max       *float64      `json:"max,omitempty"`
	Answers   []AnswerCount `json:"answers,omitempty"`
}

// OverallStats aggregates across every source table.
type OverallStats struct {
	Responses int64    `json:"responses"`
	Mean      *float64 `json:"mean,omitempty"`
	TopAnswer string   `json:"top_answer,omitempty"`
}

// ChartPoint is a single datum of a chart series.
type ChartPoint struct {
	Series string  `json:"series"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
}

// ChartSpec is a renderer-agnostic chart description.
type ChartSpec struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	XField string       `json:"x_field"`
	YField string       `json:"y_field"`
	Series []string     `json:"series,omitempty"`
	Data   []ChartPoint `json:"data"`
}

// Analysis is the output of the analysis and chart member.
type Analysis struct {
	QuestionType QuestionType  `json:"question_type"`
	DiagnosticID *int64        `json:"diagnostic_id,omitempty"`
	Sources      []SourceStats `json:"sources"`
	Overall      OverallStats  `json:"overall"`
	Chart        ChartSpec     `json:"chart"`
	Summary      string        `json:"summary"`
	Narrative    string        `json:"narrative,omitempty"`
}
