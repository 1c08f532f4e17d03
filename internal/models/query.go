// internal/models/query.go
package models

// Query is a parameterised statement produced from an intent.
type Query struct {
	SQL          string        `json:"sql"`
	Args         []interface{} `json:"args,omitempty"`
	Tables       []string      `json:"tables"`
	QuestionType QuestionType  `json:"question_type"`
}

// Row is one result row keyed by column name.
type Row map[string]interface{}

// QueryResult is what the NL2SQL member hands to the analysis member.
type QueryResult struct {
	Query              Query `json:"query"`
	Rows               []Row `json:"rows"`
	RowCount           int   `json:"row_count"`
	QueryExecutionTime int64 `json:"query_execution_time_ms"`
}
