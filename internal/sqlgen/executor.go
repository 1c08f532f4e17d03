// internal/sqlgen/executor.go
package sqlgen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
	"survey-analyst/internal/models"
)

var (
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrTooManyRows          = errors.New("TOO_MANY_ROWS")
)

// Executor runs generated queries against the survey store.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	maxRows int
	logger  logger.Logger
}

func NewExecutor(db *sql.DB, timeout time.Duration, maxRows int, log logger.Logger) *Executor {
	return &Executor{
		db:      db,
		timeout: timeout,
		maxRows: maxRows,
		logger:  logger.Component(log, "nl2sql"),
	}
}

// Run executes the query and returns its rows. []byte column values are
// returned as strings.
func (e *Executor) Run(ctx context.Context, q *models.Query) (*models.QueryResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, e.classify(ctx, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	var out []models.Row
	for rows.Next() {
		if e.maxRows > 0 && len(out) >= e.maxRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, e.maxRows)
		}
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrQueryExecutionFailed, err)
		}
		row := make(models.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.classify(ctx, err)
	}

	elapsed := time.Since(start)
	metrics.QueryRows.WithLabelValues(string(q.QuestionType)).Observe(float64(len(out)))
	e.logger.Info("Survey query executed", map[string]interface{}{
		"tables":     q.Tables,
		"rows":       len(out),
		"durationMs": elapsed.Milliseconds(),
	})

	return &models.QueryResult{
		Query:              *q,
		Rows:               out,
		RowCount:           len(out),
		QueryExecutionTime: elapsed.Milliseconds(),
	}, nil
}

func (e *Executor) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrQueryTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrQueryExecutionFailed, err)
}
