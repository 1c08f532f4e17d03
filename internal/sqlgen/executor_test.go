package sqlgen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testQuery() *models.Query {
	return &models.Query{
		SQL:          `SELECT 'customer_data' AS source, COUNT("value") AS responses FROM "customer_data" WHERE "diagnostic_id" = $1`,
		Args:         []interface{}{int64(42)},
		Tables:       []string{"customer_data"},
		QuestionType: models.QuestionTypeQuantitative,
	}
}

func TestExecutor_Run(t *testing.T) {
	db, mock := setupMockDB(t)
	e := NewExecutor(db, time.Second, 100, logger.NewTestLogger(t))

	mock.ExpectQuery(regexp.QuoteMeta(testQuery().SQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"source", "responses", "mean"}).
			AddRow([]byte("customer_data"), int64(12), []byte("4.25")))

	res, err := e.Run(context.Background(), testQuery())
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
	assert.Equal(t, "customer_data", res.Rows[0]["source"])
	assert.Equal(t, int64(12), res.Rows[0]["responses"])
	assert.Equal(t, "4.25", res.Rows[0]["mean"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Run_Errors(t *testing.T) {
	t.Run("execution failure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		e := NewExecutor(db, time.Second, 0, logger.NewTestLogger(t))
		mock.ExpectQuery("SELECT").WillReturnError(errors.New(`relation "customer_data" does not exist`))

		_, err := e.Run(context.Background(), testQuery())
		assert.ErrorIs(t, err, ErrQueryExecutionFailed)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("timeout", func(t *testing.T) {
		db, mock := setupMockDB(t)
		e := NewExecutor(db, 20*time.Millisecond, 0, logger.NewTestLogger(t))
		mock.ExpectQuery("SELECT").
			WillDelayFor(200 * time.Millisecond).
			WillReturnRows(sqlmock.NewRows([]string{"source"}).AddRow("customer_data"))

		_, err := e.Run(context.Background(), testQuery())
		assert.ErrorIs(t, err, ErrQueryTimeout)
	})

	t.Run("timeout keeps the cause", func(t *testing.T) {
		e := &Executor{}
		err := e.classify(context.Background(), fmt.Errorf("read tcp: %w", context.DeadlineExceeded))
		assert.ErrorIs(t, err, ErrQueryTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("row cap", func(t *testing.T) {
		db, mock := setupMockDB(t)
		e := NewExecutor(db, time.Second, 1, logger.NewTestLogger(t))
		mock.ExpectQuery("SELECT").
			WillReturnRows(sqlmock.NewRows([]string{"source"}).AddRow("a_data").AddRow("b_data"))

		_, err := e.Run(context.Background(), testQuery())
		assert.ErrorIs(t, err, ErrTooManyRows)
	})
}
