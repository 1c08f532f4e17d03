// internal/introspection/sql.go
package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"survey-analyst/internal/common/database"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/models"
)

const (
	postgresListTables = `SELECT table_name FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name`

	postgresDescribeTable = `SELECT column_name, data_type FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

	mysqlListTables = `SELECT table_name FROM information_schema.tables
WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_type = 'BASE TABLE'
ORDER BY table_name`

	mysqlDescribeTable = `SELECT column_name, column_type FROM information_schema.columns
WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_name = ?
ORDER BY ordinal_position`
)

// SQLIntrospector reads information_schema of a Postgres or MySQL database.
type SQLIntrospector struct {
	db      *sql.DB
	dialect string
	schema  string
	timeout time.Duration
	logger  logger.Logger
}

// NewSQLIntrospector builds an introspector for dialect "postgres" or
// "mysql". An empty schema means "public" on Postgres and the connection's
// current database on MySQL.
func NewSQLIntrospector(db *sql.DB, dialect, schema string, timeout time.Duration, log logger.Logger) (*SQLIntrospector, error) {
	switch dialect {
	case database.DialectPostgres:
		if schema == "" {
			schema = "public"
		}
	case database.DialectMySQL:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return &SQLIntrospector{
		db:      db,
		dialect: dialect,
		schema:  schema,
		timeout: timeout,
		logger:  logger.Component(log, "introspection"),
	}, nil
}

func (s *SQLIntrospector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQLIntrospector) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := postgresListTables
	if s.dialect == database.DialectMySQL {
		query = mysqlListTables
	}

	rows, err := s.db.QueryContext(ctx, query, s.schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	s.logger.Debug("Listed tables", map[string]interface{}{
		"schema": s.schema,
		"count":  len(tables),
	})
	return tables, nil
}

func (s *SQLIntrospector) DescribeTable(ctx context.Context, table string) ([]models.Column, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := postgresDescribeTable
	if s.dialect == database.DialectMySQL {
		query = mysqlDescribeTable
	}

	rows, err := s.db.QueryContext(ctx, query, s.schema, table)
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []models.Column
	for rows.Next() {
		var c models.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("describe table %s: %w", table, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return cols, nil
}
