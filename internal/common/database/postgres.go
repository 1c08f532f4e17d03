// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"survey-analyst/internal/common/config"

	_ "github.com/lib/pq"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// SQLClient wraps a survey data store connection together with its dialect.
type SQLClient struct {
	DB      *sql.DB
	Dialect string
}

// Open connects to the configured survey data store.
func Open(cfg config.DatabaseConfig) (*SQLClient, error) {
	switch cfg.Driver {
	case DialectMySQL:
		return NewMySQL(cfg.MySQL)
	case DialectPostgres, "":
		return NewPostgres(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*SQLClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	configurePool(db, cfg.MaxConnections, cfg.MaxIdle)
	return &SQLClient{DB: db, Dialect: DialectPostgres}, nil
}

func configurePool(db *sql.DB, maxOpen, maxIdle int) {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", c.Dialect, err)
	}
	return nil
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
