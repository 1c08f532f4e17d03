// internal/introspection/introspector.go
package introspection

import (
	"context"
	"errors"

	"survey-analyst/internal/models"
)

var ErrTableNotFound = errors.New("TABLE_NOT_FOUND")

// Introspector lists tables and describes their columns.
type Introspector interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]models.Column, error)
}
