// internal/sqlgen/builder.go
package sqlgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"survey-analyst/internal/common/database"
	"survey-analyst/internal/common/validation"
	"survey-analyst/internal/models"
)

var (
	ErrIntentFailed      = errors.New("INTENT_FAILED")
	ErrInvalidIdentifier = errors.New("INVALID_IDENTIFIER")
	ErrUnsupportedIntent = errors.New("UNSUPPORTED_INTENT")
)

// Builder turns an IntentResult into a parameterised aggregate query.
type Builder struct {
	dialect          string
	identifierColumn string
	valueColumn      string
}

func NewBuilder(dialect, identifierColumn, valueColumn string) (*Builder, error) {
	if dialect != database.DialectPostgres && dialect != database.DialectMySQL {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	for _, name := range []string{identifierColumn, valueColumn} {
		if !validation.IsSQLIdentifier(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return &Builder{
		dialect:          dialect,
		identifierColumn: identifierColumn,
		valueColumn:      valueColumn,
	}, nil
}

// Build produces one SELECT per table, combined with UNION ALL and ordered
// by source table. Quantitative intents aggregate the value column;
// qualitative intents count answers.
func (b *Builder) Build(intent *models.IntentResult) (*models.Query, error) {
	if intent == nil {
		return nil, fmt.Errorf("%w: nil intent", ErrUnsupportedIntent)
	}
	if intent.Failed() {
		return nil, fmt.Errorf("%w: %s", ErrIntentFailed, intent.Error)
	}
	if len(intent.Tables) == 0 {
		return nil, fmt.Errorf("%w: no tables", ErrUnsupportedIntent)
	}

	tables := append([]string(nil), intent.Tables...)
	sort.Strings(tables)
	for _, t := range tables {
		if !validation.IsSQLIdentifier(t) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, t)
		}
	}

	var selectFor func(table string) string
	switch intent.QuestionType {
	case models.QuestionTypeQuantitative:
		selectFor = b.quantitative
	case models.QuestionTypeQualitative:
		selectFor = b.qualitative
	default:
		return nil, fmt.Errorf("%w: question type %q", ErrUnsupportedIntent, intent.QuestionType)
	}

	parts := make([]string, 0, len(tables))
	var args []interface{}
	for _, t := range tables {
		stmt := selectFor(t)
		if intent.DiagnosticID != nil {
			stmt = b.filter(stmt)
			if b.dialect == database.DialectMySQL || len(args) == 0 {
				args = append(args, *intent.DiagnosticID)
			}
		}
		if intent.QuestionType == models.QuestionTypeQualitative {
			stmt += " GROUP BY " + b.quote(b.valueColumn)
		}
		parts = append(parts, stmt)
	}

	sql := strings.Join(parts, "\nUNION ALL\n")
	if len(parts) > 1 {
		sql = "SELECT * FROM (\n" + sql + "\n) AS combined"
	}
	sql += "\nORDER BY source"
	if intent.QuestionType == models.QuestionTypeQualitative {
		sql += ", responses DESC, answer"
	}

	return &models.Query{
		SQL:          sql,
		Args:         args,
		Tables:       tables,
		QuestionType: intent.QuestionType,
	}, nil
}

func (b *Builder) quantitative(table string) string {
	v := b.quote(b.valueColumn)
	return fmt.Sprintf("SELECT '%s' AS source, COUNT(%s) AS responses, AVG(%s) AS mean, MIN(%s) AS min_value, MAX(%s) AS max_value FROM %s",
		table, v, v, v, v, b.quote(table))
}

func (b *Builder) qualitative(table string) string {
	v := b.quote(b.valueColumn)
	return fmt.Sprintf("SELECT '%s' AS source, %s AS answer, COUNT(*) AS responses FROM %s",
		table, v, b.quote(table))
}

func (b *Builder) filter(stmt string) string {
	placeholder := "?"
	if b.dialect == database.DialectPostgres {
		placeholder = "$1"
	}
	return fmt.Sprintf("%s WHERE %s = %s", stmt, b.quote(b.identifierColumn), placeholder)
}

func (b *Builder) quote(ident string) string {
	if b.dialect == database.DialectMySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}
