// internal/intent/resolver.go
package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/models"
)

// Introspector is the read-only schema capability the resolver depends on.
type Introspector interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]models.Column, error)
}

// Resolver turns a survey question into an IntentResult using live schema
// metadata. It holds no per-question state and is safe for concurrent use.
type Resolver struct {
	cfg    Config
	source Introspector
	logger logger.Logger
}

func NewResolver(cfg Config, source Introspector, log logger.Logger) *Resolver {
	return &Resolver{
		cfg:    cfg.withDefaults(),
		source: source,
		logger: logger.Component(log, "intent"),
	}
}

// Config returns the conventions the resolver was built with.
func (r *Resolver) Config() Config { return r.cfg }

// Resolve classifies the question. On failure the returned result is
// error-only and err is one of *IntrospectionError, *NoMatchError or
// *AmbiguousTypeError.
func (r *Resolver) Resolve(ctx context.Context, question string) (*models.IntentResult, error) {
	result, err := resolve(ctx, r.cfg, r.source, question)
	if err != nil {
		r.logger.Warn("Intent resolution failed", map[string]interface{}{
			"question": question,
			"error":    err,
		})
		return result, err
	}
	r.logger.Debug("Intent resolved", map[string]interface{}{
		"surveyType":   result.SurveyType,
		"questionType": result.QuestionType,
		"tables":       result.Tables,
	})
	return result, nil
}

// ResolveSnapshot runs the same algorithm over a captured schema snapshot,
// without any backend.
func ResolveSnapshot(cfg Config, question string, snapshot models.SchemaSnapshot) (*models.IntentResult, error) {
	return resolve(context.Background(), cfg.withDefaults(), snapshotSource(snapshot), question)
}

func resolve(ctx context.Context, cfg Config, source Introspector, question string) (*models.IntentResult, error) {
	fail := func(err error) (*models.IntentResult, error) {
		return models.ErrorIntent(err.Error()), err
	}

	names, err := source.ListTables(ctx)
	if err != nil {
		return fail(&IntrospectionError{Op: "list tables", Err: err})
	}

	candidates := filterTables(names, cfg.TableSuffix)
	var matched []string
	schemas := make(map[string][]models.Column, len(candidates))
	for _, table := range candidates {
		cols, err := source.DescribeTable(ctx, table)
		if err != nil {
			return fail(&IntrospectionError{Op: "describe table", Table: table, Err: err})
		}
		if hasColumn(cols, cfg.IdentifierColumn) {
			matched = append(matched, table)
			schemas[table] = cols
		}
	}

	if len(matched) == 0 {
		return fail(&NoMatchError{
			IdentifierColumn: cfg.IdentifierColumn,
			TableSuffix:      cfg.TableSuffix,
			Candidates:       candidates,
		})
	}

	questionType, err := classifyTables(matched, schemas, cfg.ValueColumn)
	if err != nil {
		return fail(err)
	}

	surveyType := models.SurveyTypeSingle
	if len(matched) > 1 {
		surveyType = models.SurveyTypeMultiple
	}

	return &models.IntentResult{
		SurveyType:   surveyType,
		QuestionType: questionType,
		Tables:       matched,
		DiagnosticID: ExtractDiagnosticID(question),
	}, nil
}

// filterTables keeps names ending in suffix, sorted and de-duplicated.
func filterTables(names []string, suffix string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !strings.HasSuffix(n, suffix) || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func hasColumn(cols []models.Column, name string) bool {
	_, ok := findColumn(cols, name)
	return ok
}

// findColumn matches names exactly: generated SQL quotes the configured
// name, and quoted identifiers are case-sensitive on Postgres.
func findColumn(cols []models.Column, name string) (models.Column, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return models.Column{}, false
}

// classifyTables requires every matched table to classify its value column
// the same way.
func classifyTables(tables []string, schemas map[string][]models.Column, valueColumn string) (models.QuestionType, error) {
	var (
		result models.QuestionType
		first  string
	)
	for _, table := range tables {
		col, ok := findColumn(schemas[table], valueColumn)
		if !ok {
			return "", &AmbiguousTypeError{Table: table, Column: valueColumn}
		}
		qt, ok := ClassifyType(col.Type)
		if !ok {
			return "", &AmbiguousTypeError{Table: table, Column: col.Name, Type: col.Type}
		}
		if result == "" {
			result, first = qt, table
			continue
		}
		if qt != result {
			return "", &AmbiguousTypeError{
				Table:  table,
				Column: col.Name,
				Type:   col.Type,
				Reason: fmt.Sprintf("column %q is %s in %s but %s in %s", valueColumn, result, first, qt, table),
			}
		}
	}
	return result, nil
}

type snapshotSource models.SchemaSnapshot

func (s snapshotSource) ListTables(context.Context) ([]string, error) {
	return models.SchemaSnapshot(s).TableNames(), nil
}

func (s snapshotSource) DescribeTable(_ context.Context, table string) ([]models.Column, error) {
	t, ok := models.SchemaSnapshot(s).Table(table)
	if !ok {
		return nil, fmt.Errorf("table %q not found in snapshot", table)
	}
	return t.Columns, nil
}
