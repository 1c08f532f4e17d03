// internal/introspection/snapshot.go
package introspection

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"survey-analyst/internal/models"
)

// StaticIntrospector serves a fixed schema snapshot.
type StaticIntrospector struct {
	snapshot models.SchemaSnapshot
}

func NewStaticIntrospector(snapshot models.SchemaSnapshot) *StaticIntrospector {
	return &StaticIntrospector{snapshot: snapshot}
}

func (s *StaticIntrospector) ListTables(context.Context) ([]string, error) {
	return s.snapshot.TableNames(), nil
}

func (s *StaticIntrospector) DescribeTable(_ context.Context, table string) ([]models.Column, error) {
	t, ok := s.snapshot.Table(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return t.Columns, nil
}

// LoadSnapshot reads a YAML (or JSON, which is valid YAML) schema snapshot.
func LoadSnapshot(path string) (models.SchemaSnapshot, error) {
	var snap models.SchemaSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read snapshot: %w", err)
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	for i, t := range snap.Tables {
		if strings.TrimSpace(t.Name) == "" {
			return snap, fmt.Errorf("parse snapshot %s: table %d has no name", path, i)
		}
	}
	return snap, nil
}

// SaveSnapshot writes snap as YAML.
func SaveSnapshot(path string, snap models.SchemaSnapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Capture describes every table ending in suffix and returns the result as
// a snapshot, tables sorted by name.
func Capture(ctx context.Context, src Introspector, suffix string) (models.SchemaSnapshot, error) {
	snap := models.SchemaSnapshot{CapturedAt: time.Now().UTC().Format(time.RFC3339)}

	names, err := src.ListTables(ctx)
	if err != nil {
		return snap, err
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		cols, err := src.DescribeTable(ctx, name)
		if err != nil {
			return snap, err
		}
		snap.Tables = append(snap.Tables, models.TableSchema{Name: name, Columns: cols})
	}
	return snap, nil
}
