// internal/intent/config.go
package intent

import "survey-analyst/internal/common/config"

const (
	DefaultIdentifierColumn = "diagnostic_id"
	DefaultTableSuffix      = "_data"
	DefaultValueColumn      = "value"
)

// Config carries the naming conventions the resolver matches against.
// An empty TableSuffix matches every table.
type Config struct {
	IdentifierColumn string
	TableSuffix      string
	ValueColumn      string
}

// DefaultConfig returns the conventions of the survey warehouse.
func DefaultConfig() Config {
	return Config{
		IdentifierColumn: DefaultIdentifierColumn,
		TableSuffix:      DefaultTableSuffix,
		ValueColumn:      DefaultValueColumn,
	}
}

// FromAppConfig extracts the resolver conventions from application config.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		IdentifierColumn: cfg.Intent.IdentifierColumn,
		TableSuffix:      cfg.Intent.TableSuffix,
		ValueColumn:      cfg.Intent.ValueColumn,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.IdentifierColumn == "" {
		c.IdentifierColumn = DefaultIdentifierColumn
	}
	if c.ValueColumn == "" {
		c.ValueColumn = DefaultValueColumn
	}
	return c
}
