// internal/models/schema.go
package models

import "strings"

// Column is one column definition as reported by introspection.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// TableSchema is a table with its columns in declaration order.
type TableSchema struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column looks a column up by name, ignoring case.
func (t TableSchema) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// SchemaSnapshot is a point-in-time capture of the tables the team can see.
type SchemaSnapshot struct {
	CapturedAt string        `json:"captured_at,omitempty" yaml:"captured_at,omitempty"`
	Tables     []TableSchema `json:"tables" yaml:"tables"`
}

// Table returns the named table from the snapshot.
func (s SchemaSnapshot) Table(name string) (TableSchema, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSchema{}, false
}

// TableNames lists table names in snapshot order.
func (s SchemaSnapshot) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}
