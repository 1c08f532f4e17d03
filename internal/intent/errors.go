// internal/intent/errors.go
package intent

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIntrospection = errors.New("INTROSPECTION_FAILED")
	ErrNoMatch       = errors.New("NO_MATCHING_TABLES")
	ErrAmbiguousType = errors.New("AMBIGUOUS_VALUE_TYPE")
	ErrInvalidIntent = errors.New("INVALID_INTENT")
)

// IntrospectionError wraps a failure of the schema backend. Its message is
// the backend's message, unchanged.
type IntrospectionError struct {
	Op    string // "list tables" or "describe table"
	Table string
	Err   error
}

func (e *IntrospectionError) Error() string {
	return e.Err.Error()
}

func (e *IntrospectionError) Unwrap() error { return e.Err }

func (e *IntrospectionError) Is(target error) bool { return target == ErrIntrospection }

// NoMatchError reports that no filtered table carries the identifier column.
type NoMatchError struct {
	IdentifierColumn string
	TableSuffix      string
	Candidates       []string
}

func (e *NoMatchError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no table matching suffix %q found", e.TableSuffix)
	}
	return fmt.Sprintf("no table matching suffix %q contains column %q (checked %s)",
		e.TableSuffix, e.IdentifierColumn, strings.Join(e.Candidates, ", "))
}

func (e *NoMatchError) Is(target error) bool { return target == ErrNoMatch }

// AmbiguousTypeError reports a value column whose declared type cannot be
// classified, is missing, or differs in kind between matched tables.
type AmbiguousTypeError struct {
	Table  string
	Column string
	Type   string
	Reason string
}

func (e *AmbiguousTypeError) Error() string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Type == "":
		return fmt.Sprintf("table %s has no column %q", e.Table, e.Column)
	default:
		return fmt.Sprintf("column %s.%s has type %q which is neither numeric nor text", e.Table, e.Column, e.Type)
	}
}

func (e *AmbiguousTypeError) Is(target error) bool { return target == ErrAmbiguousType }
