// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Intent resolution
const (
	ErrCodeIntrospectionFailed ErrorCode = "INTROSPECTION_FAILED"
	ErrCodeNoMatchingTables    ErrorCode = "NO_MATCHING_TABLES"
	ErrCodeAmbiguousValueType  ErrorCode = "AMBIGUOUS_VALUE_TYPE"
	ErrCodeInvalidIntent       ErrorCode = "INVALID_INTENT"
)

// Query generation and execution
const (
	ErrCodeInvalidIdentifier        ErrorCode = "INVALID_IDENTIFIER"
	ErrCodeUnsupportedIntent        ErrorCode = "UNSUPPORTED_INTENT"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeTooManyRows              ErrorCode = "TOO_MANY_ROWS"
)

// Analysis
const (
	ErrCodeMalformedResult ErrorCode = "MALFORMED_RESULT"
)

// Workflow engine
const (
	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowEngineTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeWorkflowCommandRejected   ErrorCode = "WORKFLOW_COMMAND_REJECTED"
)

// Generic
const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the domain error the StandardError was built from.
func (e *StandardError) Unwrap() error {
	return e.Cause
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

var defaultMessages = map[ErrorCode]string{
	ErrCodeIntrospectionFailed:      "Schema introspection failed",
	ErrCodeNoMatchingTables:         "No survey tables carry the identifier column",
	ErrCodeAmbiguousValueType:       "Survey value column type is ambiguous",
	ErrCodeInvalidIntent:            "Intent result is invalid",
	ErrCodeInvalidIdentifier:        "Table or column name is not a safe identifier",
	ErrCodeUnsupportedIntent:        "Intent cannot be turned into a query",
	ErrCodeDatabaseConnectionFailed: "Failed to connect to the survey database",
	ErrCodeQueryExecutionFailed:     "Survey query execution failed",
	ErrCodeQueryTimeout:             "Survey query timed out",
	ErrCodeTooManyRows:              "Survey query returned too many rows",
	ErrCodeMalformedResult:          "Query result has an unexpected shape",
	ErrCodeInvalidInput:             "Invalid job input",
	ErrCodeInternalError:            "Unexpected error",

	ErrCodeWorkflowEngineUnavailable: "Workflow engine is unavailable",
	ErrCodeWorkflowEngineTimeout:     "Workflow engine request timed out",
	ErrCodeWorkflowCommandRejected:   "Workflow engine rejected the command",
}

// New builds a StandardError with the default message for code. Retryability
// follows GetRetryCount.
func New(code ErrorCode, details string) *StandardError {
	msg, ok := defaultMessages[code]
	if !ok {
		msg = string(code)
	}
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

func wrap(code ErrorCode, err error) *StandardError {
	stdErr := New(code, err.Error())
	stdErr.Cause = err
	return stdErr
}

// NewIntrospectionFailedError creates a retryable introspection error.
func NewIntrospectionFailedError(err error) *StandardError {
	return wrap(ErrCodeIntrospectionFailed, err)
}

// NewNoMatchingTablesError creates a non-retryable error for a schema with
// no usable survey tables.
func NewNoMatchingTablesError(err error) *StandardError {
	return wrap(ErrCodeNoMatchingTables, err)
}

func NewAmbiguousValueTypeError(err error) *StandardError {
	return wrap(ErrCodeAmbiguousValueType, err)
}

func NewInvalidIntentError(err error) *StandardError {
	return wrap(ErrCodeInvalidIntent, err)
}

func NewInvalidIdentifierError(err error) *StandardError {
	return wrap(ErrCodeInvalidIdentifier, err)
}

// NewDatabaseConnectionFailedError creates a retryable database error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return wrap(ErrCodeDatabaseConnectionFailed, err)
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(questionType string, err error) *StandardError {
	return wrap(ErrCodeQueryExecutionFailed, err).
		WithMetadata("questionType", questionType)
}

func NewQueryTimeoutError(questionType string, err error) *StandardError {
	return wrap(ErrCodeQueryTimeout, err).
		WithMetadata("questionType", questionType)
}

func NewMalformedResultError(err error) *StandardError {
	return wrap(ErrCodeMalformedResult, err)
}

func NewInvalidInputError(details string) *StandardError {
	return New(ErrCodeInvalidInput, details)
}

// Mapping pairs a sentinel error with the code it should surface as.
type Mapping struct {
	Sentinel error
	Code     ErrorCode
}

// FromError converts err into a StandardError. An existing StandardError in
// the chain is returned as-is; otherwise the first mapping whose sentinel err
// wraps decides the code. Unmapped errors become INTERNAL_ERROR.
func FromError(err error, mappings ...Mapping) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	for _, m := range mappings {
		if stderrors.Is(err, m.Sentinel) {
			return New(m.Code, err.Error())
		}
	}
	return New(ErrCodeInternalError, err.Error())
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by
// boundary events in the survey analysis process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeIntrospectionFailed:      "INTROSPECTION_FAILED",
	ErrCodeNoMatchingTables:         "NO_MATCHING_TABLES",
	ErrCodeAmbiguousValueType:       "AMBIGUOUS_VALUE_TYPE",
	ErrCodeInvalidIntent:            "INTENT_FAILED",
	ErrCodeInvalidIdentifier:        "QUERY_REJECTED",
	ErrCodeUnsupportedIntent:        "QUERY_REJECTED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeTooManyRows:              "QUERY_REJECTED",
	ErrCodeMalformedResult:          "ANALYSIS_FAILED",
	ErrCodeInvalidInput:             "INVALID_INPUT",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeIntrospectionFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeWorkflowEngineUnavailable:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeWorkflowEngineTimeout:
		return 2

	default:
		return 0 // schema and input problems do not heal on retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INTROSPECTION") || strings.Contains(codeStr, "TABLES") || strings.Contains(codeStr, "VALUE_TYPE"):
		return "SCHEMA"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "ROWS"):
		return "DATABASE"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "RESULT"):
		return "ANALYSIS"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
