// Package errors defines the categorized error type used across the
// reconciliation service. Errors carry a category, a machine-readable code,
// an optional remediation suggestion and arbitrary context, plus a stack
// trace captured at construction time.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the subsystem and handling policy they
// belong to.
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryIntegrity      ErrorCategory = "integrity"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode identifies a specific failure within a category.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig       ErrorCode = "invalid_config"
	CodeMissingMapping      ErrorCode = "missing_mapping"
	CodeUnmappedField       ErrorCode = "unmapped_field"
	CodeUnknownCounterparty ErrorCode = "unknown_counterparty"
	CodeMissingFilterColumn ErrorCode = "missing_filter_column"
	CodeMissingCancelRule   ErrorCode = "missing_cancellation_rule"

	// Reconciliation errors
	CodeIdentifierUnresolved ErrorCode = "identifier_unresolved"
	CodeMatchingFailed       ErrorCode = "matching_failed"
	CodeProcessingError      ErrorCode = "processing_error"
	CodeRunCancelled         ErrorCode = "run_cancelled"

	// Integrity errors
	CodeBucketOverlap    ErrorCode = "bucket_overlap"
	CodeCountMismatch    ErrorCode = "count_mismatch"
	CodeDataInconsistent ErrorCode = "data_inconsistent"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// Context provides additional structured information about an error.
type Context map[string]interface{}

// ReconcilerError is the base error type for all service errors.
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface.
func (e *ReconcilerError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s/%s] %s", e.Category, e.Code, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// WithSuggestion attaches a remediation hint and returns the error.
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// WithContext attaches one context key-value pair and returns the error.
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// UserMessage returns a message suitable for end-user display, including
// the suggestion when present.
func (e *ReconcilerError) UserMessage() string {
	msg := e.Message
	if e.Suggestion != "" {
		msg += "\nSuggestion: " + e.Suggestion
	}
	return msg
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func captureStack() errors.StackTrace {
	if st, ok := errors.New("").(stackTracer); ok {
		trace := st.StackTrace()
		if len(trace) > 2 {
			return trace[2:]
		}
		return trace
	}
	return nil
}

// New creates a ReconcilerError with the given category, code and message.
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: captureStack(),
	}
}

// Newf creates a ReconcilerError with a formatted message.
func Newf(category ErrorCategory, code ErrorCode, format string, args ...interface{}) *ReconcilerError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with category, code and message.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	e := New(category, code, message)
	e.Cause = err
	return e
}

// NewConfigurationError reports a configuration gap. These degrade by
// omission and are never fatal to a run.
func NewConfigurationError(code ErrorCode, message string) *ReconcilerError {
	return New(CategoryConfiguration, code, message)
}

// NewParseError reports a file or value parsing failure.
func NewParseError(code ErrorCode, message string, cause error) *ReconcilerError {
	return Wrap(cause, CategoryParse, code, message)
}

// NewRunError reports a run-level failure that terminates reconciliation
// early with a partial outcome set.
func NewRunError(code ErrorCode, message string) *ReconcilerError {
	return New(CategoryReconciliation, code, message)
}

// NewIntegrityError reports a data-integrity anomaly detected by a
// post-condition check. The offending data is repaired defensively, but the
// anomaly must still reach the caller.
func NewIntegrityError(code ErrorCode, message string) *ReconcilerError {
	return New(CategoryIntegrity, code, message)
}

// GetCategory extracts the category from any error, defaulting to internal.
func GetCategory(err error) ErrorCategory {
	var re *ReconcilerError
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryInternal
}

// GetCode extracts the code from any error.
func GetCode(err error) ErrorCode {
	var re *ReconcilerError
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeUnexpectedError
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, category ErrorCategory) bool {
	return GetCategory(err) == category
}

// As delegates to github.com/pkg/errors for target matching.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is delegates to github.com/pkg/errors for sentinel matching.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
