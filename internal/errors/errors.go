// Package errors provides structured error handling for mentat.
//
// The policy throughout the engine is "catch, record, report" - there is
// no retry path anywhere, so errors carry no retry hints.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================
// Error Categories
// ============================================================

// Category defines the type of error for handling decisions.
type Category int

const (
	// CategoryValidation errors are malformed descriptors or analyzer input.
	// Reported immediately, never retried.
	CategoryValidation Category = iota

	// CategoryNotFound errors are unknown tool or session references.
	// Reported to the caller, non-fatal to the process.
	CategoryNotFound

	// CategoryTimeout errors mean a step budget was exceeded. They surface
	// to the caller and mark the session as errored.
	CategoryTimeout

	// CategoryToolExecution errors wrap failures raised by a collaborator's
	// tool. The interaction layer converts them into failed results; the
	// orchestrator's step loop records and re-raises them.
	CategoryToolExecution
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNotFound:
		return "not_found"
	case CategoryTimeout:
		return "timeout"
	case CategoryToolExecution:
		return "tool_execution"
	default:
		return "unknown"
	}
}

// ============================================================
// AppError - Main Error Type
// ============================================================

// AppError is the main error type for all mentat errors.
type AppError struct {
	// Code is a unique error code for programmatic handling
	Code string

	// Message is a user-friendly error message
	Message string

	// Category determines how the error should be handled
	Category Category

	// Inner is the underlying error
	Inner error

	// Suggestions are recovery suggestions for the user
	Suggestions []string

	// Context is additional debugging information
	Context map[string]interface{}
}

// Error returns the error message.
func (e *AppError) Error() string {
	var sb strings.Builder

	if e.Code != "" {
		sb.WriteString("[")
		sb.WriteString(e.Code)
		sb.WriteString("] ")
	}

	sb.WriteString(e.Message)

	if e.Inner != nil {
		innerMsg := e.Inner.Error()
		if innerMsg != "" && innerMsg != e.Message {
			sb.WriteString(": ")
			sb.WriteString(innerMsg)
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Inner
}

// Is checks if the target error is contained in this error.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Inner, target)
}

// ============================================================
// Error Constructors
// ============================================================

// New creates a new AppError.
func New(code, message string, category Category) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: category,
	}
}

// Wrap wraps an existing error with context.
func Wrap(err error, code, message string, category Category) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, keep its suggestions and context
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:        code,
			Message:     message,
			Category:    category,
			Inner:       appErr,
			Suggestions: appErr.Suggestions,
			Context:     appErr.Context,
		}
	}

	return &AppError{
		Code:     code,
		Message:  message,
		Category: category,
		Inner:    err,
	}
}

// Validation creates a validation error.
func Validation(code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: CategoryValidation,
	}
}

// Validationf creates a validation error with a formatted message.
func Validationf(code, format string, args ...any) *AppError {
	return Validation(code, fmt.Sprintf(format, args...))
}

// NotFound creates a not-found error.
func NotFound(code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: CategoryNotFound,
	}
}

// Timeout creates a timeout error.
func Timeout(code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: CategoryTimeout,
	}
}

// ToolExecution creates a tool execution error.
func ToolExecution(code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: CategoryToolExecution,
	}
}

// ============================================================
// Builder Pattern for Fluent Error Construction
// ============================================================

// Builder provides fluent error construction.
type Builder struct {
	err *AppError
}

// NewBuilder starts building a new error.
func NewBuilder(code, message string) *Builder {
	return &Builder{
		err: &AppError{
			Code:     code,
			Message:  message,
			Category: CategoryValidation,
			Context:  make(map[string]interface{}),
		},
	}
}

// Validation marks the error as a validation error.
func (b *Builder) Validation() *Builder {
	b.err.Category = CategoryValidation
	return b
}

// NotFound marks the error as a not-found error.
func (b *Builder) NotFound() *Builder {
	b.err.Category = CategoryNotFound
	return b
}

// Timeout marks the error as a timeout error.
func (b *Builder) Timeout() *Builder {
	b.err.Category = CategoryTimeout
	return b
}

// ToolExecution marks the error as a tool execution error.
func (b *Builder) ToolExecution() *Builder {
	b.err.Category = CategoryToolExecution
	return b
}

// Wrap sets the underlying error.
func (b *Builder) Wrap(err error) *Builder {
	b.err.Inner = err
	return b
}

// WithSuggestion adds a recovery suggestion.
func (b *Builder) WithSuggestion(suggestion string) *Builder {
	if b.err.Suggestions == nil {
		b.err.Suggestions = make([]string, 0)
	}
	b.err.Suggestions = append(b.err.Suggestions, suggestion)
	return b
}

// WithContext adds context information.
func (b *Builder) WithContext(key string, value interface{}) *Builder {
	b.err.Context[key] = value
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *AppError {
	return b.err
}

// ============================================================
// Error Codes
// ============================================================

const (
	// Registry errors
	CodeDescriptorInvalid = "DESCRIPTOR_INVALID"
	CodeToolExists        = "TOOL_EXISTS"
	CodeToolNotFound      = "TOOL_NOT_FOUND"
	CodeRuleInvalid       = "RULE_INVALID"

	// Analyzer errors
	CodeRequestInvalid = "REQUEST_INVALID"

	// Routing errors
	CodeNoToolsRegistered = "NO_TOOLS_REGISTERED"

	// Tool execution errors
	CodeToolExecutionFailed = "TOOL_EXECUTION_FAILED"
	CodeToolParamsInvalid   = "TOOL_PARAMS_INVALID"

	// Session errors
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeSessionTerminal = "SESSION_TERMINAL"
	CodeSessionTimeout  = "SESSION_TIMEOUT"
	CodeStepFailed      = "STEP_FAILED"

	// Config errors
	CodeConfigInvalid = "CONFIG_INVALID"
)

// ============================================================
// Helpers
// ============================================================

// GetCategory extracts the category from an error.
// Returns CategoryToolExecution for non-AppError errors.
func GetCategory(err error) Category {
	if err == nil {
		return CategoryToolExecution
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category
	}

	return CategoryToolExecution
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, category Category) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category == category
	}
	return false
}

// GetSuggestions returns recovery suggestions for an error.
func GetSuggestions(err error) []string {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Suggestions
	}

	return nil
}

// FormatUserMessage formats a user-friendly error message with suggestions.
func FormatUserMessage(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	var appErr *AppError
	if errors.As(err, &appErr) {
		sb.WriteString(appErr.Message)

		if len(appErr.Suggestions) > 0 {
			sb.WriteString("\n\nSuggestions:")
			for _, s := range appErr.Suggestions {
				sb.WriteString("\n  - ")
				sb.WriteString(s)
			}
		}

		return sb.String()
	}

	return err.Error()
}
