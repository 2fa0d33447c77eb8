package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInputNotFound ErrorType = "INPUT_NOT_FOUND"
	ErrTypeSchema        ErrorType = "SCHEMA"
	ErrTypeParsing       ErrorType = "PARSING"
	ErrTypeOutputWrite   ErrorType = "OUTPUT_WRITE"
	ErrTypeConfig        ErrorType = "CONFIG"
)

// Pipeline stage names carried by fatal errors
const (
	StageConfig  = "config"
	StageRead    = "read"
	StageReshape = "reshape"
	StageWrite   = "write"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Stage   string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Stage != "" {
		prefix = fmt.Sprintf("[%s] %s stage", e.Type, e.Stage)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError of the same type, so sentinel comparisons
// like errors.Is(err, &AppError{Type: ErrTypeSchema}) work.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Stage == "" || t.Stage == e.Stage)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithStage records the pipeline stage the error surfaced in. An existing
// stage is kept, so the innermost stage wins.
func (e *AppError) WithStage(stage string) *AppError {
	if e.Stage == "" {
		e.Stage = stage
	}
	return e
}

// ContextKeys returns the context keys in sorted order
func (e *AppError) ContextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewInputNotFoundError reports a missing or unreadable input file
func NewInputNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeInputNotFound, fmt.Sprintf("input file %s not found or unreadable", path), cause).
		WithStage(StageRead).
		WithContext("path", path)
}

// NewSchemaError reports an input whose shape does not match the fixed layout
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewOutputWriteError reports a destination that could not be written
func NewOutputWriteError(path string, cause error) *AppError {
	return NewAppError(ErrTypeOutputWrite, fmt.Sprintf("cannot write output %s", path), cause).
		WithStage(StageWrite).
		WithContext("path", path)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause).WithStage(StageConfig)
}

// IsType reports whether err wraps an *AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Type == errType
}

// StageOf returns the stage of the first *AppError in err's chain, or ""
func StageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Stage
	}
	return ""
}
