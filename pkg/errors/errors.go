// Package errors provides structured error handling for delimtab
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents invalid arguments
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeSourceUnavailable represents a source that cannot be opened or read
	ErrorTypeSourceUnavailable ErrorType = "source_unavailable"
	// ErrorTypeEmptySource represents a source with no content at all
	ErrorTypeEmptySource ErrorType = "empty_source"
	// ErrorTypeIndexOutOfRange represents an out of bounds row or field access
	ErrorTypeIndexOutOfRange ErrorType = "index_out_of_range"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeExport represents failures while writing an export format
	ErrorTypeExport ErrorType = "export"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsFatalLoad reports whether err aborts a table load.
func IsFatalLoad(err error) bool {
	return IsType(err, ErrorTypeSourceUnavailable) || IsType(err, ErrorTypeEmptySource)
}

// OutOfRange builds an index_out_of_range error for index n against length size.
func OutOfRange(what string, n, size int) *Error {
	return &Error{
		Type:    ErrorTypeIndexOutOfRange,
		Message: fmt.Sprintf("%s index %d out of range [0, %d)", what, n, size),
		Details: map[string]interface{}{"index": n, "size": size},
		Stack:   captureStack(2),
	}
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
