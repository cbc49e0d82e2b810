// Package apperrors defines the structured error taxonomy shared by every
// engine and facade in the orchestration core.
package apperrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is one of the structured error codes the core must surface.
type Code string

const (
	CodeValidation               Code = "VALIDATION_ERROR"
	CodeNotFound                 Code = "NOT_FOUND"
	CodeConflict                 Code = "CONFLICT"
	CodeForbidden                Code = "FORBIDDEN"
	CodeStaleContext             Code = "STALE_CONTEXT"
	CodeMissingCompletionSummary Code = "MISSING_COMPLETION_SUMMARY"
	CodeDependencyCycle          Code = "DEPENDENCY_CYCLE"
	CodeInternal                 Code = "INTERNAL_ERROR"
)

// Error is the core's single structured error type. Facades translate it
// into whatever the transport needs without unwrapping domain semantics.
type Error struct {
	Code        Code
	Entity      string
	Field       string
	Message     string
	Recoverable bool
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match on Code alone (ignoring message/cause).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newErr(code Code, msg string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(msg, args...)}
}

// Validation builds a VALIDATION_ERROR naming the offending field.
func Validation(field, msg string, args ...interface{}) *Error {
	e := newErr(CodeValidation, msg, args...)
	e.Field = field
	return e
}

// NotFound builds a NOT_FOUND error naming the entity kind and id.
func NotFound(entity, id string) *Error {
	e := newErr(CodeNotFound, "%s %q not found", entity, id)
	e.Entity = entity
	return e
}

// Conflict builds a CONFLICT error (duplicate or locked resource).
func Conflict(msg string, args ...interface{}) *Error {
	return newErr(CodeConflict, msg, args...)
}

// Forbidden builds a FORBIDDEN error. Per spec §7 it must never leak the
// existence of the target id.
func Forbidden(msg string, args ...interface{}) *Error {
	return newErr(CodeForbidden, msg, args...)
}

// StaleContext builds a STALE_CONTEXT error including the task id and the
// number of seconds the context lags, per spec §7.
func StaleContext(taskID string, lagSeconds float64) *Error {
	return newErr(CodeStaleContext,
		"task %s: context is %.0fs stale; record progress before retrying", taskID, lagSeconds)
}

// MissingCompletionSummary builds the dedicated completion error.
func MissingCompletionSummary(taskID string) *Error {
	return newErr(CodeMissingCompletionSummary, "task %s: completion_summary is required", taskID)
}

// DependencyCycle builds a DEPENDENCY_CYCLE error.
func DependencyCycle(msg string, args ...interface{}) *Error {
	return newErr(CodeDependencyCycle, msg, args...)
}

// Internal builds an INTERNAL_ERROR. recoverable mirrors spec §7: true for
// transient infrastructure failures that exhausted retries, false for
// programming errors.
func Internal(recoverable bool, cause error, msg string, args ...interface{}) *Error {
	e := newErr(CodeInternal, msg, args...)
	e.Recoverable = recoverable
	if cause != nil {
		e.cause = errors.WithStack(cause)
	}
	return e
}

// CodeOf extracts the Code from err, defaulting to INTERNAL_ERROR for
// anything not produced by this package (a programming error, per §7).
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
