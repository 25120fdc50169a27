// Package errors provides centralized error definitions and error handling utilities
// for conclist. It defines the sentinel errors of the concurrent collections,
// semantic error types that carry the offending index or argument, and
// classification helpers.
//
// # Error Kinds
//
//   - RangeError: an index outside the valid bounds of an operation (wraps ErrOutOfRange)
//   - ArgumentError: an absent item where a concrete one is required (wraps ErrInvalidArgument)
//   - LockError: a reentrant lock acquisition by the goroutine already holding it
//     (wraps ErrLockRecursion). LockError is raised with panic, never returned.
//   - ValidationError: invalid configuration input
//
// # Usage
//
//	if _, err := list.Get(7); errors.Is(err, errors.ErrOutOfRange) { ... }
//
//	var rangeErr *errors.RangeError
//	if errors.As(err, &rangeErr) {
//	    fmt.Println(rangeErr.Index, rangeErr.Count)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Collection sentinel errors
var (
	// ErrOutOfRange indicates an index outside the bounds valid for the operation.
	ErrOutOfRange = New("index out of range")
	// ErrInvalidArgument indicates an absent item where a concrete item is required.
	ErrInvalidArgument = New("invalid argument")
	// ErrInsufficientCapacity indicates a copy target too small for the contents.
	ErrInsufficientCapacity = New("insufficient capacity in target")
	// ErrCursorPosition indicates a cursor read before the first or after the last element.
	ErrCursorPosition = New("cursor is not positioned on an element")
)

// Lock sentinel errors
var (
	// ErrLockRecursion indicates that a goroutine tried to acquire a lock it already holds.
	ErrLockRecursion = New("recursive lock acquisition")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// severer is implemented by every error type in this package.
type severer interface {
	Severity() Severity
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	severity Severity
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// -----------------------------------------------------------------------------
// Collection Errors
// -----------------------------------------------------------------------------

// RangeError reports an index that is outside [0, Count) or, for insertions
// and copy offsets, outside [0, Count].
//
// Example:
//
//	err := errors.NewRangeError("get", 5, 3)
//	fmt.Println(err) // "range error [op=get, index=5, count=3]: index out of range"
type RangeError struct {
	baseError
	Op    string
	Index int
	Count int
}

// NewRangeError creates a new RangeError wrapping ErrOutOfRange.
func NewRangeError(op string, index, count int) *RangeError {
	return &RangeError{
		baseError: baseError{
			message:  "index out of range",
			cause:    ErrOutOfRange,
			severity: SeverityWarning,
		},
		Op:    op,
		Index: index,
		Count: count,
	}
}

// WithCause replaces the wrapped sentinel, e.g. with ErrInsufficientCapacity.
func (e *RangeError) WithCause(cause error) *RangeError {
	e.cause = cause
	if cause != nil {
		e.message = cause.Error()
	}
	return e
}

// Error returns the formatted error message.
func (e *RangeError) Error() string {
	return fmt.Sprintf("range error [op=%s, index=%d, count=%d]: %s", e.Op, e.Index, e.Count, e.message)
}

// Is checks if this error matches the target.
func (e *RangeError) Is(target error) bool {
	if _, ok := target.(*RangeError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ArgumentError reports an absent item passed where the observable list needs
// a concrete subscription target.
type ArgumentError struct {
	baseError
	Op       string
	Argument string
}

// NewArgumentError creates a new ArgumentError wrapping ErrInvalidArgument.
func NewArgumentError(op, argument string) *ArgumentError {
	return &ArgumentError{
		baseError: baseError{
			message:  fmt.Sprintf("%s must not be nil", argument),
			cause:    ErrInvalidArgument,
			severity: SeverityWarning,
		},
		Op:       op,
		Argument: argument,
	}
}

// WithReason replaces the default "must not be nil" explanation.
func (e *ArgumentError) WithReason(reason string) *ArgumentError {
	e.message = fmt.Sprintf("%s %s", e.Argument, reason)
	return e
}

// Error returns the formatted error message.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument error [op=%s]: %s", e.Op, e.message)
}

// Is checks if this error matches the target.
func (e *ArgumentError) Is(target error) bool {
	if _, ok := target.(*ArgumentError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// LockError reports a lock protocol violation: the calling goroutine asked for
// Mode while already holding the same lock in Held. It is a programming error
// and is raised with panic so that the caller fails fast instead of deadlocking.
//
// Example:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        var lockErr *errors.LockError
//	        if err, ok := r.(error); ok && errors.As(err, &lockErr) { ... }
//	    }
//	}()
type LockError struct {
	baseError
	Mode string
	Held string
}

// NewLockError creates a new LockError wrapping ErrLockRecursion.
func NewLockError(mode, held string) *LockError {
	return &LockError{
		baseError: baseError{
			message:  "recursive lock acquisition",
			cause:    ErrLockRecursion,
			severity: SeverityCritical,
		},
		Mode: mode,
		Held: held,
	}
}

// Error returns the formatted error message.
func (e *LockError) Error() string {
	return fmt.Sprintf("lock error [mode=%s, held=%s]: %s: handlers must not re-enter the emitting list",
		e.Mode, e.Held, e.message)
}

// Is checks if this error matches the target.
func (e *LockError) Is(target error) bool {
	if _, ok := target.(*LockError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("invalid configuration").WithCause(fieldErrs)
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
	}
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.message, e.cause)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors not defined by this package.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var s severer
	if As(err, &s) {
		return s.Severity()
	}
	return SeverityError
}

// IsProgrammingError returns true for lock protocol violations, which signal a
// bug in the caller rather than bad input.
func IsProgrammingError(err error) bool {
	return err != nil && Is(err, ErrLockRecursion)
}

// FromPanic converts a recovered panic value into an error.
// Returns nil when r is nil.
func FromPanic(r any) error {
	switch v := r.(type) {
	case nil:
		return nil
	case error:
		return v
	default:
		return fmt.Errorf("panic: %v", v)
	}
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "stress round failed")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
