package behavior

import (
	"errors"
	"fmt"
)

// ErrorClass classifies an engine error for handling and reporting.
//
// Execution-time problems never surface as errors: they resolve to an
// Outcome plus a report entry. Errors are reserved for the phases before
// execution (construction, configuration) and for structural misuse.
type ErrorClass string

const (
	// ErrorClassConstruction indicates the factory could not produce an
	// instance, e.g. for an unregistered type. Fail fast, check before use.
	ErrorClassConstruction ErrorClass = "construction"

	// ErrorClassConfiguration indicates invalid or inconsistent settings.
	// Non-fatal: it blocks triggering execution until resolved.
	ErrorClassConfiguration ErrorClass = "configuration"

	// ErrorClassStructure indicates a defect in the behavior tree itself,
	// e.g. a duplicate child name or a transition to an unknown sibling.
	ErrorClassStructure ErrorClass = "structure"
)

// Sentinel errors for programmatic handling with errors.Is.
var (
	// ErrTypeNotRegistered is returned by Factory.Construct for an unknown type.
	ErrTypeNotRegistered = errors.New("behavior type not registered")

	// ErrChildNotFound is returned when a composite has no child of the
	// requested name.
	ErrChildNotFound = errors.New("child behavior not found")

	// ErrChildType is returned by the typed child accessor when the child
	// exists but has a different concrete type.
	ErrChildType = errors.New("child behavior has unexpected type")

	// ErrNotExecutable is returned when a behavior holding inconsistencies
	// is asked to execute.
	ErrNotExecutable = errors.New("behavior has unresolved inconsistencies")
)

// Error is a classified engine error carrying the behavior it refers to.
type Error struct {
	// Class is the error classification.
	Class ErrorClass

	// Behavior is the nested name of the behavior involved, if any.
	Behavior string

	// Message is the human-readable error message.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	if e.Behavior != "" {
		msg = fmt.Sprintf("[%s] %s (behavior=%s)", e.Class, e.Message, e.Behavior)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a classified error.
func newError(class ErrorClass, behavior, format string, args ...interface{}) *Error {
	return &Error{
		Class:    class,
		Behavior: behavior,
		Message:  fmt.Sprintf(format, args...),
	}
}

// wrapError creates a classified error wrapping an underlying one.
func wrapError(class ErrorClass, behavior string, err error, format string, args ...interface{}) *Error {
	return &Error{
		Class:    class,
		Behavior: behavior,
		Message:  fmt.Sprintf(format, args...),
		Err:      err,
	}
}
