// Package errors provides the error taxonomy shared by the broker, the
// directory and the worker runtime. It includes sentinel error variables,
// error classification, and helper functions for consistent error wrapping
// across the module.
package errors

import (
	"errors"
	"fmt"
)

// Class represents the classification of errors for handling purposes
type Class int

const (
	// ClassInvalid represents errors due to invalid input or naming
	ClassInvalid Class = iota
	// ClassNotFound represents lookups that matched no service
	ClassNotFound
	// ClassMismatch represents typed-handle downcasts that failed
	ClassMismatch
	// ClassRuntime represents failures raised by user callbacks
	ClassRuntime
	// ClassShutdown represents operations against terminated resources
	ClassShutdown
)

// String returns the string representation of Class
func (c Class) String() string {
	switch c {
	case ClassInvalid:
		return "invalid"
	case ClassNotFound:
		return "not_found"
	case ClassMismatch:
		return "type_mismatch"
	case ClassRuntime:
		return "runtime"
	case ClassShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Standard error variables for broker and worker conditions
var (
	// Naming errors
	ErrNameInvalid  = errors.New("service name is empty after normalization")
	ErrNameConflict = errors.New("name already exists as a service or group")

	// Lookup errors
	ErrNotFound      = errors.New("no service or group with this name exists")
	ErrTypeMismatch  = errors.New("service type mismatch")
	ErrNoSubscribers = errors.New("service has no subscribers")

	// Dispatch errors
	ErrSubscriberFailure = errors.New("subscriber failed during dispatch")

	// Lifecycle errors
	ErrShutdown       = errors.New("resource is shut down")
	ErrAlreadyStarted = errors.New("already started")
	ErrNotStarted     = errors.New("not started")
	ErrStopTimeout    = errors.New("timed out waiting for shutdown")
)

// ClassifiedError wraps an error with its classification and the component
// and operation that raised it.
type ClassifiedError struct {
	Class     Class
	Err       error
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Classify returns the class for an error. Unclassified errors default to
// ClassRuntime so worker loops forward them on the error service and keep
// running.
func Classify(err error) Class {
	if err == nil {
		return ClassRuntime
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	switch {
	case errors.Is(err, ErrNameInvalid) || errors.Is(err, ErrNameConflict):
		return ClassInvalid
	case errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoSubscribers):
		return ClassNotFound
	case errors.Is(err, ErrTypeMismatch):
		return ClassMismatch
	case errors.Is(err, ErrShutdown) || errors.Is(err, ErrStopTimeout):
		return ClassShutdown
	default:
		return ClassRuntime
	}
}

// IsNotFound reports whether the error is a failed name resolution.
func IsNotFound(err error) bool {
	return Classify(err) == ClassNotFound
}

// IsMismatch reports whether the error is a failed typed downcast.
func IsMismatch(err error) bool {
	return Classify(err) == ClassMismatch
}

// IsShutdown reports whether the error was raised against a terminated
// queue, pool or worker.
func IsShutdown(err error) bool {
	return Classify(err) == ClassShutdown
}

// Wrap creates a standardized error with context following the pattern:
// "component.operation: action failed: %w"
func Wrap(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, operation, action, err)
}

// newClassified creates a new classified error
// This is an internal helper - use the Wrap* variants instead.
func newClassified(class Class, err error, component, operation string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Component: component,
		Operation: operation,
	}
}

// WrapInvalid wraps an error as a naming/argument violation with context
func WrapInvalid(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ClassInvalid, Wrap(err, component, operation, action), component, operation)
}

// WrapNotFound wraps an error as a failed resolution with context
func WrapNotFound(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ClassNotFound, Wrap(err, component, operation, action), component, operation)
}

// WrapMismatch wraps an error as a failed typed downcast with context
func WrapMismatch(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ClassMismatch, Wrap(err, component, operation, action), component, operation)
}

// WrapRuntime wraps a user-callback failure with context
func WrapRuntime(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ClassRuntime, Wrap(err, component, operation, action), component, operation)
}

// WrapShutdown wraps an error raised against a terminated resource
func WrapShutdown(err error, component, operation, action string) error {
	if err == nil {
		return nil
	}
	return newClassified(ClassShutdown, Wrap(err, component, operation, action), component, operation)
}
