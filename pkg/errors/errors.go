// Package errors provides structured error handling for the vdom engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidValue indicates a value of the wrong type or shape was passed
	// to a constructor or to the builder.
	KindInvalidValue
	// KindNotImplemented indicates an operation the receiver does not support.
	KindNotImplemented
	// KindReconcile indicates a broken invariant during reconciliation.
	KindReconcile
	// KindSchedule indicates a failure inside a scheduled unit of work.
	KindSchedule
	// KindBuild indicates a view failed to resolve to a node.
	KindBuild
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidValue:
		return "invalid value"
	case KindNotImplemented:
		return "not implemented"
	case KindReconcile:
		return "reconcile"
	case KindSchedule:
		return "schedule"
	case KindBuild:
		return "build"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// VDOMError represents a structured error in the engine.
type VDOMError struct {
	// Op is the operation that failed (e.g., "core.Reconcile").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *VDOMError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *VDOMError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "scheduler.drain").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BuildError represents a failure while resolving a view to a node.
type BuildError struct {
	// View is the type name of the view that failed.
	View string
	// Depth is the number of Body calls made before the failure.
	Depth int
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Body(): %v", e.View, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Body()", e.View)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// New wraps err in a VDOMError with the given operation and kind.
func New(op string, kind ErrorKind, err error) *VDOMError {
	return &VDOMError{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of the first VDOMError in err's chain,
// or KindUnknown when there is none.
func KindOf(err error) ErrorKind {
	for err != nil {
		switch e := err.(type) {
		case *VDOMError:
			return e.Kind
		case *PanicError:
			return KindPanic
		case *BuildError:
			return KindBuild
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *VDOMError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a view build fails.
	HandleBuildError(err *BuildError)
}
