// Package errors provides error handling utilities for jetscope.
//
// This file converts panics raised inside per-sample workers into structured
// errors so that a single malformed jet or image cannot take down a whole scan.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError represents an error that was created from a recovered panic.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string

	// Index is the sample being processed, or -1 when not sample-scoped
	Index int
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("panic in %s (sample %d): %v", e.Operation, e.Index, e.PanicValue)
	}
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String provides detailed information including stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("%s\nStack trace:\n%s", e.Error(), e.StackTrace)
}

// NewPanicError creates a new PanicError with the given operation context and panic value.
func NewPanicError(operation string, index int, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
		Index:      index,
	}
}

// RecoverSample is used with defer to turn a panic inside per-sample work
// into a *PanicError assigned to *err. The sample index is kept on the error
// and an error already in *err is wrapped.
//
//	func process(i int) (err error) {
//	    defer RecoverSample(&err, "JetMasses", i)
//	    // ...
//	}
func RecoverSample(err *error, operation string, index int) {
	if r := recover(); r != nil {
		*err = fromPanic(*err, NewPanicError(operation, index, r))
	}
}

func fromPanic(existing error, p *PanicError) error {
	if existing != nil {
		return fmt.Errorf("%s (original error: %w)", p.Error(), existing)
	}
	return p
}
