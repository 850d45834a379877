package stencil

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for template construction and configuration.
var (
	// ErrDocumentNotFound indicates a template's path does not reference an existing document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrBadMethodCall indicates Accessor was called with a name that is not get<Key> or set<Key>.
	ErrBadMethodCall = errors.New("bad method call")

	// ErrChildExtend indicates Extend could not build the child template.
	ErrChildExtend = errors.New("child extend failed")

	// ErrInvalidOption indicates an option was set to a value of the wrong type.
	ErrInvalidOption = errors.New("invalid option")
)

// Sentinel errors for rendering.
var (
	// ErrDocumentExecution indicates the executor failed on a resolved document.
	// The engine contains these: the template renders as an empty buffer.
	ErrDocumentExecution = errors.New("document execution failed")

	// ErrMaxDepth indicates the child render tree exceeded the configured depth.
	ErrMaxDepth = errors.New("exceeded maximum render depth")

	// ErrNilContext indicates a listener returned a nil filter context.
	ErrNilContext = errors.New("listener returned nil context")
)

// DocumentNotFoundError reports a path that does not resolve to a document.
type DocumentNotFoundError struct {
	// Identifier is the template whose path failed.
	Identifier string
	// Path is the resolved document name, or the raw path when resolution failed early.
	Path string
	// Err is the underlying resolution error.
	Err error
}

// Error implements the error interface.
func (e *DocumentNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("template %s: no document path configured", e.Identifier)
	}
	return fmt.Sprintf("template %s: document %q not found", e.Identifier, e.Path)
}

// Is reports ErrDocumentNotFound.
func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DocumentNotFoundError) Unwrap() error {
	return e.Err
}

// BadMethodCallError reports an accessor name that cannot be dispatched.
type BadMethodCallError struct {
	Method string
}

// Error implements the error interface.
func (e *BadMethodCallError) Error() string {
	return fmt.Sprintf("bad method call: %q", e.Method)
}

// Unwrap returns ErrBadMethodCall for errors.Is support.
func (e *BadMethodCallError) Unwrap() error {
	return ErrBadMethodCall
}

// DocumentExecutionError reports an executor failure.
type DocumentExecutionError struct {
	// Identifier is the template being rendered.
	Identifier string
	// Path is the resolved document name.
	Path string
	// Err is the executor's error.
	Err error
}

// Error implements the error interface.
func (e *DocumentExecutionError) Error() string {
	return fmt.Sprintf("template %s: execute %s: %v", e.Identifier, e.Path, e.Err)
}

// Is reports ErrDocumentExecution.
func (e *DocumentExecutionError) Is(target error) bool {
	return target == ErrDocumentExecution
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DocumentExecutionError) Unwrap() error {
	return e.Err
}

// ExtendError reports a failed Extend. The parent is left unchanged.
type ExtendError struct {
	// Parent is the template Extend was called on.
	Parent string
	// Child is the requested child identifier.
	Child string
	// Err is the construction error.
	Err error
}

// Error implements the error interface.
func (e *ExtendError) Error() string {
	return fmt.Sprintf("extend %s with %s: %v", e.Parent, e.Child, e.Err)
}

// Is reports ErrChildExtend.
func (e *ExtendError) Is(target error) bool {
	return target == ErrChildExtend
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExtendError) Unwrap() error {
	return e.Err
}

// MaxDepthError provides context when the render tree is too deep.
type MaxDepthError struct {
	// Max is the configured depth limit.
	Max int
	// Identifier is the template that would have rendered past the limit.
	Identifier string
}

// Error implements the error interface.
func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("exceeded maximum render depth (%d) at template %s", e.Max, e.Identifier)
}

// Unwrap returns ErrMaxDepth for errors.Is support.
func (e *MaxDepthError) Unwrap() error {
	return ErrMaxDepth
}

// PanicError captures a panic raised by a listener.
// It includes the stack trace for debugging.
type PanicError struct {
	// Identifier is the template being rendered.
	Identifier string
	// Stage is the event being dispatched, or "execute" for the executor.
	Stage string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("template %s panicked during %s: %v", e.Identifier, e.Stage, e.Value)
}

// Category describes how a render error should be handled.
type Category int

const (
	// CategoryFatal means the render produced no output.
	CategoryFatal Category = iota

	// CategoryContained means the failure was absorbed and output was still produced.
	// Document execution errors and failed extends fall here.
	CategoryContained

	// CategoryIgnored means there is nothing to handle: no error, or the caller cancelled.
	CategoryIgnored
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFatal:
		return "fatal"
	case CategoryContained:
		return "contained"
	case CategoryIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Categorize classifies err.
func Categorize(err error) Category {
	switch {
	case err == nil:
		return CategoryIgnored
	case errors.Is(err, context.Canceled):
		return CategoryIgnored
	case errors.Is(err, ErrDocumentExecution), errors.Is(err, ErrChildExtend):
		return CategoryContained
	default:
		return CategoryFatal
	}
}
