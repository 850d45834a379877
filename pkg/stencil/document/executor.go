package document

import (
	"context"
	"io"
)

// Executor renders a resolved document against scope and writes the
// output to w. Variables missing from scope render as empty output.
type Executor interface {
	Execute(ctx context.Context, name string, scope map[string]any, w io.Writer) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, name string, scope map[string]any, w io.Writer) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, name string, scope map[string]any, w io.Writer) error {
	return f(ctx, name, scope, w)
}
