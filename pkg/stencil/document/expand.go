package document

import (
	"context"
	"fmt"
	"io"

	"github.com/randalmurphal/stencil/pkg/stencil/expand"
)

// ExpandExecutor renders documents by substituting ${name} and $name
// references. It has no control flow; use Pongo2Executor for loops,
// conditionals and includes.
type ExpandExecutor struct {
	source   Source
	expander *expand.Expander
}

// NewExpandExecutor returns an ExpandExecutor reading from src.
// Options configure the underlying expander; the default renders
// unknown references as empty text.
func NewExpandExecutor(src Source, opts ...expand.Option) *ExpandExecutor {
	if src == nil {
		src = OSSource{}
	}
	return &ExpandExecutor{source: src, expander: expand.New(opts...)}
}

// Execute implements Executor.
func (e *ExpandExecutor) Execute(ctx context.Context, name string, scope map[string]any, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := e.source.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	out, err := e.expander.Expand(string(raw), expand.Map(scope))
	if err != nil {
		return fmt.Errorf("expand %s: %w", name, err)
	}
	_, err = io.WriteString(w, out)
	return err
}
