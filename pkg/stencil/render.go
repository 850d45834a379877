package stencil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/stencil/pkg/stencil/config"
	"github.com/randalmurphal/stencil/pkg/stencil/event"
	"github.com/randalmurphal/stencil/pkg/stencil/filter"
	"github.com/randalmurphal/stencil/pkg/stencil/observability"
)

// renderState is shared by every template rendered under one top-level
// render. It is carried in the context so that children, including
// filter.Child values that are not Templates, continue the same render.
type renderState struct {
	renderID string
	logger   *slog.Logger
	maxDepth int
	depth    int
	inFlight map[*Template]bool
}

type stateKey struct{}

func stateFrom(ctx context.Context) *renderState {
	st, _ := ctx.Value(stateKey{}).(*renderState)
	return st
}

// RenderID returns the identifier of the top-level render ctx belongs to,
// or "" outside a render. Listeners can use it to correlate their logs.
func RenderID(ctx context.Context) string {
	if st := stateFrom(ctx); st != nil {
		return st.renderID
	}
	return ""
}

// frame names the variable a child render is bound to. filtered marks
// inherited variables that already went through the parent's variable
// stage.
type frame struct {
	parent   string
	key      string
	filtered bool
}

// snapshot is what a render copies out of a Template before it starts.
type snapshot struct {
	identifier string
	config     *config.Config
	variables  *filter.Variables
}

func (t *Template) snapshot() snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	vars := t.variables.Clone()
	if t.opts.deepCopy {
		vars = t.variables.DeepClone()
	}
	return snapshot{
		identifier: t.identifier,
		config:     t.config.Clone(),
		variables:  vars,
	}
}

// Render renders the template and returns its output.
//
// Render flow:
//  1. Resolve the document (directory + path + extension)
//  2. Dispatch Template_PreProcess on a per-call copy of the variables
//  3. Dispatch Variables_PreProcess
//  4. Render every child template and bind its output in its place
//  5. Execute the document; execution failures render as empty output
//  6. Dispatch Template_PostProcess and return the buffer
//
// The template itself is never modified by a render.
//
// Example:
//
//	out, err := tpl.Render(ctx)
//	if err != nil {
//	    // err is fatal: missing document, listener panic, depth limit or cancellation
//	}
func (t *Template) Render(ctx context.Context) (string, error) {
	return t.RenderWith(ctx, nil)
}

// RenderWith renders the template with variables inherited from a caller.
// When the template's inherit option is true the inherited variables are
// bound over its own for this render only and pass through the variable
// filters; otherwise they are ignored.
func (t *Template) RenderWith(ctx context.Context, inherited *filter.Variables) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if st := stateFrom(ctx); st != nil {
		return t.render(ctx, st, inherited, frame{})
	}

	st := &renderState{
		renderID: uuid.NewString(),
		maxDepth: t.opts.maxDepth,
		inFlight: make(map[*Template]bool),
	}
	st.logger = observability.EnrichLogger(t.opts.logger, st.renderID, t.Identifier())
	return t.render(context.WithValue(ctx, stateKey{}, st), st, inherited, frame{})
}

// render runs the pipeline for one template.
func (t *Template) render(ctx context.Context, st *renderState, inherited *filter.Variables, at frame) (out string, err error) {
	snap := t.snapshot()
	id := snap.identifier
	depth := st.depth

	var span trace.Span
	if depth == 0 {
		ctx, span = t.opts.spans.StartRenderSpan(ctx, id, st.renderID)
	} else {
		ctx, span = t.opts.spans.StartChildSpan(ctx, at.parent, at.key, id)
	}
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		durationMs := float64(elapsed.Microseconds()) / 1000

		t.opts.spans.EndSpanWithError(span, err)
		t.opts.metrics.RecordRender(ctx, id, depth, elapsed, err)
		if err != nil {
			observability.LogRenderError(st.logger, id, depth, err, durationMs)
			return
		}
		t.opts.metrics.RecordOutput(ctx, id, int64(len(out)))
		observability.LogRenderComplete(st.logger, id, depth, durationMs, len(out))
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if depth >= st.maxDepth {
		return "", &MaxDepthError{Max: st.maxDepth, Identifier: id}
	}
	st.depth++
	st.inFlight[t] = true
	defer func() {
		delete(st.inFlight, t)
		st.depth--
	}()

	// Resolving
	name, err := t.resolve(id, snap.config)
	if err != nil {
		return "", err
	}
	observability.LogRenderStart(st.logger, id, name, depth)

	// Inherited variables from a parent render are bound after the
	// variable stage so shared filters see each value once.
	inherit := inherited != nil && snap.config.Bool(OptionInherit, false)
	vars := snap.variables
	if inherit && !at.filtered {
		vars.Merge(inherited)
	}
	fc := filter.NewContext(ctx, id, snap.config, vars)

	// PreProcessing, FilteringVariables
	for _, ev := range []string{event.TemplatePreProcess, event.VariablesPreProcess} {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if fc, err = t.dispatch(st, fc, ev); err != nil {
			return "", err
		}
	}
	if inherit && at.filtered {
		fc.Variables.Merge(inherited)
	}

	// RenderingChildren
	if err := t.renderChildren(ctx, st, fc); err != nil {
		return "", err
	}

	// ExecutingDocument
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fc.Buffer = t.execute(ctx, st, id, name, fc.Variables)

	// PostProcessing
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fc, err = t.dispatch(st, fc, event.TemplatePostProcess); err != nil {
		return "", err
	}
	return fc.Buffer, nil
}

// dispatch publishes ev, converting listener panics into *PanicError.
func (t *Template) dispatch(st *renderState, fc *filter.Context, ev string) (out *filter.Context, err error) {
	d := t.opts.dispatcher
	if !d.HasListeners(ev) {
		return fc, nil
	}
	observability.LogStage(st.logger, fc.Identifier, ev, d.Len(ev))

	defer func() {
		if r := recover(); r != nil {
			out = fc
			err = &PanicError{
				Identifier: fc.Identifier,
				Stage:      ev,
				Value:      r,
				Stack:      string(debug.Stack()),
			}
		}
	}()

	out, _ = d.Dispatch(ev, fc)
	if out == nil {
		return fc, fmt.Errorf("%s: %w", ev, ErrNilContext)
	}
	if out.Variables == nil {
		out.Variables = filter.NewVariables()
	}
	return out, nil
}

// renderChildren replaces every child-valued variable with its output.
// Children see a snapshot of the scope with all children removed. A child
// already rendering further up the stack is bound as the empty string.
func (t *Template) renderChildren(ctx context.Context, st *renderState, fc *filter.Context) error {
	var siblings *filter.Variables

	for _, key := range fc.Variables.Keys() {
		value, _ := fc.Variables.Get(key)
		child, ok := value.(filter.Child)
		if !ok {
			continue
		}
		if siblings == nil {
			siblings = fc.Variables.Without()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		tpl, isTemplate := child.(*Template)
		if isTemplate && st.inFlight[tpl] {
			observability.LogChildConsumed(st.logger, fc.Identifier, key, child.Identifier())
			fc.Variables.Set(key, "")
			continue
		}

		observability.LogChildRender(st.logger, fc.Identifier, key, child.Identifier())
		var (
			rendered string
			err      error
		)
		if isTemplate {
			rendered, err = tpl.render(ctx, st, siblings, frame{parent: fc.Identifier, key: key, filtered: true})
		} else {
			rendered, err = child.Render(ctx)
		}
		if err != nil {
			return fmt.Errorf("render child %s: %w", key, err)
		}
		fc.Variables.Set(key, rendered)
	}
	return nil
}

// execute runs the executor into a fresh buffer. Failures are contained:
// they are logged, counted and traced, and the buffer is empty.
func (t *Template) execute(ctx context.Context, st *renderState, id, name string, vars *filter.Variables) string {
	var sb strings.Builder
	err := t.runExecutor(ctx, id, name, vars.Map(), &sb)
	if err == nil {
		return sb.String()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ""
	}

	execErr := &DocumentExecutionError{Identifier: id, Path: name, Err: err}
	observability.LogExecutionSoftFail(st.logger, id, name, execErr.Err)
	t.opts.metrics.RecordSoftFail(ctx, id)
	t.opts.spans.AddSpanEvent(ctx, "document.soft_fail",
		attribute.String("document.path", name),
		attribute.String("error", err.Error()),
	)
	return ""
}

func (t *Template) runExecutor(ctx context.Context, id, name string, scope map[string]any, sb *strings.Builder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Identifier: id, Stage: "execute", Value: r, Stack: string(debug.Stack())}
		}
	}()
	return t.opts.executor.Execute(ctx, name, scope, sb)
}
