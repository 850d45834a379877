package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/randalmurphal/stencil/pkg/stencil/filter"
)

var (
	// pongo2 context keys must be plain identifiers.
	identifier = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	// extends must stay a root-level tag, so documents using it are not wrapped.
	extendsTag = regexp.MustCompile(`\{%-?\s*extends\b`)
)

func init() {
	registerStringFilter("minify", filter.MinifyString)
	registerStringFilter("sanitize", filter.SanitizeString)
}

// registerStringFilter exposes a string transform as a pongo2 filter
// unless a filter with that name already exists.
func registerStringFilter(name string, fn func(string) string) {
	if pongo2.FilterExists(name) {
		return
	}
	_ = pongo2.RegisterFilter(name, func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsSafeValue(fn(in.String())), nil
	})
}

// Pongo2Executor renders Django-style documents with pongo2.
//
// Autoescaping is off by default; escaping belongs to the escape filter so
// that it runs once, on variables, before the document sees them. Documents
// that use {% extends %} keep pongo2's global autoescape setting.
//
// Scope keys that are not plain identifiers are not visible to documents.
type Pongo2Executor struct {
	set        *pongo2.TemplateSet
	autoescape bool
}

// Pongo2Option configures a Pongo2Executor.
type Pongo2Option func(*Pongo2Executor)

// WithAutoescape turns pongo2 autoescaping on or off for plain documents.
func WithAutoescape(enabled bool) Pongo2Option {
	return func(e *Pongo2Executor) {
		e.autoescape = enabled
	}
}

// WithGlobals makes values visible to every document rendered by the executor.
// Scope values win over globals with the same name.
func WithGlobals(globals map[string]any) Pongo2Option {
	return func(e *Pongo2Executor) {
		for k, v := range globals {
			e.set.Globals[k] = v
		}
	}
}

// NewPongo2Executor returns an executor reading documents from src.
// A nil src reads from the local filesystem.
func NewPongo2Executor(src Source, opts ...Pongo2Option) *Pongo2Executor {
	if src == nil {
		src = OSSource{}
	}
	e := &Pongo2Executor{}
	e.set = pongo2.NewSet("stencil", &sourceLoader{source: src, executor: e})
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements Executor.
func (e *Pongo2Executor) Execute(ctx context.Context, name string, scope map[string]any, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tpl, err := e.set.FromFile(name)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	data := make(pongo2.Context, len(scope))
	for k, v := range scope {
		if identifier.MatchString(k) {
			data[k] = v
		}
	}
	if err := tpl.ExecuteWriter(data, w); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	return nil
}

// sourceLoader adapts a Source to pongo2.TemplateLoader. Includes resolve
// relative to the including document.
type sourceLoader struct {
	source   Source
	executor *Pongo2Executor
}

func (l *sourceLoader) Abs(base, name string) string {
	if base == "" || l.source.IsAbs(name) {
		return name
	}
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		return l.source.Join(base[:i], name)
	}
	return name
}

func (l *sourceLoader) Get(name string) (io.Reader, error) {
	raw, err := l.source.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if l.executor.autoescape || extendsTag.Match(raw) {
		return bytes.NewReader(raw), nil
	}
	var buf bytes.Buffer
	buf.Grow(len(raw) + 48)
	buf.WriteString("{% autoescape off %}")
	buf.Write(raw)
	buf.WriteString("{% endautoescape %}")
	return &buf, nil
}
