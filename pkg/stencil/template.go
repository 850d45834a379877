package stencil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/randalmurphal/stencil/pkg/stencil/config"
	"github.com/randalmurphal/stencil/pkg/stencil/document"
	"github.com/randalmurphal/stencil/pkg/stencil/filter"
)

// Recognised configuration keys.
const (
	OptionIdentifier = "identifier"
	OptionPath       = "path"
	OptionDirectory  = "directory"
	OptionExtension  = "extension"
	OptionInherit    = "inherit"
	OptionDebug      = "debug"
)

// Template binds a document to a variable scope.
//
// Variables may hold scalars, nested maps and slices, or other Templates.
// A Template-valued variable is rendered first and its output bound in
// its place. A Template may be rendered by several goroutines at once;
// mutating it while a render is in progress blocks until the render has
// copied what it needs.
type Template struct {
	mu         sync.RWMutex
	identifier string
	config     *config.Config
	variables  *filter.Variables
	opts       options
}

// New creates a template whose document is named by cfg's path option.
// An identifier option in cfg is used when identifier is empty.
//
// Returns a *DocumentNotFoundError when the path is empty or does not
// resolve to an existing document.
//
// Example:
//
//	tpl, err := stencil.New("page", config.New(map[string]any{
//	    "directory": "views",
//	    "path":      "page.html",
//	}))
func New(identifier string, cfg *config.Config, opts ...Option) (*Template, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.complete()

	cfg = cfg.Clone()
	if raw, ok := cfg.Get(OptionIdentifier); ok {
		if identifier == "" {
			s, isString := raw.(string)
			if !isString {
				return nil, fmt.Errorf("%w: identifier must be a string, got %T", ErrInvalidOption, raw)
			}
			identifier = s
		}
		cfg.Delete(OptionIdentifier)
	}

	t := &Template{
		identifier: identifier,
		config:     cfg,
		variables:  filter.NewVariables(),
		opts:       o,
	}
	if _, err := t.resolve(identifier, cfg); err != nil {
		return nil, err
	}
	return t, nil
}

// resolver builds the document resolver for cfg.
func (t *Template) resolver(cfg *config.Config) document.Resolver {
	return document.Resolver{
		Source:    t.opts.source,
		Directory: cfg.String(OptionDirectory, ""),
		Extension: cfg.String(OptionExtension, ""),
	}
}

// resolve returns the document name cfg points at.
func (t *Template) resolve(identifier string, cfg *config.Config) (string, error) {
	p := cfg.String(OptionPath, "")
	name, err := t.resolver(cfg).Resolve(p)
	if err != nil {
		return "", &DocumentNotFoundError{Identifier: identifier, Path: name, Err: err}
	}
	return name, nil
}

// Identifier returns the template identifier.
func (t *Template) Identifier() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.identifier
}

// SetIdentifier changes the template identifier.
func (t *Template) SetIdentifier(identifier string) *Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.identifier = identifier
	return t
}

// Path returns the configured document path.
func (t *Template) Path() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config.String(OptionPath, "")
}

// SetPath points the template at another document. The template is left
// unchanged and a *DocumentNotFoundError returned if p does not resolve.
func (t *Template) SetPath(p string) error {
	return t.SetOption(OptionPath, p)
}

// Document returns the name of the document the template renders.
// It fails with a *DocumentNotFoundError if the document has gone away.
func (t *Template) Document() (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resolve(t.identifier, t.config)
}

// Children returns the child templates bound in the template's scope,
// in variable order.
func (t *Template) Children() []*Template {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*Template
	t.variables.Range(func(_ string, value any) bool {
		if child, ok := value.(*Template); ok {
			out = append(out, child)
		}
		return true
	})
	return out
}

// Config returns a copy of the template's configuration.
func (t *Template) Config() *config.Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config.Clone()
}

// Get returns the configuration value for key. Keys are case-insensitive.
func (t *Template) Get(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if strings.EqualFold(key, OptionIdentifier) {
		return t.identifier, true
	}
	return t.config.Get(key)
}

// SetOption sets the configuration value for key. Keys are case-insensitive.
//
// Changing path, directory or extension re-resolves the document; if it
// no longer resolves the option is not changed and a
// *DocumentNotFoundError is returned.
func (t *Template) SetOption(key string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	folded := strings.ToLower(key)
	switch folded {
	case OptionIdentifier:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: identifier must be a string, got %T", ErrInvalidOption, value)
		}
		t.identifier = s
		return nil

	case OptionPath, OptionDirectory, OptionExtension:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidOption, folded, value)
		}
		next := t.config.Clone().Set(folded, value)
		if _, err := t.resolve(t.identifier, next); err != nil {
			return err
		}
		t.config = next
		return nil
	}

	t.config.Set(folded, value)
	return nil
}

// Accessor dispatches a get<Key> or set<Key> call by name, so callers
// driven by strings (manifests, the CLI, scripting layers) can reach any
// option. get<Key> takes no arguments and returns the value, or nil when
// unset. set<Key> takes one argument and returns the template.
//
// Any other name or argument count fails with a *BadMethodCallError.
func (t *Template) Accessor(name string, args ...any) (any, error) {
	if len(name) > 3 {
		prefix, key := strings.ToLower(name[:3]), name[3:]
		switch {
		case prefix == "get" && len(args) == 0:
			v, _ := t.Get(key)
			return v, nil
		case prefix == "set" && len(args) == 1:
			if err := t.SetOption(key, args[0]); err != nil {
				return nil, err
			}
			return t, nil
		}
	}
	return nil, &BadMethodCallError{Method: name}
}

// Set binds a variable. Binding a *Template makes it a child rendered
// into this variable.
func (t *Template) Set(name string, value any) *Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.variables.Set(name, value)
	return t
}

// SetArray binds several variables. With replace the existing variables
// are discarded first; otherwise each entry is bound as by Set.
// Map keys are bound in sorted order; use SetVariables to control order.
func (t *Template) SetArray(vars map[string]any, replace bool) *Template {
	return t.SetVariables(filter.VariablesFrom(vars), replace)
}

// SetVariables is SetArray for an ordered scope.
func (t *Template) SetVariables(vars *filter.Variables, replace bool) *Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	if replace {
		t.variables = vars.Clone()
	} else {
		t.variables.Merge(vars)
	}
	return t
}

// Variable returns the value bound to name.
func (t *Template) Variable(name string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.variables.Get(name)
}

// Variables returns a copy of the template's scope.
func (t *Template) Variables() *filter.Variables {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.variables.Clone()
}

// Unset removes a variable and reports whether it was bound.
func (t *Template) Unset(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.variables.Delete(name)
}

// Dispatcher returns the dispatcher filters attach to.
func (t *Template) Dispatcher() *filter.Dispatcher {
	return t.opts.dispatcher
}

// Use attaches named filters (see filter.Names) to the template's dispatcher.
func (t *Template) Use(names ...string) error {
	return filter.Attach(t.opts.dispatcher, names...)
}

// Extend builds a child template and binds it under identifier.
//
// The child's configuration is this template's configuration overlaid with
// overrides, and it shares this template's options (dispatcher, executor,
// source, telemetry). On failure this template is unchanged and the
// error is an *ExtendError.
//
// Example:
//
//	row, err := page.Extend("row", config.New(map[string]any{"path": "row.html"}))
//	if err != nil {
//	    return err
//	}
//	row.Set("cell", 42)
func (t *Template) Extend(identifier string, overrides *config.Config) (*Template, error) {
	t.mu.RLock()
	parent := t.identifier
	cfg := t.config.Merge(overrides)
	opts := t.opts
	t.mu.RUnlock()

	if identifier == "" {
		return nil, &ExtendError{Parent: parent, Err: fmt.Errorf("%w: child identifier is empty", ErrInvalidOption)}
	}
	cfg.Delete(OptionIdentifier)

	child, err := opts.factory(identifier, cfg, inherit(opts))
	if err != nil {
		return nil, &ExtendError{Parent: parent, Child: identifier, Err: err}
	}
	if child == nil {
		return nil, &ExtendError{Parent: parent, Child: identifier, Err: fmt.Errorf("factory returned no template")}
	}
	t.Set(identifier, child)
	return child, nil
}

// DeepCopy returns t itself. Per-render copies of variables share child
// templates instead of cloning them.
func (t *Template) DeepCopy() any {
	return t
}

// String returns the template identifier and path.
func (t *Template) String() string {
	return fmt.Sprintf("Template(%s, %s)", t.Identifier(), t.Path())
}

var _ filter.Child = (*Template)(nil)
