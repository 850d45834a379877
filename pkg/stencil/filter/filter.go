package filter

// BufferFunc rewrites a whole rendered buffer.
type BufferFunc func(c *Context, buffer string) string

// BufferFilter is a listener that rewrites Context.Buffer as a whole.
// Attach buffer filters to event.TemplatePostProcess.
type BufferFilter struct {
	name      string
	transform BufferFunc
}

// NewBufferFilter returns a BufferFilter applying fn.
func NewBufferFilter(name string, fn BufferFunc) *BufferFilter {
	return &BufferFilter{name: name, transform: fn}
}

// Name returns the filter name.
func (f *BufferFilter) Name() string {
	return f.name
}

// Process implements event.Listener.
func (f *BufferFilter) Process(c *Context) *Context {
	if c == nil || f.transform == nil {
		return c
	}
	c.Buffer = f.transform(c, c.Buffer)
	return c
}

// LeafFunc transforms one leaf value. key is the map key or slice index
// position of the leaf; slice elements receive their parent's key.
type LeafFunc func(c *Context, key string, value any) any

// VariableFilter is a listener that walks Context.Variables depth-first and
// applies a transform to every leaf. Maps, slices and nested Variables are
// descended into and rebuilt, so the caller's containers are never
// modified. Child values are left as they are.
// Attach variable filters to event.VariablesPreProcess.
type VariableFilter struct {
	name string
	each LeafFunc
}

// NewVariableFilter returns a VariableFilter applying fn to every leaf.
func NewVariableFilter(name string, fn LeafFunc) *VariableFilter {
	return &VariableFilter{name: name, each: fn}
}

// Name returns the filter name.
func (f *VariableFilter) Name() string {
	return f.name
}

// Process implements event.Listener.
func (f *VariableFilter) Process(c *Context) *Context {
	if c == nil || f.each == nil {
		return c
	}
	c.Variables = f.walkVariables(c, c.Variables)
	return c
}

// Apply runs the filter over vars outside a dispatch and returns the result.
func (f *VariableFilter) Apply(c *Context, vars *Variables) *Variables {
	if f.each == nil {
		return vars
	}
	return f.walkVariables(c, vars)
}

func (f *VariableFilter) walkVariables(c *Context, vars *Variables) *Variables {
	out := NewVariables()
	vars.Range(func(name string, value any) bool {
		out.Set(name, f.walk(c, name, value))
		return true
	})
	return out
}

func (f *VariableFilter) walk(c *Context, key string, value any) any {
	switch val := value.(type) {
	case Child:
		return val
	case *Variables:
		return f.walkVariables(c, val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = f.walk(c, k, item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, item := range val {
			if s, ok := f.each(c, k, item).(string); ok {
				out[k] = s
			} else {
				out[k] = item
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = f.walk(c, key, item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			if s, ok := f.each(c, key, item).(string); ok {
				out[i] = s
			} else {
				out[i] = item
			}
		}
		return out
	default:
		return f.each(c, key, value)
	}
}

// StringLeaves adapts a string transform into a LeafFunc that leaves
// non-string values untouched.
func StringLeaves(fn func(string) string) LeafFunc {
	return func(_ *Context, _ string, value any) any {
		if s, ok := value.(string); ok {
			return fn(s)
		}
		return value
	}
}
