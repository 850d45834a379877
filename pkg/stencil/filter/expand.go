package filter

import (
	"github.com/randalmurphal/stencil/pkg/stencil/expand"
)

// scalarLookup resolves names against a scope, hiding child templates,
// which have no text until they are rendered.
type scalarLookup struct {
	vars *Variables
}

func (l scalarLookup) Lookup(name string) (any, bool) {
	v, ok := l.vars.Get(name)
	if !ok {
		return nil, false
	}
	if _, isChild := v.(Child); isChild {
		return nil, false
	}
	return v, true
}

// NewExpand returns a variable filter that substitutes ${name} and $name
// references inside string leaves with the top-level variables of the
// scope being filtered. References to unknown names are left as written.
func NewExpand() *VariableFilter {
	exp := expand.New(expand.WithMissingAction(expand.MissingKeep))
	return NewVariableFilter("expand", func(c *Context, _ string, value any) any {
		s, ok := value.(string)
		if !ok {
			return value
		}
		out, _ := exp.Expand(s, scalarLookup{vars: c.Variables})
		return out
	})
}
