package filter

import (
	"context"
	"slices"

	"github.com/mohae/deepcopy"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Child is a variable value that renders itself.
// Variable filters treat a Child as an opaque leaf and never transform it.
type Child interface {
	Identifier() string
	Render(ctx context.Context) (string, error)
}

// Variables is an insertion-ordered variable scope.
// A Variables value is owned by one render at a time and is not safe for
// concurrent mutation.
type Variables struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewVariables returns an empty scope.
func NewVariables() *Variables {
	return &Variables{om: orderedmap.New[string, any]()}
}

// VariablesFrom builds a scope from a map, inserting keys in sorted order.
func VariablesFrom(m map[string]any) *Variables {
	v := NewVariables()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v.Set(k, m[k])
	}
	return v
}

func (v *Variables) init() {
	if v.om == nil {
		v.om = orderedmap.New[string, any]()
	}
}

// Set stores value under name. An existing name keeps its position.
func (v *Variables) Set(name string, value any) *Variables {
	v.init()
	v.om.Set(name, value)
	return v
}

// Get returns the value stored under name.
func (v *Variables) Get(name string) (any, bool) {
	if v == nil || v.om == nil {
		return nil, false
	}
	return v.om.Get(name)
}

// Lookup implements expand.Lookup.
func (v *Variables) Lookup(name string) (any, bool) {
	return v.Get(name)
}

// Has reports whether name is set.
func (v *Variables) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// Delete removes name and reports whether it was present.
func (v *Variables) Delete(name string) bool {
	if v == nil || v.om == nil {
		return false
	}
	_, ok := v.om.Delete(name)
	return ok
}

// Len returns the number of variables.
func (v *Variables) Len() int {
	if v == nil || v.om == nil {
		return 0
	}
	return v.om.Len()
}

// Keys returns variable names in insertion order.
func (v *Variables) Keys() []string {
	keys := make([]string, 0, v.Len())
	v.Range(func(name string, _ any) bool {
		keys = append(keys, name)
		return true
	})
	return keys
}

// Range calls fn for each variable in insertion order until fn returns false.
// fn must not add or delete variables.
func (v *Variables) Range(fn func(name string, value any) bool) {
	if v == nil || v.om == nil {
		return
	}
	for pair := v.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Merge sets every variable of other on v, in other's order.
func (v *Variables) Merge(other *Variables) *Variables {
	other.Range(func(name string, value any) bool {
		v.Set(name, value)
		return true
	})
	return v
}

// Clone returns a copy of the scope. Values are shared.
func (v *Variables) Clone() *Variables {
	out := NewVariables()
	return out.Merge(v)
}

// DeepClone returns a copy of the scope with nested maps and slices copied,
// so mutating the copy never reaches the original. Child values are kept
// by reference. Unexported struct fields inside copied values are not
// carried over.
func (v *Variables) DeepClone() *Variables {
	out := NewVariables()
	v.Range(func(name string, value any) bool {
		switch val := value.(type) {
		case *Variables:
			out.Set(name, val.DeepClone())
		case Child, nil:
			out.Set(name, value)
		default:
			out.Set(name, deepcopy.Copy(value))
		}
		return true
	})
	return out
}

// Without returns a copy of the scope with every Child value removed.
func (v *Variables) Without() *Variables {
	out := NewVariables()
	v.Range(func(name string, value any) bool {
		if _, isChild := value.(Child); !isChild {
			out.Set(name, value)
		}
		return true
	})
	return out
}

// Map returns the scope as a plain map. Nested Variables are converted too.
func (v *Variables) Map() map[string]any {
	out := make(map[string]any, v.Len())
	v.Range(func(name string, value any) bool {
		if nested, ok := value.(*Variables); ok {
			out[name] = nested.Map()
		} else {
			out[name] = value
		}
		return true
	})
	return out
}
