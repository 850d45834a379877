package filter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper() *VariableFilter {
	return NewVariableFilter("upper", StringLeaves(strings.ToUpper))
}

func TestVariableFilter_WalksNestedValues(t *testing.T) {
	nested := map[string]any{
		"title": "hello",
		"list":  []any{"a", 1, map[string]any{"deep": "b"}},
	}
	vars := NewVariables().
		Set("name", "world").
		Set("count", 3).
		Set("nested", nested).
		Set("tags", []string{"x", "y"}).
		Set("attrs", map[string]string{"class": "big"}).
		Set("scope", NewVariables().Set("inner", "c"))

	c := upper().Process(newTestContext(vars))

	want := map[string]any{
		"name":  "WORLD",
		"count": 3,
		"nested": map[string]any{
			"title": "HELLO",
			"list":  []any{"A", 1, map[string]any{"deep": "B"}},
		},
		"tags":  []string{"X", "Y"},
		"attrs": map[string]string{"class": "BIG"},
		"scope": map[string]any{"inner": "C"},
	}
	if diff := cmp.Diff(want, c.Variables.Map()); diff != "" {
		t.Errorf("filtered variables mismatch (-want +got):\n%s", diff)
	}

	// Order survives filtering.
	assert.Equal(t, []string{"name", "count", "nested", "tags", "attrs", "scope"}, c.Variables.Keys())

	// Input containers are not modified.
	assert.Equal(t, "hello", nested["title"])
	orig, _ := vars.Get("name")
	assert.Equal(t, "world", orig)
}

func TestVariableFilter_ChildIsLeaf(t *testing.T) {
	child := &stubChild{id: "row", text: "text"}
	calls := 0
	f := NewVariableFilter("count", func(_ *Context, _ string, value any) any {
		calls++
		return value
	})

	c := f.Process(newTestContext(NewVariables().Set("row", child).Set("s", "x")))

	got, _ := c.Variables.Get("row")
	assert.Same(t, child, got)
	assert.Equal(t, 1, calls, "child templates never reach the leaf transform")
}

func TestVariableFilter_LeafKeys(t *testing.T) {
	var keys []string
	f := NewVariableFilter("keys", func(_ *Context, key string, value any) any {
		keys = append(keys, key)
		return value
	})

	f.Process(newTestContext(NewVariables().
		Set("a", "1").
		Set("list", []any{"x", "y"}).
		Set("m", map[string]any{"inner": "z"})))

	assert.Equal(t, []string{"a", "list", "list", "inner"}, keys)
}

func TestVariableFilter_Apply(t *testing.T) {
	out := upper().Apply(newTestContext(nil), NewVariables().Set("a", "b"))
	got, _ := out.Get("a")
	assert.Equal(t, "B", got)
}

func TestVariableFilter_NilSafe(t *testing.T) {
	assert.Nil(t, upper().Process(nil))
	assert.Nil(t, NewBufferFilter("noop", nil).Process(nil))
}

func TestBufferFilter(t *testing.T) {
	f := NewBufferFilter("wrap", func(c *Context, buffer string) string {
		return "[" + c.Identifier + ":" + buffer + "]"
	})
	assert.Equal(t, "wrap", f.Name())

	c := newTestContext(nil)
	c.Buffer = "body"
	out := f.Process(c)
	require.Same(t, c, out)
	assert.Equal(t, "[Example:body]", out.Buffer)
}

func TestBufferFilter_NilTransform(t *testing.T) {
	c := newTestContext(nil)
	c.Buffer = "same"
	assert.Equal(t, "same", NewBufferFilter("noop", nil).Process(c).Buffer)
}

func TestStringLeaves_NonStrings(t *testing.T) {
	fn := StringLeaves(strings.ToUpper)
	assert.Equal(t, 5, fn(nil, "", 5))
	assert.Equal(t, true, fn(nil, "", true))
	assert.Nil(t, fn(nil, "", nil))
	assert.Equal(t, "A", fn(nil, "", "a"))
}
