package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func TestNewContext_Defaults(t *testing.T) {
	c := NewContext(nil, "page", nil, nil)

	assert.Equal(t, "page", c.Identifier)
	assert.Equal(t, context.Background(), c.Context())
	require.NotNil(t, c.Configuration)
	assert.Equal(t, 0, c.Configuration.Len())
	require.NotNil(t, c.Variables)
	assert.Equal(t, 0, c.Variables.Len())
	assert.Empty(t, c.Buffer)
}

func TestContext_WithContext(t *testing.T) {
	c := newTestContext(VariablesFrom(map[string]any{"a": 1}))
	c.Buffer = "out"

	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	next := c.WithContext(ctx)

	assert.Equal(t, "v", next.Context().Value(ctxKey{}))
	assert.Nil(t, c.Context().Value(ctxKey{}))
	assert.Equal(t, "out", next.Buffer)
	assert.Same(t, c.Variables, next.Variables)
}

func TestNewDispatcher_DrivesContext(t *testing.T) {
	d := NewDispatcher()
	d.Listen(NewBufferFilter("a", func(_ *Context, s string) string { return s + "a" }), "ev")
	d.AddListener(NewBufferFilter("b", func(_ *Context, s string) string { return s + "b" }), "ev", 1)

	out, ok := d.Dispatch("ev", newTestContext(nil))
	require.True(t, ok)
	assert.Equal(t, "ba", out.Buffer)
}
