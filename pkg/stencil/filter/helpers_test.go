package filter

import (
	"context"

	"github.com/randalmurphal/stencil/pkg/stencil/config"
)

// stubChild is a Child that renders fixed text.
type stubChild struct {
	id   string
	text string
}

func (s *stubChild) Identifier() string { return s.id }

func (s *stubChild) Render(context.Context) (string, error) { return s.text, nil }

func newTestContext(vars *Variables) *Context {
	return NewContext(context.Background(), "Example", config.Empty(), vars)
}
