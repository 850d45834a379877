package filter

import (
	"context"

	"github.com/randalmurphal/stencil/pkg/stencil/config"
	"github.com/randalmurphal/stencil/pkg/stencil/event"
)

// Context is the record threaded through one render.
//
// Listeners receive the Context produced by the previous listener and
// return the Context the next one should see. Variables and Buffer are
// meant to be rewritten; Configuration is a copy of the template's
// options, so changes to it never reach the template.
type Context struct {
	ctx context.Context

	Identifier    string
	Configuration *config.Config
	Variables     *Variables
	Buffer        string
}

// NewContext builds a Context for a render of identifier.
func NewContext(ctx context.Context, identifier string, cfg *config.Config, vars *Variables) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = config.Empty()
	}
	if vars == nil {
		vars = NewVariables()
	}
	return &Context{
		ctx:           ctx,
		Identifier:    identifier,
		Configuration: cfg,
		Variables:     vars,
	}
}

// Context returns the render's context.Context.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// WithContext returns a shallow copy of c carrying ctx.
func (c *Context) WithContext(ctx context.Context) *Context {
	out := *c
	out.ctx = ctx
	return &out
}

// Dispatcher is the dispatcher type the rendering engine drives.
type Dispatcher = event.Dispatcher[*Context]

// Listener is a filter attached to a Dispatcher.
type Listener = event.Listener[*Context]

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return event.NewDispatcher[*Context]()
}
