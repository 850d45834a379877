package filter

import (
	"fmt"
	"strings"
)

// DebugWrapString wraps buffer in start and end comments naming identifier.
// An empty buffer becomes a single comment marking the template as empty.
func DebugWrapString(identifier, buffer string) string {
	id := strings.ReplaceAll(identifier, "--", "- -")
	if buffer == "" {
		return fmt.Sprintf("<!-- [Stencil]: Empty Stencil '%s' -->", id)
	}
	return fmt.Sprintf("<!-- [Stencil]: Start '%s' -->\n%s\n<!-- [Stencil]: End '%s' -->", id, buffer, id)
}

// NewDebugWrap returns the buffer filter that annotates output with
// template boundaries. It does nothing for templates whose "debug"
// option is false.
func NewDebugWrap() *BufferFilter {
	return NewBufferFilter("debug", func(c *Context, buffer string) string {
		if !c.Configuration.Bool("debug", true) {
			return buffer
		}
		return DebugWrapString(c.Identifier, buffer)
	})
}
