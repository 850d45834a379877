// Package filter defines the render context and the filters that transform it.
//
// A render threads a *Context through the dispatcher at three stages. Two
// filter shapes consume it:
//
//   - BufferFilter rewrites Context.Buffer after the document has executed.
//   - VariableFilter walks Context.Variables depth-first before children
//     render and rewrites every leaf, leaving child templates untouched.
//
// Built-in filters, also reachable by name through Attach:
//
//	escape    HTML-escape string variables
//	sanitize  strip unsafe markup from string variables (bluemonday UGC policy)
//	strip     remove all markup from string variables
//	expand    substitute ${name} references between variables
//	debug     wrap output in start/end comments naming the template
//	minify    collapse whitespace outside <pre> and <textarea>
//
// Example:
//
//	d := filter.NewDispatcher()
//	if err := filter.Attach(d, "escape", "debug"); err != nil {
//	    return err
//	}
package filter
