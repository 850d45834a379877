// Package stencil renders template documents against variable scopes and
// composes templates into trees.
//
// A Template names a document (through its path, directory and extension
// options) and holds variables. Variables may be other Templates: they are
// rendered first and their output is bound in their place, so a page can
// be assembled from header, row and footer templates.
//
// # Rendering pipeline
//
// Each render publishes three events on the template's dispatcher:
//
//   - Template_PreProcess, before anything else
//   - Variables_PreProcess, where variable filters such as escape run
//   - Template_PostProcess, after the document executed, where buffer
//     filters such as minify and debug run
//
// Listeners run in ascending priority order and each receives the
// filter.Context returned by the previous one.
//
// # Error handling
//
// Missing documents, listener panics, cancellation and excessive nesting
// fail the render. A document that fails to execute is contained: it is
// logged and counted, and the template renders as the empty string. Use
// Categorize to classify errors.
//
// # Quick start
//
//	page, err := stencil.New("page", config.New(map[string]any{
//	    "directory": "views",
//	    "path":      "page.html",
//	}))
//	if err != nil {
//	    return err
//	}
//	if err := page.Use("escape"); err != nil {
//	    return err
//	}
//	page.Set("title", "Home")
//	out, err := page.Render(ctx)
package stencil
