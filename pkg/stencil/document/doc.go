// Package document locates and executes template documents.
//
// A Source reads documents from the OS filesystem or an fs.FS. A Resolver
// turns a template's directory, path and extension options into a document
// name and checks that the document exists. An Executor renders a resolved
// document against a variable scope into an io.Writer.
//
// Two executors are provided:
//   - Pongo2Executor for Django-style documents ({{ name }}, {% for %}, {% include %})
//   - ExpandExecutor for plain documents with ${name} references
//
// Watcher reports document changes so callers can re-render on edit.
package document
