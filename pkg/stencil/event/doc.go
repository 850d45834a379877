// Package event provides the priority-ordered dispatcher that connects
// filters to the stages of a render.
//
// A Dispatcher maps an event name to an ordered list of listeners. Dispatch
// passes a value through each listener in turn, replacing it with whatever
// the listener returns, so later listeners observe earlier changes:
//
//	d := event.NewDispatcher[*filter.Context]()
//	d.AddListener(filter.NewEscape(), event.VariablesPreProcess, 1)
//	d.Listen(filter.NewDebugWrap(), event.TemplatePostProcess)
//
//	ctx, ran := d.Dispatch(event.TemplatePostProcess, ctx)
//
// Ordering is numeric ascending by priority, then registration order.
// Custom event names are allowed; the engine only dispatches the three
// stage constants.
package event
