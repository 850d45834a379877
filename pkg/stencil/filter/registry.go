package filter

import (
	"fmt"

	"github.com/randalmurphal/stencil/pkg/stencil/event"
	"github.com/randalmurphal/stencil/pkg/stencil/registry"
)

// Spec describes how a named filter is built and where it attaches.
type Spec struct {
	// Event is the pipeline stage the filter listens on.
	Event string
	// Priority orders the filter among the stage's listeners.
	Priority int
	// New builds a fresh listener.
	New func() Listener
}

var named = registry.New[string, Spec]()

func init() {
	named.MustRegister("expand", Spec{Event: event.VariablesPreProcess, Priority: 1, New: func() Listener { return NewExpand() }})
	named.MustRegister("sanitize", Spec{Event: event.VariablesPreProcess, Priority: 3, New: func() Listener { return NewSanitize(nil) }})
	named.MustRegister("strip", Spec{Event: event.VariablesPreProcess, Priority: 3, New: func() Listener { return NewStrip() }})
	named.MustRegister("escape", Spec{Event: event.VariablesPreProcess, Priority: event.DefaultPriority, New: func() Listener { return NewEscape() }})
	named.MustRegister("debug", Spec{Event: event.TemplatePostProcess, Priority: event.DefaultPriority, New: func() Listener { return NewDebugWrap() }})
	named.MustRegister("minify", Spec{Event: event.TemplatePostProcess, Priority: 10, New: func() Listener { return NewMinify() }})
}

// Register adds a named filter. Names are unique.
func Register(name string, spec Spec) error {
	if spec.New == nil {
		return fmt.Errorf("filter %q: constructor is required", name)
	}
	if spec.Event == "" {
		return fmt.Errorf("filter %q: event is required", name)
	}
	return named.Register(name, spec)
}

// Lookup returns the Spec registered under name.
func Lookup(name string) (Spec, error) {
	spec, err := named.Lookup(name)
	if err != nil {
		return Spec{}, fmt.Errorf("filter %q: %w", name, err)
	}
	return spec, nil
}

// Names returns the registered filter names, sorted.
func Names() []string {
	return named.Keys()
}

// Attach builds each named filter and adds it to d at its default event
// and priority. Nothing is attached if any name is unknown.
func Attach(d *Dispatcher, names ...string) error {
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		spec, err := Lookup(name)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}
	for _, spec := range specs {
		d.AddListener(spec.New(), spec.Event, spec.Priority)
	}
	return nil
}
