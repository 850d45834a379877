package event

import (
	"reflect"
	"sort"
	"sync"
)

// Pipeline stages dispatched by the rendering engine.
const (
	// TemplatePreProcess fires once the filter context is built, before any variable work.
	TemplatePreProcess = "Template_PreProcess"

	// VariablesPreProcess fires before child templates are rendered; variable filters attach here.
	VariablesPreProcess = "Variables_PreProcess"

	// TemplatePostProcess fires after document execution with the raw buffer; buffer filters attach here.
	TemplatePostProcess = "Template_PostProcess"
)

// DefaultPriority is the priority used when a listener is added without one.
const DefaultPriority = 5

// Listener transforms the value threaded through a dispatch.
// The returned value replaces the input for the next listener.
type Listener[C any] interface {
	Process(C) C
}

// ListenerFunc adapts a function to the Listener interface.
// Function values are not comparable, so a ListenerFunc cannot be removed
// with RemoveListener; register a pointer type when removal is needed.
type ListenerFunc[C any] func(C) C

// Process calls f(c).
func (f ListenerFunc[C]) Process(c C) C {
	return f(c)
}

// listenerEntry stores a listener with its ordering keys.
type listenerEntry[C any] struct {
	listener Listener[C]
	priority int
	seq      uint64
}

// Dispatcher is a priority-ordered publish/subscribe hub.
//
// Listeners for an event run by ascending priority. Listeners sharing a
// priority run in registration order. The dispatcher holds no per-dispatch
// state, so one Dispatcher can serve any number of templates and renders.
type Dispatcher[C any] struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry[C] // event -> entries sorted by (priority, seq)
	seq       uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher[C any]() *Dispatcher[C] {
	return &Dispatcher[C]{
		listeners: make(map[string][]listenerEntry[C]),
	}
}

// AddListener registers listener for event at priority.
// Registering the same listener twice creates two entries.
func (d *Dispatcher[C]) AddListener(listener Listener[C], event string, priority int) {
	if listener == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	entry := listenerEntry[C]{listener: listener, priority: priority, seq: d.seq}

	entries := d.listeners[event]
	// Insert after every entry with priority <= p so equal priorities keep registration order.
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].priority > priority
	})
	entries = append(entries, listenerEntry[C]{})
	copy(entries[i+1:], entries[i:])
	entries[i] = entry
	d.listeners[event] = entries
}

// Listen registers listener for event at DefaultPriority.
func (d *Dispatcher[C]) Listen(listener Listener[C], event string) {
	d.AddListener(listener, event, DefaultPriority)
}

// RemoveListener removes the first entry for listener under event, scanning
// in dispatch order. It reports whether an entry was removed.
func (d *Dispatcher[C]) RemoveListener(listener Listener[C], event string) bool {
	if listener == nil || !reflect.ValueOf(listener).Comparable() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[event]
	for i, entry := range entries {
		if !reflect.ValueOf(entry.listener).Comparable() || entry.listener != listener {
			continue
		}
		entries = append(entries[:i:i], entries[i+1:]...)
		if len(entries) == 0 {
			delete(d.listeners, event)
		} else {
			d.listeners[event] = entries
		}
		return true
	}
	return false
}

// HasListeners reports whether event has at least one listener.
func (d *Dispatcher[C]) HasListeners(event string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[event]) > 0
}

// Len returns the number of listeners registered for event.
func (d *Dispatcher[C]) Len(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[event])
}

// Events returns the names of events with listeners, sorted.
func (d *Dispatcher[C]) Events() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.listeners))
	for name := range d.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch threads c through every listener registered for event and
// returns the final value. Each listener receives the previous listener's
// result. If event has no listeners, Dispatch returns c and false.
//
// Listeners are snapshotted before the first call, so a listener may
// add or remove listeners without affecting the dispatch in progress.
func (d *Dispatcher[C]) Dispatch(event string, c C) (C, bool) {
	d.mu.RLock()
	entries := d.listeners[event]
	if len(entries) == 0 {
		d.mu.RUnlock()
		return c, false
	}
	snapshot := make([]Listener[C], len(entries))
	for i, entry := range entries {
		snapshot[i] = entry.listener
	}
	d.mu.RUnlock()

	for _, listener := range snapshot {
		c = listener.Process(c)
	}
	return c, true
}
