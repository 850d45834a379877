package event_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/stencil/pkg/stencil/event"
)

// appender records its tag into the threaded slice.
type appender struct {
	tag string
}

func (a *appender) Process(trail []string) []string {
	return append(trail, a.tag)
}

func TestDispatch_NoListeners(t *testing.T) {
	d := event.NewDispatcher[[]string]()

	in := []string{"untouched"}
	out, ran := d.Dispatch("E", in)
	if ran {
		t.Fatal("expected Dispatch to report false without listeners")
	}
	if len(out) != 1 || out[0] != "untouched" {
		t.Errorf("expected input back unchanged, got %v", out)
	}
}

func TestDispatch_PriorityOrder(t *testing.T) {
	d := event.NewDispatcher[[]string]()

	// Registered out of numeric order on purpose.
	d.AddListener(&appender{"p5-a"}, "E", 5)
	d.AddListener(&appender{"p1"}, "E", 1)
	d.AddListener(&appender{"p5-b"}, "E", 5)
	d.AddListener(&appender{"p-3"}, "E", -3)
	d.AddListener(&appender{"p10"}, "E", 10)

	out, ran := d.Dispatch("E", nil)
	if !ran {
		t.Fatal("expected Dispatch to report true")
	}

	want := "p-3,p1,p5-a,p5-b,p10"
	if got := strings.Join(out, ","); got != want {
		t.Errorf("dispatch order = %s, want %s", got, want)
	}
}

func TestDispatch_ListenersSeePriorChanges(t *testing.T) {
	d := event.NewDispatcher[map[string]int]()

	d.AddListener(event.ListenerFunc[map[string]int](func(m map[string]int) map[string]int {
		m["n"] = 1
		return m
	}), "E", 1)

	var observed int
	d.AddListener(event.ListenerFunc[map[string]int](func(m map[string]int) map[string]int {
		observed = m["n"]
		m["n"]++
		return m
	}), "E", 5)

	out, _ := d.Dispatch("E", map[string]int{})
	if observed != 1 {
		t.Errorf("second listener observed %d, want 1", observed)
	}
	if out["n"] != 2 {
		t.Errorf("final value = %d, want 2", out["n"])
	}
}

func TestDispatch_ReplacesContext(t *testing.T) {
	d := event.NewDispatcher[string]()
	d.Listen(event.ListenerFunc[string](func(s string) string { return strings.ToUpper(s) }), "E")
	d.Listen(event.ListenerFunc[string](func(s string) string { return "<" + s + ">" }), "E")

	out, _ := d.Dispatch("E", "x")
	if out != "<X>" {
		t.Errorf("got %q, want %q", out, "<X>")
	}
}

func TestAddListener_Duplicates(t *testing.T) {
	d := event.NewDispatcher[[]string]()
	l := &appender{"dup"}

	d.Listen(l, "E")
	d.Listen(l, "E")

	if n := d.Len("E"); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	out, _ := d.Dispatch("E", nil)
	if len(out) != 2 {
		t.Errorf("expected listener to run twice, got %v", out)
	}

	if !d.RemoveListener(l, "E") {
		t.Fatal("expected first removal to succeed")
	}
	if n := d.Len("E"); n != 1 {
		t.Errorf("expected removal of exactly one entry, %d left", n)
	}
}

func TestRemoveListener(t *testing.T) {
	d := event.NewDispatcher[[]string]()
	a := &appender{"a"}
	b := &appender{"b"}

	d.AddListener(a, "E", 1)
	d.AddListener(b, "E", 2)

	if d.RemoveListener(a, "other") {
		t.Error("removal from an unrelated event should fail")
	}
	if !d.RemoveListener(a, "E") {
		t.Fatal("expected removal to succeed")
	}
	if d.RemoveListener(a, "E") {
		t.Error("second removal should fail")
	}

	out, _ := d.Dispatch("E", nil)
	if strings.Join(out, ",") != "b" {
		t.Errorf("got %v, want [b]", out)
	}

	if !d.RemoveListener(b, "E") {
		t.Fatal("expected removal to succeed")
	}
	if d.HasListeners("E") {
		t.Error("expected no listeners left")
	}
	if len(d.Events()) != 0 {
		t.Errorf("expected no events, got %v", d.Events())
	}
}

func TestRemoveListener_FuncNotRemovable(t *testing.T) {
	d := event.NewDispatcher[string]()
	f := event.ListenerFunc[string](func(s string) string { return s })
	d.Listen(f, "E")

	if d.RemoveListener(f, "E") {
		t.Error("function listeners cannot be matched for removal")
	}
	if !d.HasListeners("E") {
		t.Error("listener should still be registered")
	}
}

// wrapper is a comparable type whose field may hold an uncomparable value.
type wrapper struct {
	inner event.Listener[string]
}

func (w wrapper) Process(s string) string {
	return w.inner.Process(s)
}

type suffix struct {
	s string
}

func (x suffix) Process(s string) string {
	return s + x.s
}

func TestRemoveListener_WrappedFunc(t *testing.T) {
	d := event.NewDispatcher[string]()
	f := event.ListenerFunc[string](func(s string) string { return s })
	d.Listen(wrapper{inner: f}, "E")
	d.Listen(wrapper{inner: suffix{"!"}}, "E")

	if d.RemoveListener(wrapper{inner: f}, "E") {
		t.Error("a listener holding a func cannot be matched for removal")
	}
	if !d.RemoveListener(wrapper{inner: suffix{"!"}}, "E") {
		t.Error("expected the comparable wrapper to be removed past the func entry")
	}
	if got := d.Len("E"); got != 1 {
		t.Errorf("expected 1 listener left, got %d", got)
	}
}

func TestHasListeners(t *testing.T) {
	d := event.NewDispatcher[string]()
	if d.HasListeners(event.TemplatePostProcess) {
		t.Fatal("fresh dispatcher should have no listeners")
	}
	d.AddListener(&stringer{}, event.TemplatePostProcess, 100)
	if !d.HasListeners(event.TemplatePostProcess) {
		t.Error("expected listeners after AddListener")
	}
	if d.HasListeners(event.TemplatePreProcess) {
		t.Error("listeners must be scoped to their event")
	}
}

func TestAddListener_Nil(t *testing.T) {
	d := event.NewDispatcher[string]()
	d.Listen(nil, "E")
	if d.HasListeners("E") {
		t.Error("nil listener should be ignored")
	}
}

func TestDispatch_SnapshotDuringDispatch(t *testing.T) {
	d := event.NewDispatcher[[]string]()
	late := &appender{"late"}

	d.Listen(event.ListenerFunc[[]string](func(trail []string) []string {
		d.Listen(late, "E")
		return append(trail, "first")
	}), "E")

	out, _ := d.Dispatch("E", nil)
	if strings.Join(out, ",") != "first" {
		t.Errorf("listener added mid-dispatch should not run, got %v", out)
	}
	if d.Len("E") != 2 {
		t.Errorf("expected late listener to be registered, got %d", d.Len("E"))
	}
}

func TestDispatcher_Concurrent(t *testing.T) {
	d := event.NewDispatcher[int]()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Listen(event.ListenerFunc[int](func(n int) int { return n + 1 }), "E")
		}()
		go func() {
			defer wg.Done()
			d.Dispatch("E", 0)
		}()
	}
	wg.Wait()

	if n, _ := d.Dispatch("E", 0); n != 20 {
		t.Errorf("expected 20 increments, got %d", n)
	}
}

type stringer struct{}

func (*stringer) Process(s string) string { return s }
