package stencil

import (
	"log/slog"

	"github.com/randalmurphal/stencil/pkg/stencil/config"
	"github.com/randalmurphal/stencil/pkg/stencil/document"
	"github.com/randalmurphal/stencil/pkg/stencil/filter"
	"github.com/randalmurphal/stencil/pkg/stencil/observability"
)

// DefaultMaxDepth bounds how deep a child render tree may nest.
const DefaultMaxDepth = 64

// Factory builds templates. Extend uses the parent's Factory to build
// children, so a custom Factory controls how every child is constructed.
type Factory func(identifier string, cfg *config.Config, opts ...Option) (*Template, error)

// options holds the collaborators and limits a template renders with.
type options struct {
	dispatcher     *filter.Dispatcher
	executor       document.Executor
	source         document.Source
	factory        Factory
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	maxDepth       int
	deepCopy       bool
}

// defaultOptions returns the default template options.
func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		maxDepth: DefaultMaxDepth,
		deepCopy: true,
	}
}

// complete fills collaborators that depend on other options.
func (o *options) complete() {
	if o.dispatcher == nil {
		o.dispatcher = filter.NewDispatcher()
	}
	if o.source == nil {
		o.source = document.OSSource{}
	}
	if o.executor == nil {
		o.executor = document.NewPongo2Executor(o.source)
	}
	if o.factory == nil {
		o.factory = New
	}
}

// Option configures a Template.
type Option func(*options)

// WithDispatcher sets the event dispatcher listeners are registered on.
// Templates sharing a dispatcher share their filters.
func WithDispatcher(d *filter.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithExecutor sets the document executor.
// Default: a pongo2 executor reading from the template's Source.
func WithExecutor(e document.Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}

// WithSource sets where documents are resolved and read from.
// Default: the local filesystem.
//
// Example:
//
//	//go:embed views
//	var views embed.FS
//
//	tpl, err := stencil.New("page", cfg, stencil.WithSource(document.NewFSSource(views)))
func WithSource(s document.Source) Option {
	return func(o *options) {
		o.source = s
	}
}

// WithFactory sets the Factory Extend builds children with.
func WithFactory(f Factory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithLogger sets the logger for render events.
// Default: slog.Default()
//
// Pass nil to disable render logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for renders.
//
// Metrics recorded:
//   - stencil.render.count: renders, top-level and child
//   - stencil.render.latency_ms: render latency histogram
//   - stencil.render.errors: renders that returned an error
//   - stencil.document.soft_failures: contained execution failures
//   - stencil.render.output_bytes: rendered output size
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.metrics = observability.NewMetricsRecorder()
		} else {
			o.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry tracing for renders.
//
// Spans created:
//   - stencil.render: the top-level render
//   - stencil.render.child: each child render, nested under its parent
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracingEnabled = enabled
		if enabled {
			o.spans = observability.NewSpanManager()
		} else {
			o.spans = observability.NoopSpanManager{}
		}
	}
}

// WithMaxDepth sets how deep child templates may nest.
// Default: 64
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithDeepCopy controls how variables are copied for each render.
// When true (the default) nested maps and slices are copied, so listeners
// may modify them freely. When false only the top-level scope is copied
// and nested values are shared with the template.
func WithDeepCopy(enabled bool) Option {
	return func(o *options) {
		o.deepCopy = enabled
	}
}

// inherit copies every option of a parent template.
func inherit(parent options) Option {
	return func(o *options) {
		*o = parent
	}
}
