// Package observability provides structured logging, metrics and tracing
// for template renders.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// EnrichLogger adds render context to a logger.
// Returns a new logger with render_id and root fields, where root is the
// identifier of the top-level template.
//
// Example:
//
//	enriched := EnrichLogger(logger, "3f2c...", "page")
//	enriched.Info("rendering") // includes render_id and root
func EnrichLogger(logger *slog.Logger, renderID, identifier string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("render_id", renderID),
		slog.String("root", identifier),
	)
}

// LogRenderStart logs the start of a template render.
func LogRenderStart(logger *slog.Logger, identifier, path string, depth int) {
	if logger == nil {
		return
	}
	logger.Debug("render starting",
		slog.String("template", identifier),
		slog.String("path", path),
		slog.Int("depth", depth),
	)
}

// LogRenderComplete logs a finished render. Top-level renders log at
// info, child renders at debug.
func LogRenderComplete(logger *slog.Logger, identifier string, depth int, durationMs float64, sizeBytes int) {
	if logger == nil {
		return
	}
	level := slog.LevelInfo
	if depth > 0 {
		level = slog.LevelDebug
	}
	logger.Log(context.Background(), level, "render completed",
		slog.String("template", identifier),
		slog.Int("depth", depth),
		slog.Float64("duration_ms", durationMs),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogRenderError logs a render that failed and returned an error.
func LogRenderError(logger *slog.Logger, identifier string, depth int, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("render failed",
		slog.String("template", identifier),
		slog.Int("depth", depth),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogExecutionSoftFail logs a document execution error that was contained.
// The template renders as an empty buffer and the render continues.
func LogExecutionSoftFail(logger *slog.Logger, identifier, path string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("document execution failed, rendering empty",
		slog.String("template", identifier),
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
}

// LogChildRender logs that a child template is about to render in place of a variable.
func LogChildRender(logger *slog.Logger, parent, key, child string) {
	if logger == nil {
		return
	}
	logger.Debug("rendering child",
		slog.String("template", parent),
		slog.String("variable", key),
		slog.String("child", child),
	)
}

// LogChildConsumed logs a child skipped because it is already rendering
// further up the tree.
func LogChildConsumed(logger *slog.Logger, parent, key, child string) {
	if logger == nil {
		return
	}
	logger.Debug("child already rendering, substituting empty",
		slog.String("template", parent),
		slog.String("variable", key),
		slog.String("child", child),
	)
}

// LogStage logs a pipeline stage dispatch.
func LogStage(logger *slog.Logger, identifier, stage string, listeners int) {
	if logger == nil {
		return
	}
	logger.Debug("stage dispatched",
		slog.String("template", identifier),
		slog.String("stage", stage),
		slog.Int("listeners", listeners),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
