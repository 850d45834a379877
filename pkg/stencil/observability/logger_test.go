package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogger returns a debug-level JSON logger and a func decoding every record written so far.
func captureLogger(t *testing.T) (*slog.Logger, func() []map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	records := func() []map[string]any {
		var out []map[string]any
		for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			var m map[string]any
			require.NoError(t, json.Unmarshal(line, &m))
			out = append(out, m)
		}
		return out
	}
	return logger, records
}

func lastRecord(t *testing.T, records func() []map[string]any) map[string]any {
	t.Helper()
	all := records()
	require.NotEmpty(t, all)
	return all[len(all)-1]
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds render_id and root", func(t *testing.T) {
		logger, records := captureLogger(t)

		EnrichLogger(logger, "render-1", "page").Info("hello")

		rec := lastRecord(t, records)
		assert.Equal(t, "render-1", rec["render_id"])
		assert.Equal(t, "page", rec["root"])
		assert.Equal(t, "hello", rec["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "render-1", "page"))
	})
}

func TestLogRenderStart(t *testing.T) {
	logger, records := captureLogger(t)
	LogRenderStart(logger, "page", "/docs/page.html", 0)

	rec := lastRecord(t, records)
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "render starting", rec["msg"])
	assert.Equal(t, "page", rec["template"])
	assert.Equal(t, "/docs/page.html", rec["path"])
	assert.Equal(t, float64(0), rec["depth"])
}

func TestLogRenderComplete_LevelByDepth(t *testing.T) {
	logger, records := captureLogger(t)

	LogRenderComplete(logger, "page", 0, 1.5, 120)
	LogRenderComplete(logger, "row", 2, 0.5, 10)

	all := records()
	require.Len(t, all, 2)
	assert.Equal(t, "INFO", all[0]["level"])
	assert.Equal(t, float64(120), all[0]["size_bytes"])
	assert.Equal(t, "DEBUG", all[1]["level"])
	assert.Equal(t, "row", all[1]["template"])
}

func TestLogRenderError(t *testing.T) {
	logger, records := captureLogger(t)
	LogRenderError(logger, "page", 1, errors.New("boom"), 3)

	rec := lastRecord(t, records)
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "boom", rec["error"])
	assert.Equal(t, float64(1), rec["depth"])
}

func TestLogExecutionSoftFail(t *testing.T) {
	logger, records := captureLogger(t)
	LogExecutionSoftFail(logger, "row", "row.html", errors.New("parse error"))

	rec := lastRecord(t, records)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "row", rec["template"])
	assert.Equal(t, "row.html", rec["path"])
	assert.Equal(t, "parse error", rec["error"])
}

func TestLogChildHelpers(t *testing.T) {
	logger, records := captureLogger(t)

	LogChildRender(logger, "page", "table", "table")
	LogChildConsumed(logger, "page", "self", "page")
	LogStage(logger, "page", "Template_PostProcess", 2)

	all := records()
	require.Len(t, all, 3)
	assert.Equal(t, "rendering child", all[0]["msg"])
	assert.Equal(t, "self", all[1]["variable"])
	assert.Equal(t, "Template_PostProcess", all[2]["stage"])
	assert.Equal(t, float64(2), all[2]["listeners"])
}

func TestNilLoggerHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRenderStart(nil, "a", "b", 0)
		LogRenderComplete(nil, "a", 0, 0, 0)
		LogRenderError(nil, "a", 0, errors.New("x"), 0)
		LogExecutionSoftFail(nil, "a", "b", errors.New("x"))
		LogChildRender(nil, "a", "b", "c")
		LogChildConsumed(nil, "a", "b", "c")
		LogStage(nil, "a", "b", 0)
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), 5.0)
}
