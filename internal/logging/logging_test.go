package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false).WithFields(map[string]any{"user_id": 7, "component": "auth"})

	logger.Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0]["msg"])
	assert.Equal(t, float64(7), lines[0]["user_id"])
	assert.Equal(t, "auth", lines[0]["component"])
}

func TestLogger_ProductionSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	var fromCtx *Logger
	h := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetLoggerFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotNil(t, fromCtx)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "request completed", lines[0]["msg"])
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, float64(http.StatusTeapot), lines[0]["status"])
	assert.Equal(t, "/health", lines[0]["path"])
	assert.NotEmpty(t, lines[0]["request_id"])
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	assert.NotNil(t, GetLoggerFromContext(context.Background()))

	nop := NewNop()
	assert.Same(t, nop, GetLoggerFromContext(WithLogger(context.Background(), nop)))
}
