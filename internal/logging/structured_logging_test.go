package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogger(t *testing.T) {
	t.Run("writes JSON lines", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		logger.Info("layer built",
			slog.String("pickup_type", "0"),
			slog.Int("nodes_count", 42))

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"layer built"`)
		assert.Contains(t, output, `"pickup_type":"0"`)
		assert.Contains(t, output, `"nodes_count":42`)
		assert.Contains(t, output, `"time":`)
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warning message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warning message")
	})
}

func TestLogError(t *testing.T) {
	t.Run("includes error and attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogError(logger, "failed to join stop visits", errors.New("bad arrival time"),
			slog.String("component", "schedule"))

		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"msg":"failed to join stop visits"`)
		assert.Contains(t, output, `"error":"bad arrival time"`)
		assert.Contains(t, output, `"component":"schedule"`)
	})

	t.Run("nil error", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogError(logger, "something odd", nil)

		assert.Contains(t, buf.String(), `"msg":"something odd"`)
		assert.NotContains(t, buf.String(), `"error"`)
	})

	t.Run("nil logger", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogError(nil, "ignored", assert.AnError)
		})
	})
}

func TestLogOperation(t *testing.T) {
	t.Run("logs counts", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogOperation(logger, "feed_loaded",
			slog.String("source", "feed.zip"),
			slog.Int("stops_count", 150),
			slog.Duration("duration", 1500*time.Millisecond))

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"feed_loaded"`)
		assert.Contains(t, output, `"source":"feed.zip"`)
		assert.Contains(t, output, `"stops_count":150`)
		assert.Contains(t, output, `"duration":`)
	})

	t.Run("skips zero duration", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogOperation(logger, "layered_graphs_built", slog.Duration("duration", 0))

		assert.Contains(t, buf.String(), `"msg":"layered_graphs_built"`)
		assert.NotContains(t, buf.String(), `"duration"`)
	})
}

func TestLogHTTPRequest(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogHTTPRequest(logger, HTTPRequest{
			Method:   "GET",
			Path:     "/api/graphs/0/nodes",
			Status:   200,
			Bytes:    512,
			Duration: 1500 * time.Microsecond,
		}, slog.String("user_agent", "test-client"))

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"http_request"`)
		assert.Contains(t, output, `"method":"GET"`)
		assert.Contains(t, output, `"path":"/api/graphs/0/nodes"`)
		assert.Contains(t, output, `"status":200`)
		assert.Contains(t, output, `"bytes":512`)
		assert.Contains(t, output, `"duration_ms":1.5`)
		assert.Contains(t, output, `"component":"http_server"`)
		assert.Contains(t, output, `"user_agent":"test-client"`)
	})

	testCases := []struct {
		status int
		level  string
	}{
		{status: 404, level: `"level":"WARN"`},
		{status: 429, level: `"level":"WARN"`},
		{status: 500, level: `"level":"ERROR"`},
	}
	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var buf bytes.Buffer
			LogHTTPRequest(NewStructuredLogger(&buf, slog.LevelInfo), HTTPRequest{Method: "GET", Path: "/", Status: tc.status})
			assert.Contains(t, buf.String(), tc.level)
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Run("stores and retrieves logger from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		ctx := WithLogger(context.Background(), logger)

		retrievedLogger := FromContext(ctx)
		require.NotNil(t, retrievedLogger)
		retrievedLogger.Info("test from context")

		assert.Contains(t, buf.String(), "test from context")
	})

	t.Run("returns default logger when not in context", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck
		assert.Same(t, slog.Default(), FromContext(nil))
	})
}
