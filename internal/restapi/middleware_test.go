package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/stopgraph/internal/logging"
)

func TestCompressionMiddleware(t *testing.T) {
	largeResponse := strings.Repeat(`{"from":1,"to":2}`, 1000)
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(largeResponse))
	})
	handler := NewCompressionMiddleware(DefaultCompressionConfig())(testHandler)

	t.Run("compresses response when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/graphs/0/edges", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))

		reader, err := gzip.NewReader(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		defer reader.Close() // nolint:errcheck

		decompressed, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, largeResponse, string(decompressed))
		assert.Less(t, recorder.Body.Len(), len(largeResponse))
	})

	t.Run("does not compress when gzip not accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/graphs/0/edges", nil)
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, largeResponse, recorder.Body.String())
	})
}

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("sets headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/graphs", nil)
		req.Header.Set("Origin", "https://example.com")
		recorder := httptest.NewRecorder()

		securityHeaders(next).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusTeapot, recorder.Code)
		assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
		assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no CORS headers without origin", func(t *testing.T) {
		recorder := httptest.NewRecorder()

		securityHeaders(next).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/graphs", nil))

		assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight", func(t *testing.T) {
		recorder := httptest.NewRecorder()

		securityHeaders(next).ServeHTTP(recorder, httptest.NewRequest(http.MethodOptions, "/api/graphs", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	request := func(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/graphs", nil)
		req.RemoteAddr = remoteAddr
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		return recorder
	}

	t.Run("limits each client separately", func(t *testing.T) {
		rl := NewRateLimitMiddleware(2)
		defer rl.Stop()
		handler := rl.Handler(next)

		assert.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1000").Code)
		assert.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1001").Code)

		limited := request(handler, "10.0.0.1:1002")
		assert.Equal(t, http.StatusTooManyRequests, limited.Code)
		assert.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, limited.Header().Get("Retry-After"))
		assert.Contains(t, limited.Body.String(), `"code":429`)

		assert.Equal(t, http.StatusOK, request(handler, "10.0.0.2:1000").Code)
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		rl := NewRateLimitMiddleware(0)
		defer rl.Stop()
		handler := rl.Handler(next)

		for i := 0; i < 50; i++ {
			require.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1000").Code)
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1)
		rl.Stop()
		assert.NotPanics(t, rl.Stop)
	})
}

func TestRequestLoggingMiddleware(t *testing.T) {
	t.Run("logs status and tags the request", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logging.FromContext(r.Context()).Info("handler ran")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("gone"))
		})

		req := httptest.NewRequest(http.MethodGet, "/api/graphs/7", nil)
		req.Header.Set("User-Agent", "test-client")
		recorder := httptest.NewRecorder()
		NewRequestLoggingMiddleware(logger)(next).ServeHTTP(recorder, req)

		requestID := recorder.Header().Get(requestIDHeader)
		require.NotEmpty(t, requestID)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"msg":"handler ran"`)
		assert.Contains(t, lines[0], `"request_id":"`+requestID+`"`)

		assert.Contains(t, lines[1], `"level":"WARN"`)
		assert.Contains(t, lines[1], `"msg":"http_request"`)
		assert.Contains(t, lines[1], `"path":"/api/graphs/7"`)
		assert.Contains(t, lines[1], `"status":404`)
		assert.Contains(t, lines[1], `"bytes":4`)
		assert.Contains(t, lines[1], `"user_agent":"test-client"`)
		assert.Contains(t, lines[1], `"component":"http_server"`)
		assert.Contains(t, lines[1], `"request_id":"`+requestID+`"`)
	})

	t.Run("keeps caller request ID and implicit status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{}"))
			w.WriteHeader(http.StatusTeapot)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/graphs", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		recorder := httptest.NewRecorder()
		NewRequestLoggingMiddleware(logger)(next).ServeHTTP(recorder, req)

		assert.Equal(t, "abc-123", recorder.Header().Get(requestIDHeader))
		output := buf.String()
		assert.Contains(t, output, `"request_id":"abc-123"`)
		assert.Contains(t, output, `"status":200`, "a write before WriteHeader commits 200")
		assert.Contains(t, output, `"level":"INFO"`)
	})
}
