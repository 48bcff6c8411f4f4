// Package logging sets up JSON slog output and helpers for the few event
// shapes a build or an API call logs.
package logging

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

type loggerKey struct{}

// NewStructuredLogger writes JSON lines at or above level to w.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// LogError logs message at error level with err under the "error" key.
// A nil logger is a no-op.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	if err != nil {
		attrs = append([]slog.Attr{slog.String("error", err.Error())}, attrs...)
	}
	logger.LogAttrs(context.Background(), slog.LevelError, message, attrs...)
}

// LogOperation logs a finished pipeline step such as "feed_loaded" or
// "layered_graphs_built". A zero "duration" is left out.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	attrs = slices.DeleteFunc(slices.Clone(attrs), func(a slog.Attr) bool {
		return a.Key == "duration" && a.Value.Kind() == slog.KindDuration && a.Value.Duration() == 0
	})
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, attrs...)
}

// HTTPRequest is one served API call.
type HTTPRequest struct {
	Method   string
	Path     string
	Status   int
	Bytes    int
	Duration time.Duration
}

// level picks warn for client errors and error for server errors.
func (r HTTPRequest) level() slog.Level {
	switch {
	case r.Status >= http.StatusInternalServerError:
		return slog.LevelError
	case r.Status >= http.StatusBadRequest:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// LogHTTPRequest logs req as an "http_request" event.
func LogHTTPRequest(logger *slog.Logger, req HTTPRequest, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	attrs = append([]slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", req.Status),
		slog.Int("bytes", req.Bytes),
		slog.Float64("duration_ms", float64(req.Duration.Microseconds())/1000),
		slog.String("component", "http_server"),
	}, attrs...)
	logger.LogAttrs(context.Background(), req.level(), "http_request", attrs...)
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, falling back to
// slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
