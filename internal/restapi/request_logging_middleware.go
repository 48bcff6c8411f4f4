package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/transitlab/stopgraph/internal/logging"
)

// requestIDHeader carries a caller supplied request ID. It is echoed on the
// response, and requests without one get a fresh UUID.
const requestIDHeader = "X-Request-ID"

// statusRecorder keeps the first status written and counts body bytes.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// NewRequestLoggingMiddleware logs every API call once it is served. Handlers
// find a logger tagged with the request ID in the request context.
func NewRequestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			requestLogger := logger.With(slog.String("request_id", requestID))
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), requestLogger)))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logging.LogHTTPRequest(requestLogger, logging.HTTPRequest{
				Method:   r.Method,
				Path:     r.URL.Path,
				Status:   rec.status,
				Bytes:    rec.bytes,
				Duration: time.Since(start),
			}, slog.String("user_agent", r.UserAgent()))
		})
	}
}
