package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// TraceIDHeader carries the trace ID in both directions.
const TraceIDHeader = "X-Trace-ID"

// TraceMiddleware gives every request a trace ID and a logger that carries it.
// A well-formed X-Trace-ID sent by the caller is reused so that client and server
// logs line up; anything else is replaced by a fresh ID. The ID is echoed in the
// response header and in every error envelope. Install it before any middleware
// that logs through logger.FromContext.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if inbound := r.Header.Get(TraceIDHeader); shared.ValidTraceID(inbound) {
				ctx = shared.WithTraceID(ctx, inbound)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			reqLog := base.With(slog.String("trace_id", traceID))
			reqLog.Debug("request received",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))

			w.Header().Set(TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, reqLog)))
		})
	}
}
