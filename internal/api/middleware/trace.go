// Package middleware holds the HTTP middleware chain: trace-ID injection
// runs first so every downstream handler and log line can be correlated.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/calfield/brief-api/internal/api/shared"
)

// TraceMiddleware stamps each request context with a fresh trace ID and logs
// the request start. Apply it before any handler that logs or writes error
// envelopes.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		slog.With(slog.String("trace_id", shared.GetTraceID(ctx))).Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
