package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Logging stores a logger tagged with the request id in the context and logs
// one line per request once it completes.
func Logging(l *slog.Logger) func(http.Handler) http.Handler {
	if l == nil {
		l = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if id := RequestIDFrom(r.Context()); id != "" {
				reqLogger = reqLogger.With(slog.String("request_id", id))
			}
			ctx := context.WithValue(r.Context(), loggerKey, reqLogger)
			r = r.WithContext(ctx)

			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			reqLogger.LogAttrs(ctx, level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", sw.count),
			)
		})
	}
}
