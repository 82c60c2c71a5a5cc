package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"openquery-hq/vanguard/pkg/rest"
)

// Recovery recovers from panics in HTTP handlers and returns a 500 error
// reply. The panic value and stack trace are logged server-side and never
// exposed to clients.
//
// Example usage:
//
//	handler = Recovery(log)(handler)
func Recovery(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.ErrorContext(r.Context(), "panic in handler",
						"error", err,
						"request_id", GetRequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					rest.WriteError(w, rest.Error{
						StatusCode: http.StatusInternalServerError,
						Message:    "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
