package middleware

import "net/http"

// ExtraHeaders appends a static set of response headers to every reply,
// including error replies produced deeper in the pipeline. Headers are set
// before the inner handler runs so they survive whatever status the handler
// writes.
//
// Example usage:
//
//	handler = ExtraHeaders(map[string]string{"x-frame-options": "DENY"})(handler)
func ExtraHeaders(headers map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(headers) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for name, value := range headers {
				w.Header().Set(name, value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
