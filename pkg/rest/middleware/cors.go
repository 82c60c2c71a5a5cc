package middleware

import (
	"net/http"
)

// allowedMethods is advertised on every preflight response, regardless of
// the configured origin rules.
const allowedMethods = "GET,POST,PUT,DELETE,OPTIONS"

// CORS emits Cross-Origin Resource Sharing headers per the configured
// origin rules and answers preflight requests.
//
// Origin rules:
//   - empty list: never emit an allow-origin header, but preflight
//     requests still receive the allowed-methods advertisement;
//   - a list containing "*": always emit "*";
//   - an explicit list: echo the request's Origin back only when it is a
//     member of the list. A mismatched origin is not an error; the request
//     proceeds and the browser enforces the policy.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAny = true
		}
		origins[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if allowAny {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" {
				if _, ok := origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
			}

			// Preflight: an OPTIONS request carrying an Origin header.
			if r.Method == http.MethodOptions && origin != "" {
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
					w.Header().Set("Access-Control-Allow-Headers", requested)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
