// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// Middleware functions wrap the route registry in a fixed order, outermost
// to innermost:
//
//	handler = ExtraHeaders(Recovery(RequestID(Logging(Compression(CORS(registry))))))
//
// Each layer is independently toggleable by configuration:
//
//   - ExtraHeaders: static response headers appended to every reply,
//     including error replies (security headers and the like).
//   - Recovery: converts handler panics into a 500 error reply.
//   - RequestID: generates or propagates an X-Request-ID for correlation.
//   - Logging: records method, path, status, and latency once per completed
//     request, and feeds the same observations to a metrics hook.
//   - Compression: negotiates zstd or gzip and compresses responses that
//     clear the configured size threshold. No threshold means no
//     compression, ever.
//   - CORS: emits allow-origin headers per the configured origin rules and
//     answers preflight requests.
//
// All middleware is thread-safe; configuration is captured at construction
// and never mutated afterwards.
package middleware
