package server

import (
	"log/slog"
	"net/http"

	"openquery-hq/vanguard/pkg/config"
	"openquery-hq/vanguard/pkg/rest"
	"openquery-hq/vanguard/pkg/rest/middleware"
)

// Pipeline composes the route registry with the middleware stack,
// outermost to innermost: static extra headers, panic recovery, request
// IDs, logging/metrics, conditional compression, CORS, dispatch.
//
// hook may be nil to disable metrics without disabling logging.
func Pipeline(cfg *config.ServerConfig, log *slog.Logger, hook middleware.MetricsHook, filters ...rest.Filter) http.Handler {
	var handler http.Handler = rest.NewRegistry(log, filters...)

	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.Compression(int64(cfg.Compression.MinSizeBytes))(handler)
	handler = middleware.Logging(log, hook)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(log)(handler)
	handler = middleware.ExtraHeaders(cfg.ExtraHeaders)(handler)

	return handler
}
