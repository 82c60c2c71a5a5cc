package api

import (
	"log/slog"
	"net/http"
	"time"

	"openquery-hq/vanguard/pkg/limits/ratelimit"
	"openquery-hq/vanguard/pkg/rest"
	"openquery-hq/vanguard/pkg/telemetry/health"
)

// Deps carries the collaborators the route filters are built from.
type Deps struct {
	// Store backs the search, ingest, and index management routes.
	Store *IndexStore

	// Limiter throttles ingest per client. nil disables rate limiting.
	Limiter *ratelimit.Limiter

	// MaxBodyBytes caps ingest request bodies. Zero means unlimited.
	MaxBodyBytes int64

	// LevelVar is the process log level, adjustable via the developer API.
	LevelVar *slog.LevelVar

	// Build is reported by the version endpoint and the API docs.
	Build BuildInfo

	// NodeID identifies this node in cluster snapshots.
	NodeID string

	// StartTime is when the process started.
	StartTime time.Time

	// Health backs the liveness and readiness probes.
	Health *health.Checker

	// Metrics serves the Prometheus exposition. nil disables /metrics.
	Metrics http.Handler
}

// Filters returns the ordered filter list for the route registry.
// Earlier filters win; the api/v1 group is tried first and probe,
// metrics, and developer routes last.
func Filters(deps Deps) []rest.Filter {
	filters := []rest.Filter{
		&searchHandler{store: deps.Store},
		&ingestHandler{store: deps.Store, limiter: deps.Limiter, maxBodyBytes: deps.MaxBodyBytes},
		&indexesHandler{store: deps.Store},
		&clusterHandler{nodeID: deps.NodeID, startTime: deps.StartTime},
		&versionHandler{build: deps.Build},
		&docsHandler{build: deps.Build},
		rootRedirectHandler{},
		uiHandler{},
		&healthFilter{checker: deps.Health},
	}

	if deps.Metrics != nil {
		filters = append(filters, &metricsFilter{handler: deps.Metrics})
	}

	filters = append(filters, &developerHandler{levelVar: deps.LevelVar, startTime: deps.StartTime})

	return filters
}

// healthFilter adapts the health probe handlers to the filter contract.
type healthFilter struct {
	checker *health.Checker
}

func (h *healthFilter) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 2 || seg[0] != "health" {
		return rest.NotFound()
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return rest.MethodNotAllowed()
	}

	switch seg[1] {
	case "livez":
		h.checker.LivenessHandler()(w, r)
		return nil
	case "readyz":
		h.checker.ReadinessHandler()(w, r)
		return nil
	default:
		return rest.NotFound()
	}
}

// metricsFilter adapts the Prometheus handler to the filter contract.
type metricsFilter struct {
	handler http.Handler
}

func (m *metricsFilter) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 1 || seg[0] != "metrics" {
		return rest.NotFound()
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return rest.MethodNotAllowed()
	}

	m.handler.ServeHTTP(w, r)
	return nil
}
