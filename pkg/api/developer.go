package api

import (
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"openquery-hq/vanguard/pkg/rest"
	"openquery-hq/vanguard/pkg/telemetry/logging"
)

// developerHandler serves the operator-facing endpoints:
//
//	GET /api/developer/debug      runtime snapshot
//	PUT /api/developer/log-level  adjust the process log level
type developerHandler struct {
	levelVar  *slog.LevelVar
	startTime time.Time
}

func (h *developerHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 3 || seg[0] != "api" || seg[1] != "developer" {
		return rest.NotFound()
	}

	switch seg[2] {
	case "debug":
		if r.Method != http.MethodGet {
			return rest.MethodNotAllowed()
		}
		rest.WriteJSON(w, http.StatusOK, DebugInfo{
			NumGoroutines: runtime.NumGoroutine(),
			LogLevel:      strings.ToLower(h.levelVar.Level().String()),
			StartTime:     h.startTime,
			UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		})
		return nil

	case "log-level":
		if r.Method != http.MethodPut {
			return rest.MethodNotAllowed()
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 64))
		if err != nil {
			return rest.CorruptedBody(err)
		}
		level, err := logging.ParseLevel(strings.TrimSpace(string(body)))
		if err != nil {
			return rest.InvalidArgument(err.Error())
		}
		h.levelVar.Set(level)
		rest.WriteJSON(w, http.StatusOK, map[string]string{
			"log_level": strings.ToLower(level.String()),
		})
		return nil

	default:
		return rest.NotFound()
	}
}
