package api

import (
	"net/http"
	"time"

	"openquery-hq/vanguard/pkg/rest"
)

// clusterHandler serves GET /api/v1/cluster with this node's view of
// the cluster. A single-node deployment reports only itself.
type clusterHandler struct {
	nodeID    string
	startTime time.Time
}

func (h *clusterHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 3 || seg[0] != "api" || seg[1] != "v1" || seg[2] != "cluster" {
		return rest.NotFound()
	}
	if r.Method != http.MethodGet {
		return rest.MethodNotAllowed()
	}

	rest.WriteJSON(w, http.StatusOK, ClusterSnapshot{
		NodeID:    h.nodeID,
		StartTime: h.startTime,
		LiveNodes: []string{h.nodeID},
	})
	return nil
}

// versionHandler serves GET /api/v1/version with build information.
type versionHandler struct {
	build BuildInfo
}

func (h *versionHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 3 || seg[0] != "api" || seg[1] != "v1" || seg[2] != "version" {
		return rest.NotFound()
	}
	if r.Method != http.MethodGet {
		return rest.MethodNotAllowed()
	}

	rest.WriteJSON(w, http.StatusOK, h.build)
	return nil
}
