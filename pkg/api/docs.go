package api

import (
	"net/http"

	"openquery-hq/vanguard/pkg/rest"
)

// docsHandler serves GET /openapi.json describing the public API.
type docsHandler struct {
	build BuildInfo
}

func (h *docsHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 1 || seg[0] != "openapi.json" {
		return rest.NotFound()
	}
	if r.Method != http.MethodGet {
		return rest.MethodNotAllowed()
	}

	rest.WriteJSON(w, http.StatusOK, h.document())
	return nil
}

// document assembles the OpenAPI description. The schema covers the
// routes the registry exposes; request/response bodies are documented
// loosely as objects.
func (h *docsHandler) document() map[string]any {
	jsonResponse := func(description string) map[string]any {
		return map[string]any{
			"description": description,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"type": "object"},
				},
			},
		}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "Vanguard REST API",
			"version": h.build.Version,
		},
		"paths": map[string]any{
			"/api/v1/{index}/search": map[string]any{
				"get": map[string]any{
					"summary": "Search an index via query-string parameters",
					"parameters": []map[string]any{
						{"name": "index", "in": "path", "required": true, "schema": map[string]any{"type": "string"}},
						{"name": "query", "in": "query", "schema": map[string]any{"type": "string"}},
						{"name": "max_hits", "in": "query", "schema": map[string]any{"type": "integer"}},
						{"name": "start_offset", "in": "query", "schema": map[string]any{"type": "integer"}},
					},
					"responses": map[string]any{"200": jsonResponse("Search results")},
				},
				"post": map[string]any{
					"summary":   "Search an index via a JSON body",
					"responses": map[string]any{"200": jsonResponse("Search results")},
				},
			},
			"/api/v1/{index}/ingest": map[string]any{
				"post": map[string]any{
					"summary":   "Ingest newline-delimited JSON documents",
					"responses": map[string]any{"200": jsonResponse("Ingest acknowledgement")},
				},
			},
			"/api/v1/indexes": map[string]any{
				"get":  map[string]any{"summary": "List indexes", "responses": map[string]any{"200": jsonResponse("Index list")}},
				"post": map[string]any{"summary": "Create an index", "responses": map[string]any{"200": jsonResponse("Index metadata")}},
			},
			"/api/v1/indexes/{index}": map[string]any{
				"get":    map[string]any{"summary": "Describe an index", "responses": map[string]any{"200": jsonResponse("Index metadata")}},
				"delete": map[string]any{"summary": "Delete an index", "responses": map[string]any{"200": jsonResponse("Deletion acknowledgement")}},
			},
			"/api/v1/cluster": map[string]any{
				"get": map[string]any{"summary": "Cluster snapshot", "responses": map[string]any{"200": jsonResponse("Cluster state")}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"summary": "Build information", "responses": map[string]any{"200": jsonResponse("Build info")}},
			},
			"/health/livez": map[string]any{
				"get": map[string]any{"summary": "Liveness probe", "responses": map[string]any{"200": jsonResponse("Liveness status")}},
			},
			"/health/readyz": map[string]any{
				"get": map[string]any{"summary": "Readiness probe", "responses": map[string]any{"200": jsonResponse("Readiness status")}},
			},
			"/metrics": map[string]any{
				"get": map[string]any{"summary": "Prometheus metrics", "responses": map[string]any{"200": map[string]any{"description": "Exposition format"}}},
			},
		},
	}
}
