package api

import "time"

// SearchRequest carries the parameters of one search, whether they
// arrived as query-string parameters or as a JSON body.
type SearchRequest struct {
	// Query is the search expression. Empty matches nothing.
	Query string `json:"query"`

	// MaxHits caps the number of returned hits.
	// Default: 20
	MaxHits int `json:"max_hits"`

	// StartOffset skips that many leading hits, for pagination.
	StartOffset int `json:"start_offset"`
}

// SearchResponse is the reply shape for search requests.
type SearchResponse struct {
	// NumHits is the total number of matching documents, before
	// MaxHits/StartOffset are applied.
	NumHits int `json:"num_hits"`

	// Hits holds the matching documents as raw JSON.
	Hits []map[string]any `json:"hits"`

	// ElapsedTimeMicros is the server-side search latency.
	ElapsedTimeMicros int64 `json:"elapsed_time_micros"`
}

// IngestResponse is the reply shape for ingest requests.
type IngestResponse struct {
	// NumDocsForProcessing is the number of documents accepted.
	NumDocsForProcessing int `json:"num_docs_for_processing"`
}

// IndexMetadata describes one index.
type IndexMetadata struct {
	// IndexID is the unique index identifier.
	IndexID string `json:"index_id"`

	// NumDocs is the number of documents ingested so far.
	NumDocs int `json:"num_docs"`

	// CreatedAt is when the index was created.
	CreatedAt time.Time `json:"created_at"`
}

// CreateIndexRequest is the body of POST /api/v1/indexes.
type CreateIndexRequest struct {
	IndexID string `json:"index_id"`
}

// ClusterSnapshot describes this node's view of the cluster.
type ClusterSnapshot struct {
	NodeID    string    `json:"node_id"`
	StartTime time.Time `json:"start_time"`
	LiveNodes []string  `json:"live_nodes"`
}

// BuildInfo reports how the running binary was built.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// DebugInfo is the reply of GET /api/developer/debug.
type DebugInfo struct {
	NumGoroutines int       `json:"num_goroutines"`
	LogLevel      string    `json:"log_level"`
	StartTime     time.Time `json:"start_time"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}
