// Vanguard is the REST front door for a distributed search and ingest
// cluster.
//
// It serves the public HTTP API for the node:
//   - Document search and NDJSON ingestion per index
//   - Index management (create, list, describe, delete)
//   - Cluster, version, and OpenAPI description endpoints
//   - Liveness and readiness probes, Prometheus metrics
//   - Developer routes for runtime inspection and log level control
//
// Usage:
//
//	# Start the server with default configuration
//	vanguard run
//
//	# Start with a custom configuration file
//	vanguard run --config /path/to/config.yaml
//
//	# Show version information
//	vanguard version
//
//	# Generate a self-signed certificate for testing
//	vanguard certs generate --host localhost
//
// For complete documentation, see: https://github.com/openquery-hq/vanguard
package main

func main() {
	Execute()
}
