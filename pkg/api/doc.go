// Package api implements the REST route filters: search, ingest, index
// management, cluster and node info, developer endpoints, API docs, the
// embedded UI, health probes, and metrics.
//
// Filters returns the ordered filter list for the route registry. Each
// filter either handles the request, declines it with a structural
// rejection (not found, method not allowed) so later filters get a
// chance, or fails it with a terminal validation rejection.
package api
