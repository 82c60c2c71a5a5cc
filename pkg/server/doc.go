// Package server provides the HTTP front-door server.
//
// This package ties together the connection source, the route registry,
// and the middleware pipeline, and manages server lifecycle: bind,
// readiness signal, serve, and graceful shutdown.
//
// # Connections
//
// A Source yields ready-to-serve connections from a raw listener. With
// TLS enabled every accepted connection is wrapped in a Conn, which
// defers the TLS handshake until the first read or write so a slow
// handshake never stalls the accept loop. With TLS disabled the raw
// connection passes through untouched. Either way the serve loop and
// all middleware see one uniform net.Conn.
//
// With TLS enabled the serve loop dispatches each handshaken connection
// by its negotiated ALPN protocol: h2 sessions are served over HTTP/2,
// everything else over HTTP/1.x.
//
// # Lifecycle
//
// Start binds the listener, fires the readiness signal, and races the
// serve loop against the context: whichever finishes first ends the
// race. Cancelling the context triggers a graceful shutdown bounded by
// the configured shutdown timeout. Shutdown stops the accept loop
// first; connections already established are drained best-effort.
package server
