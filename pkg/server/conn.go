package server

import (
	"crypto/tls"
	"net"
	"sync"
	"time"
)

// connState tracks where a Conn is in its lifecycle.
type connState int

const (
	// stateHandshaking means the TLS handshake has not completed yet.
	// It may not even have started: the handshake is driven by the
	// first read or write, never by Accept.
	stateHandshaking connState = iota

	// stateStreaming means the handshake completed and reads/writes go
	// straight to the TLS session.
	stateStreaming

	// stateClosed means the connection was closed.
	stateClosed
)

// Conn is a server-side TLS connection whose handshake is deferred to
// the first read or write. Accepting it is free; the cost of a slow or
// malicious handshake is paid inside the connection's own serve
// goroutine, never in the accept loop.
//
// A Conn closed mid-handshake drops the raw connection without sending
// a TLS close_notify, since there is no session to dismantle.
type Conn struct {
	raw net.Conn

	mu      sync.Mutex
	state   connState
	tlsConn *tls.Conn
	err     error
}

// NewConn wraps an accepted raw connection for lazy TLS termination.
// cfg must be non-nil and is shared read-only across connections.
func NewConn(raw net.Conn, cfg *tls.Config) *Conn {
	return &Conn{
		raw:     raw,
		tlsConn: tls.Server(raw, cfg),
	}
}

// stream returns the TLS session, completing the handshake if it has
// not run yet. A handshake failure is sticky.
func (c *Conn) stream() (*tls.Conn, error) {
	c.mu.Lock()
	switch c.state {
	case stateClosed:
		c.mu.Unlock()
		return nil, net.ErrClosed
	case stateStreaming:
		tlsConn := c.tlsConn
		c.mu.Unlock()
		return tlsConn, nil
	}
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	tlsConn := c.tlsConn
	c.mu.Unlock()

	// Handshake outside the lock so Close can interrupt it by closing
	// the raw connection. tls.Conn serializes concurrent callers.
	if err := tlsConn.Handshake(); err != nil {
		c.mu.Lock()
		if c.err == nil {
			c.err = err
		}
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	if c.state == stateHandshaking {
		c.state = stateStreaming
	}
	c.mu.Unlock()
	return tlsConn, nil
}

// Handshake completes the deferred handshake if it has not run yet and
// returns the established TLS session. The serve loop uses it to read
// the negotiated ALPN protocol before picking an HTTP version.
func (c *Conn) Handshake() (*tls.Conn, error) {
	return c.stream()
}

func (c *Conn) Read(b []byte) (int, error) {
	tlsConn, err := c.stream()
	if err != nil {
		return 0, err
	}
	return tlsConn.Read(b)
}

func (c *Conn) Write(b []byte) (int, error) {
	tlsConn, err := c.stream()
	if err != nil {
		return 0, err
	}
	return tlsConn.Write(b)
}

// Close tears the connection down. An established session is closed
// through the TLS layer so the peer receives close_notify; a
// connection still handshaking just drops the raw socket, which also
// unblocks any in-flight handshake.
func (c *Conn) Close() error {
	c.mu.Lock()
	prev := c.state
	c.state = stateClosed
	tlsConn := c.tlsConn
	c.mu.Unlock()

	if prev == stateClosed {
		return net.ErrClosed
	}
	if prev == stateStreaming {
		return tlsConn.Close()
	}
	return c.raw.Close()
}

func (c *Conn) LocalAddr() net.Addr  { return c.raw.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Deadlines apply to the raw connection, so they also bound the
// handshake itself.
func (c *Conn) SetDeadline(t time.Time) error      { return c.raw.SetDeadline(t) }
func (c *Conn) SetReadDeadline(t time.Time) error  { return c.raw.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.raw.SetWriteDeadline(t) }
