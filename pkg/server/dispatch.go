package server

import (
	"errors"
	"net"
	"sync"

	"golang.org/x/net/http2"
)

// connQueue is a net.Listener fed by the TLS dispatch loop. Connections
// that negotiated HTTP/1.x land here and are served by the regular
// http.Server; closing the queue makes the server's Serve call return.
type connQueue struct {
	addr  net.Addr
	conns chan net.Conn

	once   sync.Once
	closed chan struct{}
}

func newConnQueue(addr net.Addr) *connQueue {
	return &connQueue{
		addr:   addr,
		conns:  make(chan net.Conn),
		closed: make(chan struct{}),
	}
}

func (q *connQueue) Accept() (net.Conn, error) {
	select {
	case conn := <-q.conns:
		return conn, nil
	case <-q.closed:
		return nil, net.ErrClosed
	}
}

func (q *connQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}

func (q *connQueue) Addr() net.Addr {
	return q.addr
}

// deliver hands a connection to the queue, reporting false when the
// queue was closed before the handoff.
func (q *connQueue) deliver(conn net.Conn) bool {
	select {
	case q.conns <- conn:
		return true
	case <-q.closed:
		return false
	}
}

// dispatchTLS accepts TLS connections and routes each one by its
// negotiated ALPN protocol: h2 sessions go to the HTTP/2 server,
// everything else queues for the HTTP/1.x serve loop. Returns nil once
// the listener closes.
func (s *Server) dispatchTLS(queue *connQueue, h2 *http2.Server) error {
	for {
		conn, err := s.source.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		tlsConn, ok := conn.(*Conn)
		if !ok {
			// Source always wraps when TLS is configured.
			conn.Close()
			continue
		}
		go s.serveTLSConn(tlsConn, queue, h2)
	}
}

// serveTLSConn drives the deferred handshake for one connection and
// hands the established session to the right protocol server. Handing
// over the inner tls.Conn rather than the wrapper lets net/http see a
// real TLS connection and populate each request's TLS state.
func (s *Server) serveTLSConn(conn *Conn, queue *connQueue, h2 *http2.Server) {
	tlsConn, err := conn.Handshake()
	if err != nil {
		s.log.Debug("TLS handshake failed", "remote_addr", conn.RemoteAddr(), "error", err)
		conn.Close()
		return
	}

	if tlsConn.ConnectionState().NegotiatedProtocol == http2.NextProtoTLS {
		h2.ServeConn(tlsConn, &http2.ServeConnOpts{
			BaseConfig: s.httpServer,
			Handler:    s.handler,
		})
		return
	}

	if !queue.deliver(tlsConn) {
		tlsConn.Close()
	}
}
