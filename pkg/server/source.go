package server

import (
	"crypto/tls"
	"net"
)

// Source yields ready-to-serve connections from a raw listener through
// one uniform interface, whether TLS is enabled or not. With a TLS
// config, each accepted connection is wrapped for lazy termination;
// without one, raw connections pass through untouched.
type Source struct {
	listener  net.Listener
	tlsConfig *tls.Config
}

// NewSource wraps a bound listener. tlsConfig nil means plaintext.
func NewSource(listener net.Listener, tlsConfig *tls.Config) *Source {
	return &Source{listener: listener, tlsConfig: tlsConfig}
}

// Accept waits for the next connection.
func (s *Source) Accept() (net.Conn, error) {
	conn, err := s.listener.Accept()
	if err != nil || s.tlsConfig == nil {
		return conn, err
	}
	return NewConn(conn, s.tlsConfig), nil
}

// Close stops the listener.
func (s *Source) Close() error {
	return s.listener.Close()
}

// Addr returns the listener's bound address.
func (s *Source) Addr() net.Addr {
	return s.listener.Addr()
}
