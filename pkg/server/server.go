package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/http2"

	"openquery-hq/vanguard/pkg/config"
	tlsx "openquery-hq/vanguard/pkg/security/tls"
)

// Server owns the listener, the connection source, and the serve loop.
type Server struct {
	config  *config.Config
	handler http.Handler
	log     *slog.Logger

	// Lifecycle state below is guarded by mu.
	httpServer   *http.Server
	source       *Source
	ready        chan struct{}
	readyOnce    sync.Once
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server around an already-assembled handler pipeline.
func New(cfg *config.Config, handler http.Handler, log *slog.Logger) *Server {
	return &Server{
		config:  cfg,
		handler: handler,
		log:     log,
		ready:   make(chan struct{}),
	}
}

// Start binds the listener and serves until the context is cancelled
// or the serve loop fails. The readiness signal fires once the listener
// is bound, before the serve/shutdown race begins.
//
// Returns nil when the context cancellation triggered the shutdown,
// or the serve loop's own error otherwise.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	// TLS misconfiguration is a startup failure, detected before any
	// socket is opened.
	tlsConfig, err := tlsx.ServerConfig(ctx, s.config.Security.TLS)
	if err != nil {
		s.markStopped()
		return fmt.Errorf("failed to configure TLS: %w", err)
	}

	listener, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.markStopped()
		return fmt.Errorf("failed to bind %s: %w", s.config.Server.ListenAddress, err)
	}

	s.mu.Lock()
	s.source = NewSource(listener, tlsConfig)
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	s.mu.Unlock()

	s.log.Info("server listening",
		"address", listener.Addr().String(),
		"tls_enabled", tlsConfig != nil,
	)
	s.readyOnce.Do(func() { close(s.ready) })

	// Two goroutines may report on the TLS path, so neither must block.
	errChan := make(chan error, 2)
	if tlsConfig != nil {
		// ALPN decides the HTTP version per connection, so the serve
		// loop splits: h2 sessions go straight to the HTTP/2 server
		// while HTTP/1.x connections queue for the regular one.
		queue := newConnQueue(listener.Addr())
		h2 := &http2.Server{IdleTimeout: s.config.Server.IdleTimeout}

		go func() {
			err := s.httpServer.Serve(queue)
			if err != nil && err != http.ErrServerClosed && !errors.Is(err, net.ErrClosed) {
				errChan <- err
				return
			}
			errChan <- nil
		}()
		go func() {
			if err := s.dispatchTLS(queue, h2); err != nil {
				errChan <- err
			}
			queue.Close()
		}()
	} else {
		go func() {
			err := s.httpServer.Serve(s.source)
			if err != nil && err != http.ErrServerClosed && !errors.Is(err, net.ErrClosed) {
				errChan <- err
				return
			}
			errChan <- nil
		}()
	}

	// Race the serve loop against the shutdown signal.
	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.markStopped()
		return err
	}
}

// Ready is closed once the listener is bound and the server is about
// to serve connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source == nil {
		return nil
	}
	return s.source.Addr()
}

// Shutdown gracefully stops the server: the accept loop stops first,
// then established connections get the shutdown timeout to drain.
// Connections that outlive the timeout are cut off.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		httpServer := s.httpServer
		s.mu.RUnlock()
		if !running || httpServer == nil {
			return
		}

		s.log.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		// The TLS dispatch loop accepts from the raw listener directly,
		// so it has to be closed here; httpServer only knows the queue.
		s.mu.RLock()
		source := s.source
		s.mu.RUnlock()
		if source != nil {
			source.Close()
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.markStopped()
		s.log.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the serve loop is active.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) markStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}
