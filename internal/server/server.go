// Package server hosts a dispatch pipeline behind an HTTP listener
// with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/observability"
)

// Server runs one HTTP listener for a handler.
type Server struct {
	cfg     config.ListenerConfig
	handler http.Handler
	logger  observability.Logger
	server  *http.Server
	running atomic.Bool

	// onListen is invoked once the listener accepts traffic, with the
	// bound address. Useful with ":0" style addresses.
	onListen func(addr string)
}

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithListeningStarted sets the callback invoked once the listener is
// bound and accepting.
func WithListeningStarted(fn func(addr string)) Option {
	return func(s *Server) {
		s.onListen = fn
	}
}

// New creates a server for the handler.
func New(cfg config.ListenerConfig, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server is already running")
	}

	s.server = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadHeaderTimeout),
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}

	s.running.Store(true)
	addr := ln.Addr().String()

	s.logger.Info("listener started",
		observability.String("address", addr),
	)
	if s.onListen != nil {
		s.onListen(addr)
	}

	go s.serve(ln)
	return nil
}

func (s *Server) serve(ln net.Listener) {
	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		s.logger.Error("listener error", observability.Error(err))
	}
	s.running.Store(false)
}

// Stop shuts the listener down gracefully, falling back to a hard
// close when the context expires first.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	s.logger.Info("stopping listener")

	if err := s.server.Shutdown(ctx); err != nil {
		if closeErr := s.server.Close(); closeErr != nil {
			return fmt.Errorf("failed to close listener: %w", closeErr)
		}
		return fmt.Errorf("failed to shutdown listener gracefully: %w", err)
	}

	s.running.Store(false)
	s.logger.Info("listener stopped")
	return nil
}

// IsRunning returns true while the listener is serving.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}
