package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"camkeep-hq/camkeep/pkg/config"
)

// Server serves the daemon endpoints.
type Server struct {
	config     *config.ServerConfig
	handler    http.Handler
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
	mu         sync.RWMutex
	isRunning  bool
}

// NewServer creates a server for handler. The middleware chain is applied
// here.
func NewServer(cfg *config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		config:  cfg,
		handler: Chain(handler),
		logger:  slog.Default().With("component", "server"),
	}
}

// Chain wraps h in the standard middleware chain.
func Chain(h http.Handler) http.Handler {
	h = LoggingMiddleware(h)
	h = RequestIDMiddleware(h)
	return RecoveryMiddleware(h)
}

// Listen binds the listen address. Calling it before Serve surfaces address
// errors before anything else starts.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddress
}

// Serve serves requests until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("serving metrics and health endpoints", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		s.setStopped()
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.shutdown(srv)
	}
}

func (s *Server) shutdown(srv *http.Server) error {
	defer s.setStopped()

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.listener = nil
	s.mu.Unlock()
}

// IsRunning returns true if the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
