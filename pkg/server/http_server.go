package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/config"
)

// HTTPServer wraps http.Server with the service's timeouts.
type HTTPServer struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewHTTPServer creates an HTTP server for handler.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &HTTPServer{
		srv:    srv,
		logger: logger,
	}
}

// Addr returns the listen address
func (s *HTTPServer) Addr() string {
	return s.srv.Addr
}

// Start serves until Shutdown; a clean shutdown returns nil.
func (s *HTTPServer) Start() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains open connections until ctx is done.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	shutdownCh := make(chan error, 1)

	go func() {
		shutdownCh <- s.srv.Shutdown(ctx)
	}()

	select {
	case err := <-shutdownCh:
		return err

	case <-ctx.Done():
		return ctx.Err()

	case <-time.After(10 * time.Second):
		return context.DeadlineExceeded
	}
}
