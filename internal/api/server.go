package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/wonny/esgpulse/pkg/config"
	"github.com/wonny/esgpulse/pkg/logger"
)

// Server serves the dataset API until its context ends
// ⭐ SSOT: API server settings live in this file
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	api        config.APIConfig
	dataset    string
}

// New creates a server for the dataset at cfg.Pipeline.OutputJSON
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
			IdleTimeout:  cfg.API.IdleTimeout,
		},
		logger:  log.WithField("module", "api"),
		api:     cfg.API,
		dataset: cfg.Pipeline.OutputJSON,
	}
}

// Run listens on the configured port and blocks until ctx is done or the
// listener fails. A cancelled ctx triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.WithFields(map[string]interface{}{
		"addr":    ln.Addr().String(),
		"dataset": s.dataset,
	}).Info("Starting API server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	s.logger.WithField("timeout", s.api.ShutdownTimeout).Info("Shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), s.api.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
