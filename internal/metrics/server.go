package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animewatch/internal/logging"
)

// Server serves Prometheus metrics on a dedicated HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a metrics server exposing /metrics on bind.
func NewServer(bind string, reg *prometheus.Registry, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Server{
		httpServer: &http.Server{
			Addr:              bind,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logging.NewComponentLogger(logger, "metrics"),
	}
}

// Serve accepts connections on listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("metrics server listening", logging.String("addr", listener.Addr().String()))
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("metrics server error", logging.Error(err))
		return err
	}
	return nil
}

// Start listens on the configured bind and serves. Blocks until the server stops.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
