// Package server exposes the summarization pipeline over HTTP with
// asynchronous run tracking.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/brieflab/brief/internal/app"
	"github.com/brieflab/brief/internal/jobs"
	"github.com/brieflab/brief/internal/metrics"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port string

	App     *app.App
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Server is the brief HTTP server.
type Server struct {
	httpServer *http.Server
	app        *app.App
	tracker    *jobs.Tracker
	metrics    *metrics.Recorder
	logger     *slog.Logger

	// runCtx parents every background run so shutdown cancels in-flight
	// pipelines.
	runCtx    context.Context
	cancelAll context.CancelFunc
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	runCtx, cancelAll := context.WithCancel(context.Background())

	s := &Server{
		app:       cfg.App,
		tracker:   jobs.NewTracker(),
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		runCtx:    runCtx,
		cancelAll: cancelAll,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully and cancels all in-flight runs.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.cancelAll()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	s.cancelAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// withLogging wraps the handler with request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start),
		)
	})
}
