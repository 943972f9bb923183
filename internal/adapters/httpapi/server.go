package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/metrics"
)

// Options wires the application services into the API
type Options struct {
	Catalog   *application.Catalog
	History   *application.History
	Freshness *application.Freshness

	// Searcher backs /api/search. The catalog is searched when nil.
	Searcher commands.Searcher

	// Metrics enables request instrumentation and /metrics when set
	Metrics *metrics.Metrics

	// BaseURL prefixes sitemap locations, e.g. https://docs.example.com
	BaseURL string

	// EditBaseURL prefixes source files for edit links; none are
	// emitted when empty
	EditBaseURL string

	Logger *slog.Logger
}

// Server serves the documentation catalog as JSON
type Server struct {
	opts    Options
	handler http.Handler
}

// NewServer creates a Server with all routes registered
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{opts: opts}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = instrument(mux, opts.Metrics, opts.Logger)

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.opts.Logger.Info("http api listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("http api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
