package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPServer serves an http.Handler as a Component.
type HTTPServer struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger

	listening chan string
}

// NewHTTPServer creates an HTTP server component listening on addr.
func NewHTTPServer(addr string, handler http.Handler, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: 30 * time.Second,
		logger:          logger.With("component", "http"),
		listening:       make(chan string, 1),
	}
}

// Name returns the component name.
func (s *HTTPServer) Name() string {
	return "http"
}

// Addr returns the bound address once the server is listening.
func (s *HTTPServer) Addr(ctx context.Context) (string, error) {
	select {
	case addr := <-s.listening:
		s.listening <- addr
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Start listens and serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.listening <- ln.Addr().String()
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
