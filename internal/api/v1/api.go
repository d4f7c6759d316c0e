// Package v1 implements the theme song REST API.
package v1

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// Config holds API server configuration.
type Config struct {
	// APIKey, when set, must be sent as X-Api-Key or ?apikey= on every request.
	APIKey string
}

// Server is the v1 API server.
type Server struct {
	deps    ServerDeps
	cfg     Config
	baseCtx context.Context
	log     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithBaseContext sets the context that runs started over HTTP inherit.
// Runs outlive the request that started them.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log.With("component", "api")
	}
}

// New creates a new v1 API server.
func New(deps ServerDeps, cfg Config, opts ...Option) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingDependency, err)
	}
	s := &Server{
		deps:    deps,
		cfg:     cfg,
		baseCtx: context.Background(),
		log:     slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Theme runs
	mux.HandleFunc("POST /ThemeSongs/DownloadTVShows", s.auth(s.startRun))
	mux.HandleFunc("GET /ThemeSongs/Status", s.auth(s.getStatus))
	mux.HandleFunc("POST /ThemeSongs/Cancel", s.auth(s.cancelRun))

	// Events
	mux.HandleFunc("GET /ThemeSongs/Events", s.auth(s.requireEventLog(s.listEvents)))

	// Library
	mux.HandleFunc("GET /ThemeSongs/Series", s.auth(s.requireLibrary(s.listSeries)))
	mux.HandleFunc("POST /ThemeSongs/Library/Scan", s.auth(s.requireScanner(s.scanLibrary)))
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, val)
	}
	return i, nil
}

// auth validates the API key when one is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey == "" {
			next(w, r)
			return
		}
		apiKey := r.Header.Get("X-Api-Key")
		if apiKey == "" {
			apiKey = r.URL.Query().Get("apikey")
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.cfg.APIKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid API key")
			return
		}
		next(w, r)
	}
}
