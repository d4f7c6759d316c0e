package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/themarr/internal/api/v1"
	"github.com/vmunix/themarr/internal/config"
	"github.com/vmunix/themarr/internal/events"
	"github.com/vmunix/themarr/internal/handlers"
	"github.com/vmunix/themarr/internal/library"
	"github.com/vmunix/themarr/internal/metadata"
	"github.com/vmunix/themarr/internal/migrations"
	"github.com/vmunix/themarr/internal/plex"
	"github.com/vmunix/themarr/internal/scheduler"
	"github.com/vmunix/themarr/internal/server"
	"github.com/vmunix/themarr/internal/themes"
	"github.com/vmunix/themarr/pkg/tvdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// settingsLoader re-reads the config file so every run sees current settings.
func settingsLoader(path string) func() (themes.Settings, error) {
	return func() (themes.Settings, error) {
		cfg, err := config.Load(path)
		if errors.Is(err, config.ErrInvalid) {
			return themes.Settings{}, fmt.Errorf("%w: %w", themes.ErrInvalidSettings, err)
		}
		if err != nil {
			return themes.Settings{}, err
		}
		return cfg.Settings(), nil
	}
}

func runServer(configPath string) error {
	if configPath == "" {
		found, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("%w (run 'themarr init' to create one)", err)
		}
		if err != nil {
			return err
		}
		configPath = found
	}

	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", cfg.Database.Path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Run migrations
	if err := migrations.Apply(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Events ===
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger.With("component", "bus"))
	defer func() { _ = bus.Close() }()

	loadSettings := settingsLoader(configPath)

	// === Clients (optional - nil if not configured) ===
	var plexClient *plex.Client
	if cfg.Plex.Enabled() {
		plexClient = plex.NewClient(cfg.Plex.URL, cfg.Plex.Token,
			plex.WithPathMapping(cfg.Plex.LocalPath, cfg.Plex.RemotePath),
			plex.WithLogger(logger))
	}

	cache := metadata.NewCache(db)
	var resolver library.Resolver
	if cfg.TVDB.APIKey != "" {
		client := tvdb.New(cfg.TVDB.APIKey, tvdb.WithLogger(logger))
		resolver = metadata.NewTVDBService(client, cache, logger)
	}

	// === Catalog ===
	var (
		catalog      themes.CatalogSource
		libraryStore *library.Store
		scanner      *library.Scanner
	)
	switch cfg.Catalog.Source {
	case config.SourcePlex:
		catalog = plex.NewCatalog(plexClient, cfg.Plex.Libraries, logger)
	default:
		libraryStore = library.NewStore(db)
		scanner = library.NewScanner(libraryStore, cfg.Library.Roots, resolver, logger,
			library.WithScanPublisher(bus))
		catalog = library.NewCatalog(libraryStore, logger)
	}

	// === Engine ===
	fetcher := themes.NewHTTPFetcher(logger.With("component", "fetcher"),
		themes.WithRequestTimeout(cfg.Themes.RequestTimeout.Duration))
	engine := themes.NewEngine(catalog, fetcher, logger,
		themes.WithPublisher(bus),
		themes.WithLockFile(cfg.LockPath()))

	// === Background components ===
	daily, err := scheduler.ParseDaily(cfg.Themes.DailyAt)
	if err != nil {
		return err
	}
	schedOpts := []scheduler.Option{scheduler.WithDaily(daily)}
	if scanner != nil {
		schedOpts = append(schedOpts, scheduler.WithLibraryScanner(scanner))
	}
	sched := scheduler.New(engine, loadSettings, logger, schedOpts...)

	components := []server.Component{
		sched,
		server.NewPruner(eventLog, cfg.Database.EventRetention.Duration, 24*time.Hour, logger,
			server.WithCache(cache)),
	}
	if plexClient != nil {
		notificationsEnabled := func() bool {
			s, err := loadSettings()
			return err == nil && s.EnableNotifications
		}
		components = append(components, handlers.NewNotifyHandler(bus, plexClient, notificationsEnabled, logger))
	}

	// === HTTP ===
	deps := v1.ServerDeps{
		Engine:   engine,
		Settings: loadSettings,
		EventLog: eventLog,
	}
	if libraryStore != nil {
		deps.Library = libraryStore
		deps.Scanner = scanner
	}
	api, err := v1.New(deps, v1.Config{APIKey: cfg.Server.APIKey},
		v1.WithBaseContext(ctx),
		v1.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	components = append(components, server.NewHTTPServer(addr, logRequests(api.Handler(), logger), logger))

	logger.Info("server starting",
		"addr", addr,
		"config", configPath,
		"database", cfg.Database.Path,
		"catalog", cfg.Catalog.Source,
		"plex", plexClient != nil,
		"tvdb", resolver != nil,
		"daily_at", cfg.Themes.DailyAt,
		"log_level", cfg.Server.LogLevel,
	)

	err = server.NewRunner(logger, components...).Run(ctx)

	// Let an in-flight run record its outcome before the database closes.
	drainRuns(engine, 10*time.Second, logger)

	logger.Info("server stopped")
	return err
}

// runDrainer is the part of the engine needed at shutdown.
type runDrainer interface {
	Cancel() bool
	Wait(ctx context.Context) error
}

// drainRuns cancels any active run and waits until it has published its
// final event, or until timeout.
func drainRuns(engine runDrainer, timeout time.Duration, logger *slog.Logger) {
	if engine.Cancel() {
		logger.Info("cancelling active theme run")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := engine.Wait(ctx); err != nil {
		logger.Warn("theme run still active at shutdown", "timeout", timeout.String(), "error", err)
	}
}
