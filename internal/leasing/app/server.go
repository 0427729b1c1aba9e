// Package app assembles the landgiver service: storage, registry client,
// leasing core, HTTP API, metrics, and the optional sweeper.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cazala/landgiver/internal/admingate"
	"github.com/cazala/landgiver/internal/leasing"
	"github.com/cazala/landgiver/internal/leasing/api/httpjson"
	"github.com/cazala/landgiver/internal/leasing/observability/metrics"
	"github.com/cazala/landgiver/internal/leasing/storage/sqlite"
	"github.com/cazala/landgiver/internal/leasing/sweeper"
	"github.com/cazala/landgiver/internal/platform/timeouts"
	"github.com/cazala/landgiver/internal/registry"
)

// Config holds service configuration, loaded from the environment.
type Config struct {
	HTTPAddr       string `env:"LANDGIVER_HTTP_ADDR" envDefault:":8080"`
	DBPath         string `env:"LANDGIVER_DB_PATH" envDefault:"data/landgiver.db"`
	RegistryURL    string `env:"LANDGIVER_REGISTRY_URL"`
	RegistrySecret string `env:"LANDGIVER_REGISTRY_SECRET"`

	// Owner seeds the admin principal on first boot. Ignored once an owner
	// is persisted, so a renounce is never silently undone by a restart.
	Owner string `env:"LANDGIVER_OWNER"`

	// SweepInterval enables the background sweeper when positive.
	SweepInterval time.Duration `env:"LANDGIVER_SWEEP_INTERVAL"`
}

// Server hosts the landgiver HTTP service.
type Server struct {
	cfg        Config
	logger     zerolog.Logger
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
	svc        *leasing.Service
	sweep      *sweeper.Sweeper
}

// New creates a configured server listening on cfg.HTTPAddr.
func New(cfg Config, logger zerolog.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.RegistryURL) == "" {
		return nil, errors.New("LANDGIVER_REGISTRY_URL is required")
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := seedOwner(store, cfg.Owner); err != nil {
		_ = store.Close()
		return nil, err
	}

	registryClient, err := registry.NewClient(cfg.RegistryURL, cfg.RegistrySecret)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc := leasing.NewService(store, registryClient,
		leasing.WithLogger(logger),
		leasing.WithMetrics(metrics.New(promRegistry)),
	)

	api := httpjson.NewServer(httpjson.Config{
		Service:        svc,
		Logger:         logger,
		AdminGate:      loadAdminGate(logger),
		RegistrySecret: cfg.RegistrySecret,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	mux.Handle("/", api.Handler())

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}

	server := &Server{
		cfg:      cfg,
		logger:   logger,
		listener: listener,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store: store,
		svc:   svc,
	}
	if cfg.SweepInterval > 0 {
		server.sweep = sweeper.New(svc, logger, cfg.SweepInterval)
	}
	return server, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a landgiver server until the context ends.
func Run(ctx context.Context, cfg Config, logger zerolog.Logger) error {
	server, err := New(cfg, logger)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error().Err(err).Msg("close store")
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if s.sweep != nil {
		go s.sweep.Run(sweepCtx)
		s.logger.Info().Dur("interval", s.cfg.SweepInterval).Msg("sweeper enabled")
	}

	s.logger.Info().Str("addr", s.Addr()).Msg("landgiver listening")
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("http shutdown")
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func openStore(path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "landgiver.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

// seedOwner persists the configured owner principal on first boot only.
func seedOwner(store *sqlite.Store, owner string) error {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil
	}
	recorded, err := store.OwnerRecorded(context.Background())
	if err != nil {
		return fmt.Errorf("read owner: %w", err)
	}
	if recorded {
		return nil
	}
	if err := store.SetOwner(context.Background(), owner); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	return nil
}

// loadAdminGate reads the admin gate config when its env is present. With no
// gate configured the admin endpoints reject every call, which is a valid
// deployment for a renounced-ownership service.
func loadAdminGate(logger zerolog.Logger) *admingate.Config {
	if strings.TrimSpace(os.Getenv("LANDGIVER_ADMIN_PUBLIC_KEY")) == "" {
		logger.Warn().Msg("admin gate not configured, admin endpoints disabled")
		return nil
	}
	gate, err := admingate.LoadConfigFromEnv(nil)
	if err != nil {
		logger.Error().Err(err).Msg("load admin gate config, admin endpoints disabled")
		return nil
	}
	return &gate
}
