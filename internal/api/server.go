// Package api implements the dashboard's layout service.
//
// The service is the backend-for-frontend of the monitoring dashboard: the
// JS renderer posts a metrics snapshot with its panel dimensions and gets
// back chart geometry it can paint directly. Endpoints:
//
//	POST /v1/layouts                  compute layouts for a posted snapshot
//	GET  /v1/layouts/{id}             fetch an archived computation
//	GET  /v1/snapshots/{hash}         replay a previously seen snapshot
//	GET  /v1/snapshots/{hash}/layouts list archived computations per snapshot
//	GET  /v1/policy                   show the effective layout policy
//	GET  /healthz                     liveness probe
//	GET  /metrics                     Prometheus metrics
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crawlytics/dashgeom/pkg/archive"
	"github.com/crawlytics/dashgeom/pkg/cache"
	"github.com/crawlytics/dashgeom/pkg/engine"
	"github.com/crawlytics/dashgeom/pkg/observability"
	"github.com/crawlytics/dashgeom/pkg/policy"
)

// Config configures the layout service.
type Config struct {
	// Cache backs the engine runner. Nil disables caching.
	Cache cache.Cache

	// Archive stores computed layouts. Nil disables archiving.
	Archive archive.Archive

	// Policy is the layout policy applied to every computation.
	Policy policy.Policy

	// Logger receives request and computation logs.
	Logger *log.Logger
}

// Server is the layout service.
type Server struct {
	runner   *engine.Runner
	archive  archive.Archive
	policy   policy.Policy
	logger   *log.Logger
	registry *prometheus.Registry
}

// NewServer assembles the service and registers its observability hooks.
func NewServer(cfg Config) *Server {
	if cfg.Archive == nil {
		cfg.Archive = archive.NewNullArchive()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := NewMetrics(registry)
	observability.SetEngineHooks(m)
	observability.SetCacheHooks(m)

	return &Server{
		runner:   engine.NewRunner(cfg.Cache, nil, cfg.Logger),
		archive:  cfg.Archive,
		policy:   cfg.Policy,
		logger:   cfg.Logger,
		registry: registry,
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layouts", s.handleComputeLayouts)
		r.Get("/layouts/{id}", s.handleGetLayout)
		r.Get("/snapshots/{hash}", s.handleGetSnapshot)
		r.Get("/snapshots/{hash}/layouts", s.handleListLayouts)
		r.Get("/policy", s.handleGetPolicy)
	})

	return r
}

// ListenAndServe runs the service until ctx is canceled, then drains
// in-flight requests before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("layout service listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down layout service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases the runner's resources.
func (s *Server) Close(ctx context.Context) error {
	if err := s.archive.Close(ctx); err != nil {
		return err
	}
	return s.runner.Close()
}
