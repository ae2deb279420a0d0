package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/bipagem/api-contract"
	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/http/apierr"
	"github.com/tuanvumaihuynh/bipagem/internal/http/metric"
	"github.com/tuanvumaihuynh/bipagem/internal/http/middleware"
	"github.com/tuanvumaihuynh/bipagem/internal/http/swagger"
	"github.com/tuanvumaihuynh/bipagem/internal/service"
	"github.com/tuanvumaihuynh/bipagem/internal/storage/db"
	"github.com/tuanvumaihuynh/bipagem/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// FeedSyncer loads the configured sheet feed into the catalog.
type FeedSyncer interface {
	Sync(ctx context.Context) (service.LoadCatalogResult, error)
}

type Params struct {
	Config       config.HTTP
	ExportConfig config.Export
	Logger       *slog.Logger
	// Registry receives the HTTP metrics and is served on /metrics.
	Registry   *prometheus.Registry
	CatalogSvc service.CatalogService
	// Feed is nil when no sheet feed is configured.
	Feed          FeedSyncer
	HealthChecker db.HealthChecker
}

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	exportCfg config.Export
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *metric.Metrics
	validator validator.Validator

	catalogSvc    service.CatalogService
	feed          FeedSyncer
	healthChecker db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(params Params) (*Service, error) {
	if err := params.ExportConfig.Validate(); err != nil {
		return nil, fmt.Errorf("validate export config: %w", err)
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	reg := params.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return &Service{
		cfg:           params.Config,
		exportCfg:     params.ExportConfig,
		logger:        params.Logger.With(slog.String("service", "http")),
		registry:      reg,
		metrics:       metric.New(reg),
		validator:     v,
		catalogSvc:    params.CatalogSvc,
		feed:          params.Feed,
		healthChecker: params.HealthChecker,
	}, nil
}

// Handler returns the fully wired router.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r, apicontract.GetSpecBytes())
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := s.newHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/catalog", s.wrap(h.LoadCatalog))
		r.Post("/catalog/sync", s.wrap(h.SyncCatalog))

		r.Post("/scans", s.wrap(h.ScanProduct))
		r.Post("/scans/import", s.wrap(h.ImportScans))

		r.Get("/products", s.wrap(h.ListProducts))
		r.Get("/exports/{subset}", s.wrap(h.ExportProducts))
	})

	r.Get("/healthz", s.wrap(h.Health))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

// handlerFunc is an http.HandlerFunc that reports failures instead of
// writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

type handler struct {
	*catalogHandler
	*scanHandler
	*productHandler
	*exportHandler
	*healthHandler
}

func (s *Service) newHandler() *handler {
	return &handler{
		catalogHandler: newCatalogHandler(s.catalogSvc, s.feed, s.validator, s.cfg.MaxUploadBytes),
		scanHandler:    newScanHandler(s.catalogSvc, s.validator, s.cfg.MaxUploadBytes),
		productHandler: newProductHandler(s.catalogSvc, s.cfg.MaxPageSize),
		exportHandler:  newExportHandler(s.catalogSvc, s.exportCfg, s.logger),
		healthHandler:  newHealthHandler(s.healthChecker),
	}
}

// writeJSON encodes v before touching w so an encoding failure can still be
// reported as an error response.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	w.Write(append(body, '\n'))
	return nil
}
