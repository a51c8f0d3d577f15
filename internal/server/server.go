package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	forecaster "github.com/ginilab/go-desforecaster"
	"github.com/ginilab/go-desforecaster/dataset"
	"github.com/ginilab/go-desforecaster/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the dashboard, chart pages and JSON API over the configured workbook
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	cache    *dataset.Cache
	registry *prometheus.Registry
	metrics  *Metrics
	validate *validator.Validate
	pages    *template.Template
}

// New creates a server reading the workbook through cache. If cache is nil a cache loading
// with the configured sheet is created.
func New(cfg *config.Config, logger *slog.Logger, cache *dataset.Cache) (*Server, error) {
	if cache == nil {
		loadOpt := cfg.LoadOptions()
		cache = dataset.NewCache(func(path string) (*dataset.Table, error) {
			return dataset.Load(path, loadOpt)
		})
	}
	pages, err := template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("unable to parse templates, %w", err)
	}

	registry := prometheus.NewRegistry()
	return &Server{
		cfg:      cfg,
		logger:   logger.With("component", "server"),
		cache:    cache,
		registry: registry,
		metrics:  NewMetrics(registry, cache),
		validate: newValidator(),
		pages:    pages,
	}, nil
}

// Preload reads and validates the workbook so a broken data source is reported at startup
func (s *Server) Preload() error {
	raw, err := s.rawTable()
	if err != nil {
		return err
	}
	if _, _, err := dataset.Clean(raw).Gini(); err != nil {
		return fmt.Errorf("unable to read gini series, %w", err)
	}
	s.logger.Info("dataset loaded",
		"path", s.cfg.Data.Path,
		"rows", raw.Len(),
		"columns", raw.Width(),
		"missing", raw.MissingTotal(),
	)
	return nil
}

// Router builds the chi router with every route and middleware
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(StructuredLogger(s.logger, s.metrics))
	r.Use(Recoverer(s.logger))

	r.Get("/", s.handleDashboard)
	r.Get("/reset", s.handleReset)
	r.Get("/preparation", s.handlePreparation)
	r.Get("/chart/forecast", s.handleForecastChart)
	r.Get("/chart/interpolation", s.handleInterpolationChart)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if s.cfg.Server.RateLimit.Enabled {
			r.Use(NewRateLimiter(s.cfg.Server.RateLimit.RPS, s.cfg.Server.RateLimit.Burst, s.logger).Handler)
		}
		r.Get("/data", s.handleData)
		r.Post("/forecast", s.handleForecastAPI)
		r.Get("/preparation", s.handlePreparationAPI)
	})
	return r
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shutdown server, %w", err)
	}
	return nil
}

func (s *Server) rawTable() (*dataset.Table, error) {
	raw, err := s.cache.Get(s.cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to load dataset, %w", err)
	}
	return raw, nil
}

// giniSeries returns the cleaned table along with its year and gini_disp series
func (s *Server) giniSeries() (*dataset.Table, []int, []float64, error) {
	raw, err := s.rawTable()
	if err != nil {
		return nil, nil, nil, err
	}
	clean := dataset.Clean(raw)
	years, y, err := clean.Gini()
	if err != nil {
		return nil, nil, nil, err
	}
	return clean, years, y, nil
}

// runForecast computes a forecast for the request. A panic during the computation is returned
// as a ComputationError carrying the stack.
func (s *Server) runForecast(ctx context.Context, req ForecastRequest) (res *forecaster.Results, err error) {
	start := time.Now()
	defer func() {
		if rvr := recover(); rvr != nil {
			compErr := &ComputationError{Value: rvr, Stack: debug.Stack()}
			s.logger.ErrorContext(ctx, "forecast panicked", "panic", rvr, "stack", string(compErr.Stack))
			res, err = nil, compErr
		}
		s.metrics.observeForecast(start, err)
	}()

	_, years, y, err := s.giniSeries()
	if err != nil {
		return nil, err
	}
	res, err = forecaster.Run(years, y, req.Options())
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "forecast computed",
		"alpha", req.Alpha,
		"horizon", req.Horizon,
		"observations", res.Observations,
		"mape", res.Scores.MAPE,
	)
	return res, nil
}
