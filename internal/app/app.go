package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"logview/internal/config"
	"logview/internal/crossfile"
	apierrors "logview/internal/errors"
	"logview/internal/infrastructure"
	customMiddleware "logview/internal/middleware"
	"logview/internal/operations"
	"logview/internal/services"
	"logview/internal/tabular"
	handlers "logview/internal/transport/http"
	"logview/internal/validation"
)

const AppName = "logview"

// maxFilesPerRun bounds a run request at this many maximum-size uploads.
const maxFilesPerRun = 50

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Registry      *operations.Registry
	Reference     *crossfile.ReferenceStore
	RunService    *services.RunService
	HealthService *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler

	listener net.Listener
}

// New loads the configuration, sets up the global logger and builds the
// application.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return NewApplication(cfg, logger)
}

// NewApplication wires every service and handler from cfg.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}
	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices registers the transformations and builds the services
// the handlers call.
func (a *Application) initializeServices() error {
	reader := tabular.NewReader(a.Logger)
	a.Reference = crossfile.NewReferenceStore(a.Paths.ReferenceFile, reader, a.Logger)
	a.Reference.OnChange(func(path string) {
		a.Logger.Info("package reference changed", slog.String("path", path))
	})

	a.Registry = operations.NewRegistry()
	err := operations.RegisterDefaults(a.Registry, operations.Defaults{
		Pipeline:  a.Config.Pipeline,
		Reference: a.Reference,
		Tracer:    operations.NewTracer(a.OTelProviders.Tracer, a.Metrics),
		Logger:    a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to register transformations: %w", err)
	}

	validator := validation.NewFileValidator(a.Config.Upload, a.Logger)
	a.RunService = services.NewRunService(a.Registry, a.Paths, validator, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, a.Paths, a.Registry, validator, a.Logger)

	a.Logger.Info("transformations registered", slog.Any("ids", a.Registry.ListIDs()))
	return nil
}

// setupRouter configures the middleware stack and every route.
// Ordering: RequestID, RealIP, OTel, Logger, Recoverer, then the rest.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.DefaultSecureHeaders().Handler)
	r.Use(customMiddleware.AuditLog(a.Logger))
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	validator := customMiddleware.NewRequestValidator(a.Logger)
	maxRequestBytes := a.Config.Upload.MaxBytes * maxFilesPerRun

	pages := handlers.NewPagesHandler(a.RunService, validator, a.ErrorHandler, maxRequestBytes, config.AppVersion, a.Logger)
	downloads := handlers.NewDownloadHandler(a.RunService, validator, a.ErrorHandler, a.Logger)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout))
		r.Get("/", pages.Index)
		r.Get("/result/{id}", pages.Latest)
		r.Get("/download/{id}/{filename}", downloads.Download)
	})
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RunTimeout))
		r.Post("/run", pages.Run)
	})

	a.setupAPIRoutes(r, validator, maxRequestBytes)

	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router, validator *customMiddleware.RequestValidator, maxRequestBytes int64) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		health := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout))
			r.Mount("/health", health.Routes())
			r.Get("/version", health.Version)
			r.With(customMiddleware.ContentTypeValidator("application/json")).
				Post("/client-logs", handlers.NewClientLogHandler(validator, a.Logger).Handle)
		})

		// Runs get the longer timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RunTimeout))
			functions := handlers.NewFunctionsHandler(a.RunService, validator, a.ErrorHandler, maxRequestBytes, a.Logger)
			r.Mount("/functions", functions.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the reference watcher and the HTTP server. A serve failure
// after Start returns calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	if a.Config.Paths.WatchReference {
		if err := os.MkdirAll(filepath.Dir(a.Paths.ReferenceFile), 0o755); err != nil {
			return fmt.Errorf("failed to create reference directory: %w", err)
		}
		if err := a.Reference.Start(ctx); err != nil {
			a.Logger.WarnContext(ctx, "package reference is not watched",
				slog.String("error", err.Error()))
		}
	}

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	status := a.HealthService.ReadinessCheck(ctx)
	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", "http://"+ln.Addr().String()),
		slog.String("readiness", status.Status))
	return nil
}

// Addr is the bound listen address once Start has returned.
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Reference.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("reference watcher: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, stop); err != nil {
		return err
	}
	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+time.Second)
	defer cancel()
	return a.Stop(stopCtx)
}
