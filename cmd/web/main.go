package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/CAFxX/httpcompression"

	"tastybites-dashboard/internal/config"
	"tastybites-dashboard/internal/dataset"
	"tastybites-dashboard/internal/middleware"
	"tastybites-dashboard/internal/observability"
	"tastybites-dashboard/internal/server"
	"tastybites-dashboard/internal/services"
	"tastybites-dashboard/internal/ui/templates"
)

const (
	renderTimeout    = 10 * time.Second
	bootstrapTimeout = 5 * time.Minute
	facetTimeout     = 5 * time.Minute
	cacheMaxAge      = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"dataset", cfg.Dataset.Path,
	)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), bootstrapTimeout)
	if err := dataset.Bootstrap(bootstrapCtx, cfg.Dataset, logger); err != nil {
		cancelBootstrap()
		logger.Error("dataset bootstrap failed", "error", err)
		os.Exit(1)
	}
	cancelBootstrap()

	loader := dataset.NewLoader(cfg.Dataset.Path, logger)
	if err := loader.Verify(); err != nil {
		logger.Error("dataset verification failed", "error", err)
		os.Exit(1)
	}

	facets := services.NewFacetService(loader, cfg.Pipeline.SampleFraction, cfg.Pipeline.SampleSeed, logger)
	filter := services.NewFilterEngine(loader, cfg.Pipeline.CityPartitions, logger)
	forecaster := services.NewForecaster(cfg.Pipeline.HorizonDays, cfg.Pipeline.MaxForecastWorkers, logger)
	projections := services.NewProjectionService(facets, filter, forecaster, cfg.Pipeline, logger)

	// Filter widgets cannot render without facets, so warm the index before
	// accepting traffic.
	facetCtx, cancelFacets := context.WithTimeout(context.Background(), facetTimeout)
	start := time.Now()
	if _, err := facets.Index(facetCtx); err != nil {
		cancelFacets()
		logger.Error("facet index computation failed", "error", err)
		os.Exit(1)
	}
	cancelFacets()
	logger.Info("facet index ready", "duration", time.Since(start))

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(facets, projections, loader, logger, templateHandlers)

	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		logger.Error("failed to build compression adapter", "error", err)
		os.Exit(1)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Middleware(compress),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down projection service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
