package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/quotedesk-backend/api/controllers"
	"github.com/angelmondragon/quotedesk-backend/api/routes"
	"github.com/angelmondragon/quotedesk-backend/internal/auth"
	"github.com/angelmondragon/quotedesk-backend/internal/clients"
	"github.com/angelmondragon/quotedesk-backend/internal/quotes"
	"github.com/angelmondragon/quotedesk-backend/internal/users"
	"github.com/angelmondragon/quotedesk-backend/pkg/auth/session"
	"github.com/angelmondragon/quotedesk-backend/pkg/config"
	"github.com/angelmondragon/quotedesk-backend/pkg/db"
	"github.com/angelmondragon/quotedesk-backend/pkg/logger"
	"github.com/angelmondragon/quotedesk-backend/pkg/metrics"
	"github.com/angelmondragon/quotedesk-backend/pkg/pdf"
	"github.com/angelmondragon/quotedesk-backend/pkg/redis"
	"github.com/angelmondragon/quotedesk-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			logg.Error(context.Background(), "error releasing resources", errs)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	closers = append(closers, dbClient.Close)

	health := map[string]controllers.Pinger{"db": dbClient, "redis": nil, "storage": nil}

	var sessionCache *redis.Client
	if cfg.Redis.Enabled() {
		sessionCache, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		closers = append(closers, sessionCache.Close)
		health["redis"] = sessionCache
	}

	var uploader quotes.Uploader
	if cfg.Storage.Enabled() {
		store, err := storage.New(ctx, cfg.Storage, logg)
		requireResource(ctx, logg, "storage", err)
		uploader = store
		health["storage"] = store
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	quoteMetrics := metrics.NewQuoteMetrics(registry)

	var sessionManager *session.Manager
	if sessionCache != nil {
		sessionManager, err = session.NewManager(dbClient.DB(), sessionCache, cfg.Session, logg)
	} else {
		sessionManager, err = session.NewManager(dbClient.DB(), nil, cfg.Session, logg)
	}
	requireResource(ctx, logg, "session manager", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "auth service", err)

	clientRepo := clients.NewRepository(dbClient.DB())
	clientService, err := clients.NewService(clientRepo)
	requireResource(ctx, logg, "client service", err)

	quoteRepo := quotes.NewRepository(dbClient.DB())
	quoteService, err := quotes.NewService(quoteRepo, dbClient, clientRepo, quoteMetrics, time.Now)
	requireResource(ctx, logg, "quote service", err)

	exporter, err := quotes.NewExporter(quoteRepo, pdf.NewRenderer(cfg.PDF.CompanyName), uploader, quoteMetrics)
	requireResource(ctx, logg, "pdf exporter", err)

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Sessions:    sessionManager,
			Auth:        authService,
			Clients:     clientService,
			Quotes:      quoteService,
			Exporter:    exporter,
			Health:      health,
			HTTPMetrics: httpMetrics,
			Gatherer:    registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"session_cache": sessionCache != nil,
		"pdf_uploads":   uploader != nil,
	})
	logg.Info(runCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(runCtx, "graceful shutdown failed", err)
	}
	logg.Info(runCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize resource", err)
	os.Exit(1)
}
