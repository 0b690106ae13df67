package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/otofix/storefront-backend/api/routes"
	"github.com/otofix/storefront-backend/internal/catalog"
	"github.com/otofix/storefront-backend/internal/checkout"
	"github.com/otofix/storefront-backend/internal/customer"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/internal/tenant"
	"github.com/otofix/storefront-backend/pkg/auth/session"
	"github.com/otofix/storefront-backend/pkg/config"
	"github.com/otofix/storefront-backend/pkg/logger"
	"github.com/otofix/storefront-backend/pkg/metrics"
	"github.com/otofix/storefront-backend/pkg/redis"
	"github.com/otofix/storefront-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	visitorKV, kvCloser, err := openVisitorStorage(cfg, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to open visitor storage", err)
		os.Exit(1)
	}

	erpClient := erp.NewClient(cfg.ERP)
	resolver := tenant.NewResolver(erpClient, redisClient, logg, cfg.ERP)

	catalogSvc, err := catalog.NewService(erpClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
	promotionMetrics := metrics.NewPromotionMetrics(prometheus.DefaultRegisterer)

	refresher, err := checkout.NewRefresher(erpClient, promotionMetrics, logg, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create promotion refresher", err)
		os.Exit(1)
	}
	checkoutSvc, err := checkout.NewService(visitorKV, erpClient, refresher, logg, cfg.Checkout.ClampTotalAtZero)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}
	customerSvc, err := customer.NewService(erpClient, sessionManager, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Redis:          redisClient,
		ERP:            erpClient,
		Resolver:       resolver,
		Catalog:        catalogSvc,
		Checkout:       checkoutSvc,
		Customer:       customerSvc,
		SessionChecker: sessionManager,
		Visitor:        visitorKV,
		HTTPMetrics:    httpMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeErr := multierr.Append(kvCloser(), redisClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error releasing resources", closeErr)
		os.Exit(1)
	}
}

// openVisitorStorage picks the cart/wishlist backend from configuration. The
// returned closer is a no-op for backends without their own connection.
func openVisitorStorage(cfg *config.Config, redisClient *redis.Client) (storage.KV, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case config.StorageDriverSQLite:
		kv, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case config.StorageDriverMemory:
		return storage.NewMemory(), noop, nil
	default:
		return storage.NewRedis(redisClient), noop, nil
	}
}
