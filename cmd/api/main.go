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

	"github.com/jvales/shopstate/api/routes"
	"github.com/jvales/shopstate/internal/activity"
	"github.com/jvales/shopstate/internal/auth"
	"github.com/jvales/shopstate/internal/cart"
	"github.com/jvales/shopstate/internal/catalog"
	"github.com/jvales/shopstate/internal/orders"
	"github.com/jvales/shopstate/internal/reviews"
	"github.com/jvales/shopstate/internal/wishlist"
	"github.com/jvales/shopstate/pkg/config"
	"github.com/jvales/shopstate/pkg/events"
	"github.com/jvales/shopstate/pkg/kv"
	"github.com/jvales/shopstate/pkg/logger"
	"github.com/jvales/shopstate/pkg/metrics"
	"github.com/jvales/shopstate/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "shopstate"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopstate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	store, err := kv.Open(ctx, cfg.Store, logg)
	if err != nil {
		logg.Error(ctx, "failed to open key-value store", err)
		os.Exit(1)
	}

	var cache *redis.Client
	if cfg.Redis.Enabled() {
		cache, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Info(ctx, "redis not configured, catalog cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	fetchMetrics := metrics.NewFetchMetrics(registry)

	hub := events.NewHub()
	hub.Subscribe(func(e events.Event) {
		evCtx := logg.WithFields(context.Background(), map[string]any{
			"event":      string(e.Kind),
			"product_id": e.ProductID,
		})
		logg.Info(evCtx, e.Message)
	})

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{
		Config:  cfg.Catalog,
		Logger:  logg,
		Cache:   cacheOrNil(cache),
		Metrics: fetchMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	cartSvc, err := cart.NewService(ctx, cart.ServiceParams{Store: store, Hub: hub, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistSvc, err := wishlist.NewService(ctx, wishlist.ServiceParams{Store: store, Hub: hub, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create wishlist service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(ctx, orders.ServiceParams{Store: store, Hub: hub, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create order service", err)
		os.Exit(1)
	}

	authSvc, err := auth.NewService(ctx, auth.ServiceParams{
		Store:    store,
		Logger:   logg,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	reviewsSvc, err := reviews.NewService(reviews.ServiceParams{Store: store, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create review service", err)
		os.Exit(1)
	}

	activitySvc, err := activity.NewService(ctx, activity.ServiceParams{Store: store, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create activity service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Registry:    registry,
		HTTPMetrics: httpMetrics,
		Store:       store,
		Cache:       cache,
		Catalog:     catalogSvc,
		Cart:        cartSvc,
		Wishlist:    wishlistSvc,
		Orders:      ordersSvc,
		Auth:        authSvc,
		Reviews:     reviewsSvc,
		Activity:    activitySvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting shopstate server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logg.Error(startCtx, "server stopped unexpectedly", err)
	case sig := <-stop:
		logg.Info(logg.WithField(startCtx, "signal", sig.String()), "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	if cache != nil {
		closeErr = multierr.Append(closeErr, cache.Close())
	}
	closeErr = multierr.Append(closeErr, store.Close())
	if closeErr != nil {
		logg.Error(startCtx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(startCtx, "shutdown complete")
}

// cacheOrNil keeps a typed nil *redis.Client from becoming a non-nil
// catalog.Cache interface value.
func cacheOrNil(cache *redis.Client) catalog.Cache {
	if cache == nil {
		return nil
	}
	return cache
}
