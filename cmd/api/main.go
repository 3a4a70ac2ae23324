package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/ecofinds-backend/api/routes"
	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/listings"
	"github.com/angelmondragon/ecofinds-backend/internal/purchases"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/db"
	"github.com/angelmondragon/ecofinds-backend/pkg/instance"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
	"github.com/angelmondragon/ecofinds-backend/pkg/migrate"
	"github.com/angelmondragon/ecofinds-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]db.Pinger{}

	var dbClient *db.Client
	if cfg.DB.DSN != "" {
		dbClient, err = db.New(runCtx, cfg.DB, logg)
		if err != nil {
			logg.Error(runCtx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		readiness["db"] = dbClient

		if err := migrate.MaybeRunDev(runCtx, cfg, logg, dbClient); err != nil {
			logg.Error(runCtx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.Cart.UsesRedis() {
		redisClient, err = redis.New(runCtx, cfg.Redis, logg)
		if err != nil {
			logg.Error(runCtx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		readiness["redis"] = redisClient
	}

	persister, err := buildPersister(cfg.Cart, dbClient, redisClient)
	if err != nil {
		logg.Error(runCtx, "failed to select cart backend", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	carts := cart.NewRegistry(cart.Options{
		Persister:    persister,
		WriteTimeout: cfg.Cart.WriteTimeout,
		LoadTimeout:  cfg.Cart.LoadTimeout,
		Logger:       logg,
		Metrics:      metrics.NewCartMetrics(promRegistry),
		IdleTTL:      cfg.Cart.IdleTTL,
	})
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		carts.Run(runCtx, cfg.Cart.SweepInterval)
	}()

	var (
		listingService  listings.Service
		purchaseService purchases.Service
	)
	if dbClient != nil {
		listingService, err = listings.NewService(listings.NewRepository(dbClient.DB()))
		if err != nil {
			logg.Error(runCtx, "failed to create listing service", err)
			os.Exit(1)
		}
		purchaseService, err = purchases.NewService(purchases.NewRepository(dbClient.DB()))
		if err != nil {
			logg.Error(runCtx, "failed to create purchase service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(runCtx, "no database configured, catalog endpoints disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"instance":     instance.GetID(),
		"cart_backend": persister.Name(),
	})
	logg.Info(ctx, "starting api server")

	// request contexts end at shutdown so open cart event streams return
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, promRegistry, readiness, carts, listingService, purchaseService),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelBase)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "http shutdown incomplete", err)
	}
	stop()
	<-sweepDone
	if err := carts.Close(shutdownCtx); err != nil {
		logg.Error(ctx, "cart snapshots not fully flushed", err)
	}
	logg.Info(ctx, "api server stopped")
}
