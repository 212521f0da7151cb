package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/timele/timele-backend/api/routes"
	"github.com/timele/timele-backend/internal/gatewayclient"
	"github.com/timele/timele-backend/internal/recs"
	"github.com/timele/timele-backend/pkg/config"
	"github.com/timele/timele-backend/pkg/logger"
	"github.com/timele/timele-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "edge"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "edge",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := gatewayclient.New(cfg.Edge.GatewayURL, cfg.Edge.GatewayTimeout, logg)
	if err != nil {
		logg.Error(ctx, "failed to create gateway client", err)
		os.Exit(1)
	}

	// No traffic until the gateway answers its health probe.
	if err := waitForGateway(ctx, logg, gateway, cfg.Edge); err != nil {
		logg.Error(ctx, "gateway never became healthy", err)
		os.Exit(1)
	}

	var cache recs.Cache
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		cache = recs.NewRedisCache(redisClient.Raw())
	}

	recommender, err := recs.New(cfg.Edge.RecommenderURL, cfg.Edge.RecommenderTimeout, cfg.Edge.PredictionCacheTTL, cache, logg)
	if err != nil {
		logg.Error(ctx, "failed to create recommender client", err)
		os.Exit(1)
	}

	router, err := routes.NewRouter(routes.RouterParams{
		Logger:         logg,
		Gateway:        gateway,
		Recommender:    recommender,
		AllowedOrigins: cfg.Edge.AllowedOrigins,
	})
	if err != nil {
		logg.Error(ctx, "failed to build router", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error during shutdown", err)
		}
	}()

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"gateway": cfg.Edge.GatewayURL,
	})
	logg.Info(startCtx, "starting edge server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(startCtx, "edge server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(startCtx, "edge shutting down gracefully")
}

func waitForGateway(ctx context.Context, logg *logger.Logger, gateway *gatewayclient.Client, cfg config.EdgeConfig) error {
	deadline := time.Now().Add(cfg.StartupProbeWindow)
	ticker := time.NewTicker(cfg.StartupProbePeriod)
	defer ticker.Stop()

	for {
		if err := gateway.Health(ctx); err == nil {
			logg.Info(ctx, "gateway health probe succeeded")
			return nil
		} else {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "gateway not ready yet")
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("gateway unhealthy after %s", cfg.StartupProbeWindow)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
