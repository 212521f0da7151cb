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

	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/internal/gatewayapi"
	"github.com/timele/timele-backend/internal/notifications"
	"github.com/timele/timele-backend/internal/orders"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/config"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/email"
	"github.com/timele/timele-backend/pkg/logger"
	"github.com/timele/timele-backend/pkg/metrics"
	"github.com/timele/timele-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	// No traffic before the schema and catalog are in place.
	if err := migrate.Prepare(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to prepare database", err)
		os.Exit(1)
	}

	loader, err := catalog.NewLoader(dbClient, logg, cfg.Catalog.CSVDir)
	if err != nil {
		logg.Error(ctx, "failed to create catalog loader", err)
		os.Exit(1)
	}
	if err := loader.Run(ctx); err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		os.Exit(1)
	}

	conn := dbClient.DB()

	usersSvc, err := users.NewService(users.NewRepository(conn), cfg.Password, nil)
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}
	cartSvc, err := cart.NewService(dbClient, cart.NewRepository(conn), catalogSvc, nil)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(dbClient, orders.NewRepository(conn), cart.NewRepository(conn), catalogSvc, nil)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}
	notifSvc, err := notifications.NewService(notifications.NewRepository(conn), nil)
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}

	router, err := gatewayapi.NewRouter(gatewayapi.RouterParams{
		Logger:        logg,
		Client:        dbClient,
		Users:         usersSvc,
		Catalog:       catalogSvc,
		Cart:          cartSvc,
		Orders:        ordersSvc,
		Notifications: notifSvc,
	})
	if err != nil {
		logg.Error(ctx, "failed to build router", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logg.Error(ctx, "failed to bind listener", err)
		os.Exit(1)
	}
	server := &http.Server{Handler: router}

	// The reminder loop only starts once the listener accepts traffic.
	if cfg.Scheduler.Enabled {
		scheduler, err := notifications.NewScheduler(notifications.SchedulerParams{
			Logger:  logg,
			Client:  dbClient,
			Repo:    notifications.NewRepository(conn),
			Sender:  email.NewSender(cfg.SMTP, logg),
			Metrics: metrics.NewJobMetrics(prometheus.DefaultRegisterer),
			Config:  cfg.Scheduler,
		})
		if err != nil {
			logg.Error(ctx, "failed to create scheduler", err)
			os.Exit(1)
		}
		go func() {
			if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "scheduler stopped unexpectedly", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error during shutdown", err)
		}
	}()

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting gateway server")

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(startCtx, "gateway server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(startCtx, "gateway shutting down gracefully")
}
