package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carteira/internal/backend"
	"carteira/internal/bus"
	"carteira/internal/config"
	apphttp "carteira/internal/http"
	applog "carteira/internal/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		applog.Setup("info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := applog.Setup(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("storage cleanup failed", "error", err)
		}
	}()

	if err := store.Initialize(ctx); err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Dashboard.Port, cfg.Dashboard.Title, store,
		cfg.Dashboard.CacheTTL, applog.WithComponent(logger, "http"))

	if cfg.EventBusEnabled() {
		client, err := bus.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			logger.Error("failed to connect event bus", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		go func() {
			err := client.ConsumeRecorded(ctx, func(msg *bus.RecordedMessage) error {
				srv.InvalidateSnapshot()
				return nil
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("event bus consumer stopped", "error", err)
			}
		}()
		logger.Info("event bus connected", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting dashboard", "port", cfg.Dashboard.Port, "backend", cfg.Storage.Backend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("dashboard stopped gracefully")
}
