// Command carteira runs the Telegram bot and the web dashboard in a single
// process, sharing one store. Useful for small deployments where both fit on
// one host.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"carteira/internal/backend"
	"carteira/internal/bot"
	"carteira/internal/bus"
	"carteira/internal/config"
	apphttp "carteira/internal/http"
	applog "carteira/internal/log"
	"carteira/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		applog.Setup("info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := applog.Setup(cfg.Logging.Level)

	if err := cfg.ValidateTelegram(); err != nil {
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

	// Both halves share the store in-process, so the dashboard sees new
	// transactions without the event bus. The bus still gets wired when
	// configured, keeping behavior identical to the split deployment.
	var events service.EventPublisher
	srv := apphttp.NewServer(":"+cfg.Dashboard.Port, cfg.Dashboard.Title, store,
		cfg.Dashboard.CacheTTL, applog.WithComponent(logger, "http"))

	if cfg.EventBusEnabled() {
		client, err := bus.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			logger.Error("failed to connect event bus", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("event bus connected", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("failed to connect to Telegram", "error", err)
		os.Exit(1)
	}
	logger.Info("authorized on Telegram", "account", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.Telegram.Timeout
	updates := api.GetUpdatesChan(u)

	categories := service.NewCategories(cfg.Categories.Receitas, cfg.Categories.Gastos)
	recorder := service.NewRecorder(store, categories, events)
	reporter := service.NewReporter(store)
	b := bot.New(api, updates, recorder, reporter, categories, store,
		cfg.Bot.StatementLimit, applog.WithComponent(logger, "bot"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.Consume(gctx)
		api.StopReceivingUpdates()
		return nil
	})

	g.Go(func() error {
		logger.Info("starting dashboard", "port", cfg.Dashboard.Port, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped gracefully")
}
