package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"carteira/internal/backend"
	"carteira/internal/bot"
	"carteira/internal/bus"
	"carteira/internal/config"
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

	var events service.EventPublisher
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
	b.Consume(ctx)

	api.StopReceivingUpdates()
	logger.Info("bot stopped gracefully")
}
