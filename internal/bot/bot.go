// Package bot is the Telegram front end. It consumes long-poll updates,
// dispatches commands and replies in Portuguese.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"carteira/internal/core"
	"carteira/internal/ledger"
	"carteira/internal/ledger/excel"
	"carteira/internal/service"
)

const commandTimeout = 10 * time.Second

type Bot struct {
	api            *tgbotapi.BotAPI
	updates        tgbotapi.UpdatesChannel
	recorder       *service.Recorder
	reporter       *service.Reporter
	categories     *service.Categories
	store          ledger.Store
	statementLimit int
	logger         *slog.Logger
	now            func() time.Time
}

func New(api *tgbotapi.BotAPI, updates tgbotapi.UpdatesChannel, recorder *service.Recorder,
	reporter *service.Reporter, categories *service.Categories, store ledger.Store,
	statementLimit int, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:            api,
		updates:        updates,
		recorder:       recorder,
		reporter:       reporter,
		categories:     categories,
		store:          store,
		statementLimit: statementLimit,
		logger:         logger,
		now:            time.Now,
	}
}

// Consume processes updates until ctx is cancelled. Non-command messages are
// ignored; commands are handled one at a time, each under its own timeout.
func (b *Bot) Consume(ctx context.Context) {
	b.logger.Info("bot started consuming updates")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopped", "reason", ctx.Err())
			return
		case update, ok := <-b.updates:
			if !ok {
				b.logger.Info("updates channel closed")
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
			b.handleCommand(cmdCtx, update.Message)
			cancel()
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	name := displayName(message.From)

	b.logger.Info("handling command",
		"command", message.Command(),
		"user_id", userID,
		"display_name", name)

	switch message.Command() {
	case "start", "ajuda":
		b.reply(message, renderWelcome(name,
			b.categories.List(core.KindIncome),
			b.categories.List(core.KindExpense)))

	case "receita":
		b.handleEntry(ctx, message, core.KindIncome)

	case "gasto":
		b.handleEntry(ctx, message, core.KindExpense)

	case "saldo":
		b.handleSummary(ctx, message)

	case "extrato":
		b.handleStatement(ctx, message)

	case "categorias":
		b.reply(message, renderCategories(
			b.categories.List(core.KindIncome),
			b.categories.List(core.KindExpense)))

	case "backup":
		b.handleBackup(ctx, message)
	}
}

func (b *Bot) handleEntry(ctx context.Context, message *tgbotapi.Message, kind core.Kind) {
	args, ok := parseEntryArgs(message.CommandArguments())
	if !ok {
		b.reply(message, renderUsage(kind))
		return
	}

	tx, err := b.recorder.Record(ctx, message.From.ID, displayName(message.From),
		kind, args.Amount, args.Category, args.Note)
	if err != nil {
		var invalid *core.InvalidCategoryError
		switch {
		case errors.Is(err, core.ErrInvalidAmount):
			b.reply(message, msgInvalidAmount)
		case errors.As(err, &invalid):
			b.reply(message, renderInvalidCategory(invalid))
		default:
			b.logger.Error("record failed", "error", err, "user_id", message.From.ID)
			b.reply(message, msgInternalError)
		}
		return
	}

	b.reply(message, renderRecorded(tx))
}

func (b *Bot) handleSummary(ctx context.Context, message *tgbotapi.Message) {
	summary, err := b.reporter.Summarize(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("summarize failed", "error", err, "user_id", message.From.ID)
		b.reply(message, "❌ Erro ao consultar saldo.")
		return
	}
	b.reply(message, renderSummary(displayName(message.From), summary, b.now()))
}

func (b *Bot) handleStatement(ctx context.Context, message *tgbotapi.Message) {
	rows, err := b.reporter.Statement(ctx, message.From.ID, b.statementLimit)
	if err != nil {
		b.logger.Error("statement failed", "error", err, "user_id", message.From.ID)
		b.reply(message, "❌ Erro ao consultar extrato.")
		return
	}
	if len(rows) == 0 {
		b.reply(message, msgEmptyStatement)
		return
	}
	b.reply(message, renderStatement(rows))
}

func (b *Bot) handleBackup(ctx context.Context, message *tgbotapi.Message) {
	rows, err := b.store.ReadFor(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("backup read failed", "error", err, "user_id", message.From.ID)
		b.reply(message, "❌ Erro ao gerar backup.")
		return
	}
	if len(rows) == 0 {
		b.reply(message, msgEmptyBackup)
		return
	}

	service.SortNewestFirst(rows)
	data, err := excel.Workbook(excel.BackupSheetName, rows)
	if err != nil {
		b.logger.Error("backup build failed", "error", err, "user_id", message.From.ID)
		b.reply(message, "❌ Erro ao gerar backup.")
		return
	}

	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  excel.BackupFilename(displayName(message.From), b.now()),
		Bytes: data,
	})
	doc.Caption = renderBackupCaption(len(rows))
	doc.ParseMode = tgbotapi.ModeMarkdown
	doc.ReplyToMessageID = message.MessageID

	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("backup send failed", "error", err, "user_id", message.From.ID)
	}
}

func (b *Bot) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = message.MessageID

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message failed", "error", err, "chat_id", message.Chat.ID)
	}
}

// displayName prefers the Telegram username and falls back to the first name.
func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return fmt.Sprintf("user_%d", user.ID)
}
