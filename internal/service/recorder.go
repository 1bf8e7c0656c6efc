// Package service holds the ledger's application services: recording
// transactions and computing derived views.
package service

import (
	"context"
	"log/slog"
	"strings"

	"carteira/internal/core"
	"carteira/internal/ledger"
)

// EventPublisher notifies other processes that a transaction was recorded.
// Optional; a nil publisher disables notification.
type EventPublisher interface {
	PublishRecorded(ctx context.Context, tx core.Transaction) error
}

// Recorder is the single write path into the ledger. Amount and category are
// validated here, before the store ever sees the record.
type Recorder struct {
	store      ledger.Store
	categories *Categories
	events     EventPublisher
}

func NewRecorder(store ledger.Store, categories *Categories, events EventPublisher) *Recorder {
	return &Recorder{
		store:      store,
		categories: categories,
		events:     events,
	}
}

// Record parses and validates the raw user input, then appends.
// Category defaults to "outros" when empty and is stored lowercased.
func (r *Recorder) Record(ctx context.Context, userID int64, displayName string, kind core.Kind, rawAmount, category, note string) (core.Transaction, error) {
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return core.Transaction{}, err
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = "outros"
	}
	if err := r.categories.Validate(kind, category); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.store.Append(ctx, ledger.Record{
		UserID:      userID,
		DisplayName: displayName,
		Kind:        kind,
		Amount:      amount,
		Category:    category,
		Note:        strings.TrimSpace(note),
	})
	if err != nil {
		return core.Transaction{}, err
	}

	if r.events != nil {
		if err := r.events.PublishRecorded(ctx, tx); err != nil {
			// Notification is best effort; the append already succeeded.
			slog.ErrorContext(ctx, "publish recorded event failed", "id", tx.ID, "error", err)
		}
	}
	return tx, nil
}
