package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
	"carteira/internal/ledger"
)

// Reporter computes derived views over the store's current snapshot. It holds
// no state of its own.
type Reporter struct {
	store ledger.Store
}

func NewReporter(store ledger.Store) *Reporter {
	return &Reporter{store: store}
}

// Summarize totals a user's transactions. A user with no rows gets the zero
// summary, not an error, so callers can render a zero state uniformly.
func (r *Reporter) Summarize(ctx context.Context, userID int64) (core.Summary, error) {
	rows, err := r.store.ReadFor(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	s := core.ZeroSummary()
	for _, tx := range rows {
		switch tx.Kind {
		case core.KindIncome:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case core.KindExpense:
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s, nil
}

// Statement returns a user's transactions newest first, truncated to limit
// when limit > 0. Equal timestamps are ordered by descending ID so the result
// is deterministic.
func (r *Reporter) Statement(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.store.ReadFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// BreakdownByCategory sums amounts per category for one kind. Categories with
// no matching transactions are absent from the result.
func (r *Reporter) BreakdownByCategory(ctx context.Context, userID int64, kind core.Kind) (map[string]decimal.Decimal, error) {
	rows, err := r.store.ReadFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal)
	for _, tx := range rows {
		if tx.Kind != kind {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}
	return out, nil
}

// SortNewestFirst orders transactions by created_at descending, ties broken
// by descending ID.
func SortNewestFirst(rows []core.Transaction) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}
