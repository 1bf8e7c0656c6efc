// Package memory is an in-memory Store used by tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"carteira/internal/core"
	"carteira/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Transaction

	// Now is swappable so tests can control timestamps.
	Now func() time.Time
}

func New() *Store {
	return &Store{Now: time.Now}
}

func (s *Store) Initialize(_ context.Context) error {
	return nil
}

func (s *Store) Append(_ context.Context, rec ledger.Record) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.Transaction{
		ID:          int64(len(s.rows)) + 1,
		UserID:      rec.UserID,
		DisplayName: rec.DisplayName,
		Kind:        rec.Kind,
		Amount:      rec.Amount,
		Category:    rec.Category,
		Note:        rec.Note,
		CreatedAt:   s.Now().UTC(),
	}
	s.rows = append(s.rows, tx)
	return tx, nil
}

func (s *Store) ReadAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *Store) ReadFor(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.rows {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}
