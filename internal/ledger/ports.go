// Package ledger defines the port between the domain and the backing medium.
package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

// ErrUnavailable wraps failures to open, read or write the backing medium.
// A medium that does not exist yet is not unavailable: reads treat it as an
// empty ledger.
var ErrUnavailable = errors.New("ledger storage unavailable")

// Record is the caller-supplied part of a transaction. The store assigns ID
// and CreatedAt on append; callers never choose either.
type Record struct {
	UserID      int64
	DisplayName string
	Kind        core.Kind
	Amount      decimal.Decimal
	Category    string
	Note        string
}

// Store owns the durable transaction table. Records are append-only and
// immutable; there is no update or delete operation.
type Store interface {
	// Initialize creates the backing medium with the empty schema iff it
	// does not exist yet. Calling it on an existing medium is a no-op.
	Initialize(ctx context.Context) error

	// Append persists one record, assigning the next ID (row count + 1)
	// and the creation timestamp, and returns the stored transaction.
	Append(ctx context.Context, rec Record) (core.Transaction, error)

	// ReadAll returns every stored transaction. A missing medium yields an
	// empty result, not an error.
	ReadAll(ctx context.Context) ([]core.Transaction, error)

	// ReadFor returns the transactions of one user. Order is not
	// guaranteed; callers needing order must sort.
	ReadFor(ctx context.Context, userID int64) ([]core.Transaction, error)
}
