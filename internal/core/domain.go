package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  Kind = "receita"
	KindExpense Kind = "gasto"
)

type (
	// Kind discriminates income from expense. The string values are the
	// literal ones persisted in the tipo column.
	Kind string

	// Transaction is one immutable ledger row. ID and CreatedAt are
	// assigned by the store on append, never by callers.
	Transaction struct {
		ID          int64
		UserID      int64
		DisplayName string
		Kind        Kind
		Amount      decimal.Decimal
		Category    string
		Note        string
		CreatedAt   time.Time
	}

	// Summary is the derived per-user aggregate: totals and balance.
	Summary struct {
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Balance      decimal.Decimal
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDisplayName = errors.New("empty display name")
)

// InvalidCategoryError reports a category outside the allow-list for a kind.
// Allowed carries the full configured list so callers can show it to the user.
type InvalidCategoryError struct {
	Kind     Kind
	Category string
	Allowed  []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("category %q is not valid for %s (valid: %s)",
		e.Category, e.Kind, strings.Join(e.Allowed, ", "))
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.DisplayName) == "" {
		return ErrEmptyDisplayName
	}
	return nil
}

// ZeroSummary is the summary of a user with no transactions.
func ZeroSummary() Summary {
	return Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
	}
}
