package bus

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"carteira/internal/core"
)

func TestRecordedMessageRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := core.Transaction{
		ID:          7,
		UserID:      42,
		DisplayName: "joao",
		Kind:        core.KindExpense,
		Amount:      decimal.RequireFromString("50.00"),
		Category:    "alimentacao",
		Note:        "almoco",
		CreatedAt:   created,
	}

	body, err := NewRecordedMessage(tx).ToJSON()
	require.NoError(t, err)

	msg, err := RecordedMessageFromJSON(body)
	require.NoError(t, err)
	require.Equal(t, int64(7), msg.ID)
	require.Equal(t, int64(42), msg.UserID)
	require.Equal(t, "joao", msg.DisplayName)
	require.Equal(t, "gasto", msg.Kind)
	require.Equal(t, "50", msg.Amount)
	require.Equal(t, "alimentacao", msg.Category)
	require.Equal(t, "almoco", msg.Note)
	require.True(t, msg.CreatedAt.Equal(created))
}

func TestRecordedMessageFromInvalidJSON(t *testing.T) {
	_, err := RecordedMessageFromJSON([]byte(`{"id": "not_a_number"}`))
	require.Error(t, err)
}
