package bus

import (
	"encoding/json"
	"time"

	"carteira/internal/core"
)

// RecordedMessage announces that one transaction was appended to the ledger.
// Consumers use it to invalidate cached views; the full row travels in the
// message so they never have to read the store back.
type RecordedMessage struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"username"`
	Kind        string    `json:"tipo"`
	Amount      string    `json:"valor"`
	Category    string    `json:"categoria"`
	Note        string    `json:"descricao"`
	CreatedAt   time.Time `json:"data_criacao"`
}

func NewRecordedMessage(tx core.Transaction) *RecordedMessage {
	return &RecordedMessage{
		ID:          tx.ID,
		UserID:      tx.UserID,
		DisplayName: tx.DisplayName,
		Kind:        string(tx.Kind),
		Amount:      tx.Amount.String(),
		Category:    tx.Category,
		Note:        tx.Note,
		CreatedAt:   tx.CreatedAt,
	}
}

func (m *RecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordedMessageFromJSON(data []byte) (*RecordedMessage, error) {
	var msg RecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
