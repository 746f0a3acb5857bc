package events

import (
	"encoding/json"
	"time"

	"ledgerbot/internal/core"
)

// Transaction kinds carried by TransactionEvent.
const (
	KindExpense = "expense"
	KindIncome  = "income"
)

// TransactionEvent announces a freshly written ledger record to anyone
// listening on the fanout exchange. It carries enough to display a feed
// entry; consumers needing full rows read the database themselves.
type TransactionEvent struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Label     string    `json:"label"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(e core.Expense) TransactionEvent {
	return TransactionEvent{
		Kind:      KindExpense,
		ID:        e.ID,
		Date:      e.Date.String(),
		Label:     e.Item,
		Amount:    e.Amount,
		Category:  e.Category,
		Timestamp: time.Now(),
	}
}

func NewIncomeEvent(in core.Income) TransactionEvent {
	return TransactionEvent{
		Kind:      KindIncome,
		ID:        in.ID,
		Date:      in.Date.String(),
		Label:     in.Source,
		Amount:    in.Amount,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (ev TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(ev)
}

// FromJSON creates an event from JSON bytes
func FromJSON(data []byte) (TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return TransactionEvent{}, err
	}
	return ev, nil
}
