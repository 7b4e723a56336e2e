package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopicDepositRecorded is the default topic deposit events are written to.
const TopicDepositRecorded = "deposit_recorded"

type DepositRecorded struct {
	EntryID    string          `json:"entry_id"`
	AccountID  string          `json:"account_id"`
	OwnerID    string          `json:"owner_id"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Reference  *string         `json:"reference,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
