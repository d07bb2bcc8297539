package model

import (
	"encoding/json"
	"time"
)

// SourceTransaction is a transaction parsed from an external source, such as
// a bank statement or an email receipt. It is never persisted by the match
// engine; it only exists for the duration of a matching request.
type SourceTransaction struct {
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Date        time.Time `json:"date"`
	Vendor      string    `json:"vendor"`
	Description string    `json:"description,omitempty"`
}

// TargetTransaction is a candidate transaction from the ledger that a source
// transaction is compared against.
type TargetTransaction struct {
	TargetID    string    `json:"id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Date        time.Time `json:"date"`
	Vendor      string    `json:"vendor"`
	Description string    `json:"description,omitempty"`
}

func (t *SourceTransaction) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

func (t *TargetTransaction) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}
