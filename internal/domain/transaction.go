package domain

import (
	"time"
)

// Transaction is one monetary movement as supplied by the transport layer.
// Amount > 0 means money received from Name, Amount < 0 means money spent
// to Name. Transactions are never mutated by the engine; every operation
// reads a supplied slice and derives new values.
type Transaction struct {
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"`
	Name      string    `json:"name"`
}

// Incoming reports whether the transaction represents money received.
func (t Transaction) Incoming() bool {
	return t.Amount > 0
}

// Outgoing reports whether the transaction represents money spent.
func (t Transaction) Outgoing() bool {
	return t.Amount < 0
}
