package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// TransactionRow maps one row of the finance.transactions table.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID string `bigquery:"user_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED in schema
	BookingTS       time.Time  `bigquery:"booking_ts"`       // REQUIRED

	Amount   float64 `bigquery:"amount"`   // REQUIRED (signed: IN positive, OUT negative)
	Currency string  `bigquery:"currency"` // REQUIRED STRING

	Counterparty string `bigquery:"counterparty"` // REQUIRED STRING

	RawDescription bigquery.NullString `bigquery:"raw_description"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

// ToDomain converts a stored row to the in-memory transaction shape the
// engine operates on.
func (r *TransactionRow) ToDomain() domain.Transaction {
	return domain.Transaction{
		Timestamp: r.BookingTS,
		Amount:    r.Amount,
		Name:      r.Counterparty,
	}
}
