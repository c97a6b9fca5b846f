// Package bigquery is the BigQuery-backed transaction source. The engine
// never talks to it directly; the transport layer uses it to fetch the
// grounding data a routed message needs.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

const transactionsTable = "transactions"

// TransactionSource supplies a user's transactions to the transport layer.
type TransactionSource interface {
	// ListUserTransactions returns the user's transactions booked after
	// since, oldest first.
	ListUserTransactions(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error)

	// Close releases the underlying client.
	Close() error
}

// BigQueryTransactionSource is the concrete TransactionSource backed by a
// shared BigQuery client.
type BigQueryTransactionSource struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryTransactionSource creates a source reading from
// projectID.dataset.transactions.
func NewBigQueryTransactionSource(ctx context.Context, projectID, dataset string) (*BigQueryTransactionSource, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryTransactionSource: creating client: %w", err)
	}
	return &BigQueryTransactionSource{
		client:  client,
		dataset: dataset,
	}, nil
}

// Close closes the BigQuery client connection.
func (s *BigQueryTransactionSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ListUserTransactions implements the TransactionSource interface.
func (s *BigQueryTransactionSource) ListUserTransactions(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.user_id,
			t.transaction_date,
			t.booking_ts,
			t.amount,
			t.currency,
			t.counterparty,
			t.raw_description,
			t.created_ts
		FROM %s.%s t
		WHERE t.user_id = @user_id
		  AND t.booking_ts > @since
		ORDER BY t.booking_ts, t.created_ts
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "since", Value: since},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUserTransactions: query read: %w", err)
	}

	var txs []domain.Transaction
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListUserTransactions: iter next: %w", err)
		}
		txs = append(txs, r.ToDomain())
	}

	return txs, nil
}

// Ensure the implementation satisfies the interface.
var _ TransactionSource = (*BigQueryTransactionSource)(nil)
