package analysis

import (
	"math"
	"time"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// Summary is the read-only result of analyzing a transaction window.
// TotalSpent and TotalReceived are both non-negative; NetAmount is always
// TotalReceived - TotalSpent.
type Summary struct {
	Period           Period                  `json:"period"`
	TotalSpent       float64                 `json:"total_spent"`
	TotalReceived    float64                 `json:"total_received"`
	NetAmount        float64                 `json:"net_amount"`
	TransactionCount int                     `json:"transaction_count"`
	TopSenders       []CounterpartyAggregate `json:"top_senders"`
	TopReceivers     []CounterpartyAggregate `json:"top_receivers"`
}

// Analyzer computes windowed spend/income summaries. The clock is
// injectable so tests can pin "now" and get byte-identical summaries for
// identical inputs.
type Analyzer struct {
	now func() time.Time
}

// NewAnalyzer creates an Analyzer using the wall clock.
func NewAnalyzer() *Analyzer {
	return &Analyzer{now: time.Now}
}

// NewAnalyzerWithClock creates an Analyzer with a custom clock.
func NewAnalyzerWithClock(now func() time.Time) *Analyzer {
	return &Analyzer{now: now}
}

// Analyze filters transactions to the trailing window for period and
// aggregates them. The window is boundary-exclusive: a transaction stamped
// exactly at the window start is not included. Empty or fully filtered
// input yields a zero-valued summary, never an error.
func (a *Analyzer) Analyze(txs []domain.Transaction, period Period) Summary {
	start := period.Start(a.now())

	var windowed []domain.Transaction
	for _, t := range txs {
		if t.Timestamp.After(start) {
			windowed = append(windowed, t)
		}
	}

	summary := Summary{Period: period, TransactionCount: len(windowed)}

	var received, spent []domain.Transaction
	for _, t := range windowed {
		if t.Incoming() {
			summary.TotalReceived += t.Amount
			received = append(received, t)
		} else if t.Outgoing() {
			summary.TotalSpent += math.Abs(t.Amount)
			spent = append(spent, t)
		}
	}
	summary.NetAmount = summary.TotalReceived - summary.TotalSpent
	summary.TopSenders = TopCounterparties(received, TopCounterpartyLimit)
	summary.TopReceivers = TopCounterparties(spent, TopCounterpartyLimit)

	return summary
}
