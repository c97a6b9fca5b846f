package analysis

import (
	"math"
	"sort"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// TopCounterpartyLimit caps how many counterparties a ranking returns.
const TopCounterpartyLimit = 5

// CounterpartyAggregate is the per-name rollup produced by TopCounterparties.
// Amount is the sum of absolute transaction amounts for that name.
type CounterpartyAggregate struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// TopCounterparties groups transactions by exact counterparty name, sums
// absolute amounts per group, and returns at most limit aggregates sorted
// descending by amount. Ties keep the order in which a name first appeared
// in the input, so the result is deterministic for a given input order.
func TopCounterparties(txs []domain.Transaction, limit int) []CounterpartyAggregate {
	byName := make(map[string]int, len(txs))
	aggregates := make([]CounterpartyAggregate, 0, len(txs))

	for _, t := range txs {
		idx, seen := byName[t.Name]
		if !seen {
			byName[t.Name] = len(aggregates)
			aggregates = append(aggregates, CounterpartyAggregate{Name: t.Name})
			idx = len(aggregates) - 1
		}
		aggregates[idx].Amount += math.Abs(t.Amount)
		aggregates[idx].Count++
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].Amount > aggregates[j].Amount
	})

	if limit >= 0 && len(aggregates) > limit {
		aggregates = aggregates[:limit]
	}
	return aggregates
}
