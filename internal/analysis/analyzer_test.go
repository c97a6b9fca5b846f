package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		want  Period
	}{
		{"day", PeriodDay},
		{"week", PeriodWeek},
		{"month", PeriodMonth},
		{"year", PeriodYear},
		{"", PeriodWeek},
		{"quarter", PeriodWeek},
		{"WEEK", PeriodWeek},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParsePeriod(tt.input); got != tt.want {
				t.Errorf("ParsePeriod(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAnalyze_EndToEndScenario(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{Timestamp: t0, Amount: -50, Name: "Bob"},
		{Timestamp: t0.Add(time.Hour), Amount: 200, Name: "Alice"},
	}

	a := NewAnalyzerWithClock(fixedClock(t0.Add(2 * time.Hour)))
	got := a.Analyze(txs, PeriodWeek)

	if got.TotalSpent != 50 {
		t.Errorf("TotalSpent = %v, want 50", got.TotalSpent)
	}
	if got.TotalReceived != 200 {
		t.Errorf("TotalReceived = %v, want 200", got.TotalReceived)
	}
	if got.NetAmount != 150 {
		t.Errorf("NetAmount = %v, want 150", got.NetAmount)
	}
	if got.TransactionCount != 2 {
		t.Errorf("TransactionCount = %d, want 2", got.TransactionCount)
	}
	if len(got.TopSenders) != 1 || got.TopSenders[0].Name != "Alice" || got.TopSenders[0].Amount != 200 || got.TopSenders[0].Count != 1 {
		t.Errorf("TopSenders = %+v, want [{Alice 200 1}]", got.TopSenders)
	}
	if len(got.TopReceivers) != 1 || got.TopReceivers[0].Name != "Bob" || got.TopReceivers[0].Amount != 50 || got.TopReceivers[0].Count != 1 {
		t.Errorf("TopReceivers = %+v, want [{Bob 50 1}]", got.TopReceivers)
	}
}

func TestAnalyze_WindowBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -7)

	txs := []domain.Transaction{
		{Timestamp: start, Amount: -10, Name: "exactly-at-start"},
		{Timestamp: start.Add(time.Nanosecond), Amount: -10, Name: "just-inside"},
		{Timestamp: start.Add(-time.Nanosecond), Amount: -10, Name: "just-outside"},
	}

	a := NewAnalyzerWithClock(fixedClock(now))
	got := a.Analyze(txs, PeriodWeek)

	if got.TransactionCount != 1 {
		t.Fatalf("TransactionCount = %d, want 1", got.TransactionCount)
	}
	if got.TopReceivers[0].Name != "just-inside" {
		t.Errorf("windowed transaction = %q, want just-inside", got.TopReceivers[0].Name)
	}
}

func TestAnalyze_PerPeriodLookback(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	txs := []domain.Transaction{
		{Timestamp: now.Add(-2 * time.Hour), Amount: -1, Name: "today"},
		{Timestamp: now.AddDate(0, 0, -3), Amount: -1, Name: "this-week"},
		{Timestamp: now.AddDate(0, 0, -20), Amount: -1, Name: "this-month"},
		{Timestamp: now.AddDate(0, -6, 0), Amount: -1, Name: "this-year"},
		{Timestamp: now.AddDate(-2, 0, 0), Amount: -1, Name: "ancient"},
	}

	tests := []struct {
		period    Period
		wantCount int
	}{
		{PeriodDay, 1},
		{PeriodWeek, 2},
		{PeriodMonth, 3},
		{PeriodYear, 4},
	}

	a := NewAnalyzerWithClock(fixedClock(now))
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got := a.Analyze(txs, tt.period)
			if got.TransactionCount != tt.wantCount {
				t.Errorf("TransactionCount = %d, want %d", got.TransactionCount, tt.wantCount)
			}
		})
	}
}

func TestAnalyze_EmptyInputYieldsZeroSummary(t *testing.T) {
	a := NewAnalyzerWithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	got := a.Analyze(nil, PeriodMonth)

	if got.TotalSpent != 0 || got.TotalReceived != 0 || got.NetAmount != 0 || got.TransactionCount != 0 {
		t.Errorf("expected zero totals, got %+v", got)
	}
	if len(got.TopSenders) != 0 || len(got.TopReceivers) != 0 {
		t.Errorf("expected empty rankings, got senders=%v receivers=%v", got.TopSenders, got.TopReceivers)
	}
}

func TestAnalyze_Invariants(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{Timestamp: now.Add(-time.Hour), Amount: -33.5, Name: "a"},
		{Timestamp: now.Add(-2 * time.Hour), Amount: 12, Name: "b"},
		{Timestamp: now.Add(-3 * time.Hour), Amount: -7, Name: "c"},
		{Timestamp: now.Add(-4 * time.Hour), Amount: 99.25, Name: "d"},
	}

	a := NewAnalyzerWithClock(fixedClock(now))
	got := a.Analyze(txs, PeriodDay)

	if got.TotalSpent < 0 {
		t.Errorf("TotalSpent = %v, want >= 0", got.TotalSpent)
	}
	if got.TotalReceived < 0 {
		t.Errorf("TotalReceived = %v, want >= 0", got.TotalReceived)
	}
	if got.NetAmount != got.TotalReceived-got.TotalSpent {
		t.Errorf("NetAmount = %v, want %v", got.NetAmount, got.TotalReceived-got.TotalSpent)
	}
}

func TestAnalyze_DeterministicForFixedClock(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{Timestamp: now.Add(-time.Hour), Amount: -50, Name: "Bob"},
		{Timestamp: now.Add(-2 * time.Hour), Amount: 200, Name: "Alice"},
		{Timestamp: now.Add(-3 * time.Hour), Amount: -12.40, Name: "Cafe"},
	}

	a := NewAnalyzerWithClock(fixedClock(now))

	first, err := json.Marshal(a.Analyze(txs, PeriodWeek))
	if err != nil {
		t.Fatalf("marshal first summary: %v", err)
	}
	second, err := json.Marshal(a.Analyze(txs, PeriodWeek))
	if err != nil {
		t.Fatalf("marshal second summary: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("summaries differ:\n%s\n%s", first, second)
	}
}
