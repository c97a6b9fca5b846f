package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/analysis"
	"github.com/dvloznov/finance-assistant/internal/classifier"
	"github.com/dvloznov/finance-assistant/internal/domain"
)

// stubGenerator records the prompt it was given and returns a canned
// response or error.
type stubGenerator struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.reply, s.err
}

func newTestRouter(gen Generator, now time.Time) *Router {
	return New(
		classifier.New(),
		analysis.NewAnalyzerWithClock(func() time.Time { return now }),
		gen,
		zerolog.Nop(),
	)
}

func weekOfTransactions(now time.Time) []domain.Transaction {
	return []domain.Transaction{
		{Timestamp: now.Add(-48 * time.Hour), Amount: -50, Name: "Bob"},
		{Timestamp: now.Add(-24 * time.Hour), Amount: 200, Name: "Alice"},
	}
}

func TestRoute_GroundingRequiredWithoutDataRefuses(t *testing.T) {
	gen := &stubGenerator{reply: "should never be used"}
	r := newTestRouter(gen, time.Now())

	messages := []string{
		"How much did I spend this month?",
		"what's my balance",
		"show my TRANSACTION history",
	}

	for _, msg := range messages {
		got := r.Route(context.Background(), msg, nil)
		if got.Kind != ResultRefused {
			t.Errorf("Route(%q, no data) = %q, want refused", msg, got.Kind)
		}
		if got.Text != "" {
			t.Errorf("refusal carried text %q, want empty", got.Text)
		}
	}
	if gen.calls != 0 {
		t.Errorf("generator invoked %d times for refused messages, want 0", gen.calls)
	}
}

func TestRoute_GroundedAnswer(t *testing.T) {
	now := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)
	gen := &stubGenerator{reply: "You spent 50.00 this week."}
	r := newTestRouter(gen, now)

	got := r.Route(context.Background(), "how much did I spend?", weekOfTransactions(now))

	if got.Kind != ResultGrounded {
		t.Fatalf("kind = %q, want grounded", got.Kind)
	}
	if got.Text != gen.reply {
		t.Errorf("text = %q, want generator reply", got.Text)
	}
	for _, fragment := range []string{"Total spent: 50.00", "Total received: 200.00", "Alice", "Bob", "Net amount: 150.00"} {
		if !strings.Contains(gen.prompt, fragment) {
			t.Errorf("grounded prompt missing %q:\n%s", fragment, gen.prompt)
		}
	}
}

func TestRoute_UngroundedAnswer(t *testing.T) {
	gen := &stubGenerator{reply: "Track every purchase for a month."}
	r := newTestRouter(gen, time.Now())

	got := r.Route(context.Background(), "Give me a budgeting tip", nil)

	if got.Kind != ResultUngrounded {
		t.Fatalf("kind = %q, want ungrounded", got.Kind)
	}
	if got.Text != gen.reply {
		t.Errorf("text = %q, want generator reply", got.Text)
	}
	if strings.Contains(gen.prompt, "Total spent") {
		t.Errorf("ungrounded prompt leaked numeric context:\n%s", gen.prompt)
	}
}

func TestRoute_GeneratorFailureMapsToRefusal(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		message string
		txs     []domain.Transaction
	}{
		{"grounded path", "how much did I spend?", weekOfTransactions(now)},
		{"ungrounded path", "Give me a budgeting tip", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{err: errors.New("upstream timeout")}
			r := newTestRouter(gen, now)

			got := r.Route(context.Background(), tt.message, tt.txs)
			if got.Kind != ResultRefused {
				t.Errorf("kind = %q, want refused", got.Kind)
			}
			if got.Text != "" {
				t.Errorf("refusal carried partial text %q", got.Text)
			}
		})
	}
}

func TestRoute_CancellationMapsToRefusal(t *testing.T) {
	now := time.Now()
	gen := &stubGenerator{reply: "never delivered"}
	r := newTestRouter(gen, now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := r.Route(ctx, "how much did I spend?", weekOfTransactions(now))
	if got.Kind != ResultRefused {
		t.Errorf("kind = %q, want refused after cancellation", got.Kind)
	}
}

func TestRoute_ExcerptIsChronologicalTail(t *testing.T) {
	now := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

	var txs []domain.Transaction
	for i := 0; i < 15; i++ {
		txs = append(txs, domain.Transaction{
			Timestamp: now.Add(-time.Duration(15-i) * time.Hour),
			Amount:    -1,
			Name:      "merchant-" + string(rune('a'+i)),
		})
	}

	gen := &stubGenerator{reply: "ok"}
	r := newTestRouter(gen, now)
	r.Route(context.Background(), "how much did I spend?", txs)

	// Oldest five transactions must not appear in the excerpt section.
	for i := 0; i < 5; i++ {
		if strings.Contains(gen.prompt, txs[i].Name+"\n") {
			t.Errorf("prompt excerpt contains %q, want only the 10 newest", txs[i].Name)
		}
	}
	if !strings.Contains(gen.prompt, txs[14].Name) {
		t.Errorf("prompt excerpt missing newest transaction %q", txs[14].Name)
	}
}

func TestTail(t *testing.T) {
	txs := make([]domain.Transaction, 3)
	if got := tail(txs, 10); len(got) != 3 {
		t.Errorf("tail(3, 10) length = %d, want 3", len(got))
	}
	txs = make([]domain.Transaction, 25)
	if got := tail(txs, 10); len(got) != 10 {
		t.Errorf("tail(25, 10) length = %d, want 10", len(got))
	}
}
