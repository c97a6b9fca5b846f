// Package router decides whether a user message may be answered at all,
// and with what context, before delegating text generation to an external
// model. It is the only component with a refusal path: a half-formed
// financial claim is worse than no answer, so any failure to produce
// grounded text collapses into a refusal.
package router

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/analysis"
	"github.com/dvloznov/finance-assistant/internal/classifier"
	"github.com/dvloznov/finance-assistant/internal/domain"
)

// Generator is the external text-generation capability. Implementations
// may be slow or unreliable; the router never depends on their behavior
// beyond "returns text or fails".
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ResultKind tells the transport layer how a message was handled.
type ResultKind string

const (
	// ResultGrounded means the generator answered with a numeric summary
	// and a recent-transaction excerpt as context.
	ResultGrounded ResultKind = "grounded"
	// ResultUngrounded means the generator answered with no transaction
	// context (general financial advice).
	ResultUngrounded ResultKind = "ungrounded"
	// ResultRefused means no answer was produced. This covers both
	// missing grounding data and generator failure; the two are not
	// distinguished to the caller.
	ResultRefused ResultKind = "refused"
)

// Result is the outcome of routing a single message.
type Result struct {
	Kind ResultKind `json:"kind"`
	Text string     `json:"text,omitempty"`
}

// excerptSize is how many trailing transactions accompany a grounded prompt.
const excerptSize = 10

// Router orchestrates classify -> gate -> build context -> generate.
// It is stateless per call and safe for concurrent use.
type Router struct {
	classifier *classifier.Classifier
	analyzer   *analysis.Analyzer
	generator  Generator
	log        zerolog.Logger
}

// New creates a Router.
func New(cls *classifier.Classifier, analyzer *analysis.Analyzer, gen Generator, log zerolog.Logger) *Router {
	return &Router{
		classifier: cls,
		analyzer:   analyzer,
		generator:  gen,
		log:        log,
	}
}

// Route answers message given the user's transactions, or refuses.
// Grounding decisions:
//   - message needs no grounding: the generator is asked for general
//     advice; failure maps to a refusal.
//   - message needs grounding and no transactions were supplied: refused
//     without ever invoking the generator.
//   - otherwise: the generator is invoked with a week summary plus the
//     most recent transactions, and its text is returned as grounded.
//
// Context cancellation is treated identically to generator failure.
func (r *Router) Route(ctx context.Context, message string, txs []domain.Transaction) Result {
	if !r.classifier.RequiresGrounding(message) {
		text, err := r.generator.Generate(ctx, buildAdvicePrompt(message))
		if err != nil {
			r.log.Warn().Err(err).Msg("Generator failed on ungrounded message")
			return Result{Kind: ResultRefused}
		}
		return Result{Kind: ResultUngrounded, Text: text}
	}

	if len(txs) == 0 {
		r.log.Warn().Msg("Grounding required but no transaction data supplied")
		return Result{Kind: ResultRefused}
	}

	summary := r.analyzer.Analyze(txs, analysis.PeriodWeek)
	excerpt := tail(txs, excerptSize)

	text, err := r.generator.Generate(ctx, buildGroundedPrompt(message, summary, excerpt))
	if err != nil {
		r.log.Warn().Err(err).Int("transactions", len(txs)).Msg("Generator failed on grounded message")
		return Result{Kind: ResultRefused}
	}
	return Result{Kind: ResultGrounded, Text: text}
}

// tail returns the last n elements of txs without copying the backing array.
func tail(txs []domain.Transaction, n int) []domain.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[len(txs)-n:]
}
