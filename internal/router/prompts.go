package router

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finance-assistant/internal/analysis"
	"github.com/dvloznov/finance-assistant/internal/domain"
)

// buildGroundedPrompt assembles the prompt for a question that needs
// numeric grounding: the window summary first, then a recent-transaction
// excerpt, then the user's question with strict anti-fabrication rules.
func buildGroundedPrompt(message string, summary analysis.Summary, excerpt []domain.Transaction) string {
	var b strings.Builder

	b.WriteString("You are a personal financial assistant.\n")
	b.WriteString("Answer the user's question using ONLY the transaction data below.\n\n")

	b.WriteString(fmt.Sprintf("Summary for the last %s:\n", summary.Period))
	b.WriteString(fmt.Sprintf("- Total spent: %.2f\n", summary.TotalSpent))
	b.WriteString(fmt.Sprintf("- Total received: %.2f\n", summary.TotalReceived))
	b.WriteString(fmt.Sprintf("- Net amount: %.2f\n", summary.NetAmount))
	b.WriteString(fmt.Sprintf("- Transaction count: %d\n", summary.TransactionCount))

	if len(summary.TopSenders) > 0 {
		b.WriteString("Top senders (people who paid the user):\n")
		for _, agg := range summary.TopSenders {
			b.WriteString(fmt.Sprintf("  - %s: %.2f over %d transaction(s)\n", agg.Name, agg.Amount, agg.Count))
		}
	}
	if len(summary.TopReceivers) > 0 {
		b.WriteString("Top receivers (people the user paid):\n")
		for _, agg := range summary.TopReceivers {
			b.WriteString(fmt.Sprintf("  - %s: %.2f over %d transaction(s)\n", agg.Name, agg.Amount, agg.Count))
		}
	}

	b.WriteString("\nMost recent transactions (newest last):\n")
	for _, t := range excerpt {
		b.WriteString(fmt.Sprintf("  %s  %+.2f  %s\n", t.Timestamp.Format("2006-01-02 15:04"), t.Amount, t.Name))
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Use only the numbers shown above; never invent amounts or counterparties.\n")
	b.WriteString("- If the data does not answer the question, say so explicitly.\n")
	b.WriteString("- Keep the answer short and conversational, no Markdown.\n")

	b.WriteString("\nUser question: " + message + "\n")

	return b.String()
}

// buildAdvicePrompt assembles the prompt for a question that needs no
// transaction data.
func buildAdvicePrompt(message string) string {
	var b strings.Builder

	b.WriteString("You are a personal financial assistant.\n")
	b.WriteString("The user is asking a general question with no access to their transaction data.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Give practical, general financial guidance.\n")
	b.WriteString("- Never state or imply specific numbers from the user's accounts.\n")
	b.WriteString("- Keep the answer short and conversational, no Markdown.\n")
	b.WriteString("\nUser question: " + message + "\n")

	return b.String()
}
