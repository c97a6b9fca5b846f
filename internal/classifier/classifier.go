// Package classifier decides whether a user message needs transaction
// grounding before it may be answered. The check is a deliberately
// permissive substring heuristic: a false positive only costs an extra
// summary computation, a false negative would let an ungrounded numeric
// claim reach the user.
package classifier

import "strings"

// DefaultTriggers is the stock set of financial trigger terms.
var DefaultTriggers = []string{
	"balance", "spend", "spent", "expense", "income",
	"receive", "received", "transaction", "money", "payment",
	"transfer", "financial", "analysis", "summary",
	"total", "amount", "cost", "price", "bill",
}

// Classifier matches messages against a configurable set of trigger terms.
type Classifier struct {
	triggers []string
}

// New creates a Classifier. With no arguments it uses DefaultTriggers;
// callers can pass their own terms to tune sensitivity.
func New(triggers ...string) *Classifier {
	if len(triggers) == 0 {
		triggers = DefaultTriggers
	}
	lowered := make([]string, len(triggers))
	for i, term := range triggers {
		lowered[i] = strings.ToLower(term)
	}
	return &Classifier{triggers: lowered}
}

// RequiresGrounding reports whether answering message requires concrete
// transaction data. Matching is case-insensitive and positional: any
// trigger occurring as a substring anywhere in the message counts. An
// empty message never requires grounding.
func (c *Classifier) RequiresGrounding(message string) bool {
	if message == "" {
		return false
	}
	lowered := strings.ToLower(message)
	for _, term := range c.triggers {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
