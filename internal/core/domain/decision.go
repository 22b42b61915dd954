package domain

import "strings"

// DecisionKind is the binary trading decision derived from the model's reply.
type DecisionKind string

const (
	DecisionBuy  DecisionKind = "BUY"
	DecisionHold DecisionKind = "HOLD"
)

// ParseDecision derives the decision kind from raw completion text.
// Any text that contains "BUY" (case-insensitive) is a buy; everything
// else, including empty text, is a hold.
func ParseDecision(text string) DecisionKind {
	if strings.Contains(strings.ToUpper(text), string(DecisionBuy)) {
		return DecisionBuy
	}
	return DecisionHold
}
