// Package prompt bounds and formats scratchpad entries into the context blob
// handed to the final answer-synthesis model call.
package prompt

import (
	"math"

	"github.com/alphaseek/alphaseek/core"
)

const (
	// DefaultTokenBudget is the hard cap on estimated tokens of formatted
	// entries included in the downstream prompt.
	DefaultTokenBudget = 150_000

	// DefaultCharsPerToken is the char-to-token heuristic divisor.
	DefaultCharsPerToken = 3.5
)

// BudgeterOptions configures a Budgeter.
type BudgeterOptions struct {
	// TokenBudget caps the cumulative estimated tokens of included entries.
	TokenBudget int
	// CharsPerToken is the divisor of the size heuristic ceil(chars / CharsPerToken).
	CharsPerToken float64
}

// Budgeter applies the token-budget policy over scratchpad entries to
// produce a bounded subset for prompting.
//
// The policy is greedy and order-preserving: entries are considered in
// insertion order, and an entry is included only if adding its formatted
// size keeps the cumulative estimate within budget. Once the budget is
// reached no further entries are accepted; there is no backtracking to swap
// in smaller later entries. Excluded entries stay in the scratchpad.
type Budgeter struct {
	tokenBudget   int
	charsPerToken float64
}

// NewBudgeter constructs a Budgeter with optional overrides.
func NewBudgeter(optFns ...func(o *BudgeterOptions)) *Budgeter {
	opts := BudgeterOptions{
		TokenBudget:   DefaultTokenBudget,
		CharsPerToken: DefaultCharsPerToken,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Budgeter{tokenBudget: opts.TokenBudget, charsPerToken: opts.CharsPerToken}
}

// EstimateTokens estimates the token count of a text: ceil(chars / divisor).
func (b *Budgeter) EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(text)) / b.charsPerToken))
}

// Bound returns the budget-bounded prefix-by-inclusion of entries. The size
// of each entry is estimated on its formatted form (title plus body), the
// same text the answer builder emits.
func (b *Budgeter) Bound(entries []core.ContextEntry) []core.ContextEntry {
	bounded := make([]core.ContextEntry, 0, len(entries))
	used := 0

	for _, e := range entries {
		cost := b.EstimateTokens(formatBlock(e))
		if used+cost > b.tokenBudget {
			break
		}
		used += cost
		bounded = append(bounded, e)
	}

	return bounded
}
