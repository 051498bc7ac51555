package core

import "sync"

// TokenUsage captures token usage statistics reported by a model call.
// Invariant: TotalTokens == InputTokens + OutputTokens for every value fed
// into the counter; totals are trusted as supplied, not re-derived.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// TokenCounter accumulates usage across all model calls of one run. It is a
// pure aggregator, safe for concurrent use.
type TokenCounter struct {
	mu    sync.Mutex
	usage TokenUsage
}

// NewTokenCounter constructs a zeroed counter.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// Add accumulates the given usage. A nil usage is a no-op, so callers can
// pass through optional usage from model responses unconditionally.
func (c *TokenCounter) Add(usage *TokenUsage) {
	if usage == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.usage.InputTokens += usage.InputTokens
	c.usage.OutputTokens += usage.OutputTokens
	c.usage.TotalTokens += usage.TotalTokens
}

// Usage returns the accumulated totals. The second return value is false
// while no call has contributed any tokens, distinguishing "no model calls
// occurred yet" from "calls occurred with zero tokens".
func (c *TokenCounter) Usage() (TokenUsage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.usage.TotalTokens == 0 {
		return TokenUsage{}, false
	}

	return c.usage, true
}

// TokensPerSecond returns the overall throughput for the given elapsed wall
// time. It reports no usage when no tokens were counted or elapsedMs <= 0.
func (c *TokenCounter) TokensPerSecond(elapsedMs int64) (float64, bool) {
	usage, ok := c.Usage()
	if !ok || elapsedMs <= 0 {
		return 0, false
	}

	return float64(usage.TotalTokens) / (float64(elapsedMs) / 1000.0), true
}
