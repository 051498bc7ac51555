package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaseek/alphaseek/core"
)

func TestFinalAnswer_EmptyScratchpad(t *testing.T) {
	builder := NewFinalAnswerBuilder(nil)

	assert.Equal(t, "No data was gathered.", builder.Build(core.NewScratchpad()))
}

func TestFinalAnswer_OnlyFailedEntries(t *testing.T) {
	pad := core.NewScratchpad()
	pad.AddResult("t1", "quote", nil, "Error: timeout", false, "timeout")

	builder := NewFinalAnswerBuilder(nil)
	assert.Equal(t, "No data was successfully gathered.", builder.Build(pad))
}

func TestFinalAnswer_FormatsJSONAndRawBlocks(t *testing.T) {
	pad := core.NewScratchpad()
	pad.AddResult("t1", "stock_quote", map[string]any{"ticker": "AAPL"}, `{"price":187.44}`, true, "")
	pad.AddResult("t2", "news_search", map[string]any{"query": "AAPL"}, "plain text summary", true, "")

	out := NewFinalAnswerBuilder(nil).Build(pad)

	blocks := strings.Split(out, "\n\n")
	require.Len(t, blocks, 2)

	// Deterministic titles derived from the tool call.
	assert.True(t, strings.HasPrefix(blocks[0], `## stock_quote(ticker="AAPL")`))
	assert.True(t, strings.HasPrefix(blocks[1], `## news_search(query="AAPL")`))

	// Valid JSON is pretty-printed; raw text passes through.
	assert.Contains(t, blocks[0], "\"price\": 187.44")
	assert.Contains(t, blocks[1], "plain text summary")
}

func TestFinalAnswer_SkipsFailedKeepsOrder(t *testing.T) {
	pad := core.NewScratchpad()
	pad.AddResult("t1", "a", nil, "first", true, "")
	pad.AddResult("t2", "b", nil, "broken", false, "broken")
	pad.AddResult("t3", "c", nil, "third", true, "")

	out := NewFinalAnswerBuilder(nil).Build(pad)

	assert.NotContains(t, out, "broken")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "third"))
}

func TestFinalAnswer_BudgetExcludesLaterEntries(t *testing.T) {
	pad := core.NewScratchpad()
	pad.AddResult("t1", "a", nil, strings.Repeat("x", 200), true, "")
	pad.AddResult("t2", "b", nil, strings.Repeat("y", 200), true, "")
	pad.AddResult("t3", "c", nil, strings.Repeat("z", 200), true, "")

	entries := pad.GetValidContexts()
	b := NewBudgeter()
	budget := b.EstimateTokens(formatBlock(entries[0])) + b.EstimateTokens(formatBlock(entries[1]))

	builder := NewFinalAnswerBuilder(NewBudgeter(func(o *BudgeterOptions) {
		o.TokenBudget = budget
	}))

	out := builder.Build(pad)

	// Later entries (insertion order) are dropped from the bounded view.
	assert.Contains(t, out, strings.Repeat("x", 200))
	assert.Contains(t, out, strings.Repeat("y", 200))
	assert.NotContains(t, out, strings.Repeat("z", 200))

	// The store itself still holds everything.
	assert.Len(t, pad.GetFullContexts(), 3)
}

func TestFinalAnswer_BudgetTooSmallForAnything(t *testing.T) {
	pad := core.NewScratchpad()
	pad.AddResult("t1", "a", nil, strings.Repeat("x", 500), true, "")

	builder := NewFinalAnswerBuilder(NewBudgeter(func(o *BudgeterOptions) {
		o.TokenBudget = 1
	}))

	assert.Equal(t, "No data was successfully gathered.", builder.Build(pad))
}
