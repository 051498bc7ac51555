package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaseek/alphaseek/core"
)

func entry(toolName, result string) core.ContextEntry {
	return core.ContextEntry{TaskID: "t", Tool: toolName, Result: result, Success: true}
}

func TestEstimateTokens_CeilDivision(t *testing.T) {
	b := NewBudgeter()

	assert.Equal(t, 0, b.EstimateTokens(""))
	assert.Equal(t, 1, b.EstimateTokens("abc"))    // 3 / 3.5 -> ceil 1
	assert.Equal(t, 2, b.EstimateTokens("abcd"))   // 4 / 3.5 -> ceil 2
	assert.Equal(t, 2, b.EstimateTokens("abcdefg"))  // 7 / 3.5 -> exactly 2
	assert.Equal(t, 3, b.EstimateTokens("abcdefgh")) // 8 / 3.5 -> ceil 3
}

func TestBudgeter_GreedyOrderPreserving(t *testing.T) {
	entries := []core.ContextEntry{
		entry("a", strings.Repeat("x", 100)),
		entry("b", strings.Repeat("y", 100)),
		entry("c", strings.Repeat("z", 100)),
	}

	b := NewBudgeter()
	costA := b.EstimateTokens(formatBlock(entries[0]))
	costB := b.EstimateTokens(formatBlock(entries[1]))

	bounded := NewBudgeter(func(o *BudgeterOptions) {
		o.TokenBudget = costA + costB
	}).Bound(entries)

	require.Len(t, bounded, 2)
	assert.Equal(t, "a", bounded[0].Tool)
	assert.Equal(t, "b", bounded[1].Tool)
}

func TestBudgeter_ZeroBudgetExcludesAll(t *testing.T) {
	entries := []core.ContextEntry{entry("a", "data")}

	bounded := NewBudgeter(func(o *BudgeterOptions) { o.TokenBudget = 0 }).Bound(entries)
	assert.Empty(t, bounded)
}

func TestBudgeter_DefaultBudgetKeepsEverything(t *testing.T) {
	entries := []core.ContextEntry{
		entry("a", strings.Repeat("x", 1000)),
		entry("b", strings.Repeat("y", 1000)),
	}

	bounded := NewBudgeter().Bound(entries)
	assert.Len(t, bounded, 2)
}
