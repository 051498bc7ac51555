package tool

import (
	"fmt"
	"sort"
	"strings"
)

// Describe renders a deterministic human-readable label for a tool call,
// e.g. `stock_quote(ticker="AAPL", period="1y")`. Argument keys are sorted
// so the same call always produces the same label regardless of map order.
//
// The label titles scratchpad entries in the final-answer context and feeds
// the budgeter's size estimate, so it must stay stable across runs.
func Describe(name string, args map[string]any) string {
	if len(args) == 0 {
		return name + "()"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatArg(args[k])))
	}

	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

func formatArg(v any) string {
	switch a := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", a)
	default:
		return fmt.Sprintf("%v", a)
	}
}
