package prompt

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/alphaseek/alphaseek/core"
	"github.com/alphaseek/alphaseek/tool"
)

// Sentinels returned by FinalAnswerBuilder.Build when there is nothing to
// format. Downstream prompting depends on these exact strings.
const (
	NoDataSentinel      = "No data was gathered."
	NoValidDataSentinel = "No data was successfully gathered."
)

// FinalAnswerBuilder filters and formats scratchpad entries into the text
// blob consumed by answer synthesis.
type FinalAnswerBuilder struct {
	budgeter *Budgeter
}

// NewFinalAnswerBuilder constructs a builder bounded by the given budgeter.
// A nil budgeter gets the defaults.
func NewFinalAnswerBuilder(budgeter *Budgeter) *FinalAnswerBuilder {
	if budgeter == nil {
		budgeter = NewBudgeter()
	}
	return &FinalAnswerBuilder{budgeter: budgeter}
}

// Build renders the bounded, valid entries of the scratchpad as titled
// blocks joined by blank lines, preserving insertion order.
//
// An empty scratchpad yields NoDataSentinel; a scratchpad holding only
// failed entries yields NoValidDataSentinel. Even a fully failed run
// therefore produces a coherent context rather than an error.
func (f *FinalAnswerBuilder) Build(pad *core.Scratchpad) string {
	if len(pad.GetFullContexts()) == 0 {
		return NoDataSentinel
	}

	valid := pad.GetValidContexts()
	if len(valid) == 0 {
		return NoValidDataSentinel
	}

	bounded := f.budgeter.Bound(valid)
	if len(bounded) == 0 {
		// Budget too small for even the first entry.
		return NoValidDataSentinel
	}

	blocks := make([]string, 0, len(bounded))
	for _, e := range bounded {
		blocks = append(blocks, formatBlock(e))
	}

	return strings.Join(blocks, "\n\n")
}

// formatBlock renders one entry as a titled block. The title is the
// deterministic tool-call label; the body is the result pretty-printed as
// JSON when it parses, the raw text otherwise. The budgeter estimates sizes
// on exactly this text.
func formatBlock(e core.ContextEntry) string {
	title := tool.Describe(e.Tool, e.Args)
	return "## " + title + "\n" + formatBody(e.Result)
}

func formatBody(result string) string {
	if gjson.Valid(result) {
		return strings.TrimSpace(string(pretty.Pretty([]byte(result))))
	}
	return result
}
