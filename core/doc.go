// Package core contains the data model and primitives of the AlphaSeek task
// execution engine: task plans and their validated dependency graphs, the
// append-only scratchpad of tool results, token usage accounting and the
// per-query run session that binds them together.
//
// The core is deliberately free of transport, rendering and LLM concerns;
// those live in the model, tool and scheduler packages (or outside the
// module entirely). Everything here is safe for concurrent use unless noted.
package core
