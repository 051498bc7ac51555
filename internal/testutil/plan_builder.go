// Package testutil holds fluent builders for task plans used across tests.
package testutil

import (
	"time"

	"github.com/alphaseek/alphaseek/core"
)

// PlanBuilder helps construct task plans with fluent chaining for tests.
// Example:
//
//	plan := NewPlanBuilder("what changed in AAPL filings?").
//	    Task("a", Call("web_search", map[string]any{"query": "AAPL"})).
//	    TaskDeps("b", []string{"a"}, Call("filings", nil)).
//	    Build()
type PlanBuilder struct {
	query string
	tasks []*core.Task
}

// NewPlanBuilder creates a builder for a plan answering the given query.
func NewPlanBuilder(query string) *PlanBuilder {
	return &PlanBuilder{query: query}
}

// Task appends a dependency-free task with the given tool calls (chainable).
func (b *PlanBuilder) Task(id string, calls ...core.ToolCall) *PlanBuilder {
	return b.TaskDeps(id, nil, calls...)
}

// TaskDeps appends a task with dependencies and tool calls (chainable).
func (b *PlanBuilder) TaskDeps(id string, deps []string, calls ...core.ToolCall) *PlanBuilder {
	b.tasks = append(b.tasks, &core.Task{
		ID:           id,
		Description:  "task " + id,
		Status:       core.TaskPending,
		ToolCalls:    calls,
		Dependencies: deps,
	})
	return b
}

// Build returns the assembled *core.TaskPlan.
func (b *PlanBuilder) Build() *core.TaskPlan {
	return &core.TaskPlan{
		ID:        "plan-" + b.query,
		Query:     b.query,
		Tasks:     b.tasks,
		CreatedAt: time.Now(),
	}
}

// Call is shorthand for a core.ToolCall literal.
func Call(tool string, args map[string]any) core.ToolCall {
	return core.ToolCall{Tool: tool, Args: args}
}
