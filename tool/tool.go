// Package tool defines the registry contract the scheduler dispatches tool
// calls against, plus an in-memory registry and a schema-validated function
// adapter so the engine is runnable end-to-end without external services.
package tool

import (
	"context"
	"fmt"
)

// Result is the outcome of a single tool invocation as seen by the
// scheduler: a textual result, a success flag, and an optional error text.
// One invocation is a single external call; retries, if any, belong to the
// tool implementation.
type Result struct {
	Result  string `json:"result"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Registry executes named tools. Implementations must be safe for
// concurrent use; the scheduler dispatches calls from multiple workers.
type Registry interface {
	ExecuteTool(ctx context.Context, name string, args map[string]any) Result
}

// Tool is a single capability registered with the in-memory registry.
//
// Implementations should be thread-safe and return JSON-serializable
// results where possible so downstream formatting can pretty-print them.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description returns a human-readable description of the tool.
	Description() string

	// Parameters returns a minimal JSON-Schema shaped map describing the
	// accepted arguments.
	Parameters() map[string]any

	// Call executes the tool with already-validated arguments.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
