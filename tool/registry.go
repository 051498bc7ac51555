package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alphaseek/alphaseek/logging"
)

// InMemoryRegistry is a process-local Registry keyed by tool name. It is
// safe for concurrent registration and execution.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger logging.Logger
}

// RegistryOptions configures an InMemoryRegistry.
type RegistryOptions struct {
	Logger logging.Logger
}

// NewInMemoryRegistry constructs an empty registry.
func NewInMemoryRegistry(optFns ...func(o *RegistryOptions)) *InMemoryRegistry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryRegistry{tools: make(map[string]Tool), logger: opts.Logger}
}

// Register adds a tool, replacing any previous tool of the same name.
func (r *InMemoryRegistry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Tools returns the registered tool names.
func (r *InMemoryRegistry) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}

	return names
}

// ExecuteTool implements Registry. Unknown tools and execution errors are
// reported through the Result rather than panicking or aborting the run;
// the scheduler turns them into task failures.
func (r *InMemoryRegistry) ExecuteTool(ctx context.Context, name string, args map[string]any) Result {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		err := fmt.Sprintf("unknown tool %q", name)
		r.logger.Warn("tool.execute.unknown", "tool", name)
		return Result{Result: "Error: " + err, Success: false, Error: err}
	}

	start := time.Now()
	out, err := t.Call(ctx, args)
	if err != nil {
		r.logger.Error("tool.execute.error", "tool", name, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return Result{Result: "Error: " + err.Error(), Success: false, Error: err.Error()}
	}

	r.logger.Debug("tool.execute.success", "tool", name, "duration_ms", time.Since(start).Milliseconds())

	return Result{Result: stringify(out), Success: true}
}

// stringify renders a tool's return value as text. Strings pass through;
// everything else is JSON-encoded so the answer builder can pretty-print it.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
