package core

import "time"

// TaskStatus represents the lifecycle state of a task.
//
// Transitions are monotonic: pending -> running -> {complete, failed}, or
// pending -> failed when a task is blocked or cancelled before it starts.
// A task never moves backward out of a terminal state.
type TaskStatus string

const (
	// TaskPending means the task has not started yet.
	TaskPending TaskStatus = "pending"
	// TaskRunning means the task is currently executing its tool calls.
	TaskRunning TaskStatus = "running"
	// TaskComplete means every tool call of the task succeeded.
	TaskComplete TaskStatus = "complete"
	// TaskFailed means a tool call failed, a dependency failed, or the run
	// was cancelled before the task started.
	TaskFailed TaskStatus = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s TaskStatus) Terminal() bool { return s == TaskComplete || s == TaskFailed }

// ToolCall is a single named invocation dispatched to the tool registry.
//
// Args are an open key/value mapping with no fixed shape. The scheduler
// treats them as opaque; shape validation happens at the point the concrete
// tool consumes them.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// Task is a unit of work in a plan carrying one or more tool calls.
//
// Dependencies reference task ids within the same plan. Result holds the
// textual output of the final tool call once the task completes; Error holds
// the failure reason once the task fails.
type Task struct {
	ID           string     `json:"id"`
	Description  string     `json:"description"`
	TaskType     string     `json:"task_type,omitempty"`
	Status       TaskStatus `json:"status"`
	ToolCalls    []ToolCall `json:"tool_calls"`
	Dependencies []string   `json:"dependencies,omitempty"`
	Result       string     `json:"result,omitempty"`
	Error        string     `json:"error,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// DurationMs returns the wall-clock execution time in milliseconds, or 0 if
// the task never ran to a terminal state.
func (t *Task) DurationMs() int64 {
	if t.StartTime == nil || t.EndTime == nil {
		return 0
	}
	return t.EndTime.Sub(*t.StartTime).Milliseconds()
}
