package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// TaskGraph indexes a validated TaskPlan as a directed acyclic graph and
// owns all task state transitions for the lifetime of one run.
//
// Contract:
//   - All mutation goes through Mark* / ReadyTasks / FailPending so status
//     transitions stay monotonic under concurrent workers.
//   - ReadyTasks propagates failure forward: a pending task whose dependency
//     failed is transitioned to failed instead of being skipped silently.
//   - StampCompleted sets plan.CompletedAt exactly once, only after every
//     task is terminal.
type TaskGraph struct {
	plan  *TaskPlan
	tasks map[string]*Task
	mu    sync.Mutex
}

// BuildTaskGraph validates the plan and indexes it as a graph.
//
// Checks run in order: (a) task id uniqueness, (b) every dependency refers
// to a task present in the plan, (c) the dependency relation is acyclic.
// Any failure yields a TaskPlanValidation with Valid=false and the plan is
// never scheduled.
func BuildTaskGraph(plan *TaskPlan) (*TaskGraph, TaskPlanValidation) {
	var errs []string

	if plan == nil || len(plan.Tasks) == 0 {
		errs = append(errs, "plan contains no tasks")
		return nil, TaskPlanValidation{Valid: false, Errors: errs}
	}

	tasks := make(map[string]*Task, len(plan.Tasks))
	for _, t := range plan.Tasks {
		if _, exists := tasks[t.ID]; exists {
			errs = append(errs, fmt.Sprintf("duplicate task id %q", t.ID))
			continue
		}
		tasks[t.ID] = t
	}

	for _, t := range plan.Tasks {
		for _, dep := range t.Dependencies {
			if _, ok := tasks[dep]; !ok {
				errs = append(errs, fmt.Sprintf("task %q depends on unknown task %q", t.ID, dep))
			}
		}
	}

	// Cycle detection only makes sense once every edge resolves.
	if len(errs) == 0 {
		for _, cycle := range findCycles(plan.Tasks, tasks) {
			errs = append(errs, fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")))
		}
	}

	if len(errs) > 0 {
		return nil, TaskPlanValidation{Valid: false, Errors: errs}
	}

	for _, t := range plan.Tasks {
		if t.Status == "" {
			t.Status = TaskPending
		}
	}

	return &TaskGraph{plan: plan, tasks: tasks}, TaskPlanValidation{Valid: true}
}

// findCycles runs a depth-first traversal tracking an in-progress set.
// Revisiting an in-progress node signals a cycle; the returned slice names
// every id participating in that cycle, closed back on the entry node.
func findCycles(order []*Task, tasks map[string]*Task) [][]string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[string]int, len(tasks))
	var stack []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		state[id] = inStack
		stack = append(stack, id)

		for _, dep := range tasks[id].Dependencies {
			switch state[dep] {
			case unvisited:
				visit(dep)
			case inStack:
				// Slice the current stack from the first occurrence of dep
				// to capture the full cycle.
				for i, sid := range stack {
					if sid == dep {
						cycle := append(append([]string{}, stack[i:]...), dep)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for _, t := range order {
		if state[t.ID] == unvisited {
			visit(t.ID)
		}
	}

	return cycles
}

// Plan returns the underlying plan.
func (g *TaskGraph) Plan() *TaskPlan { return g.plan }

// Task returns the task with the given id, if present.
func (g *TaskGraph) Task(id string) (*Task, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.tasks[id]
	return t, ok
}

// ReadyTasks returns all pending tasks whose dependencies are all complete,
// in plan order. Pending tasks that depend on a failed task are transitioned
// directly to failed here, so failure propagates forward through the DAG.
func (g *TaskGraph) ReadyTasks() []*Task {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ready []*Task
	for _, t := range g.plan.Tasks {
		if t.Status != TaskPending {
			continue
		}

		blocked := ""
		satisfied := true
		for _, dep := range t.Dependencies {
			switch g.tasks[dep].Status {
			case TaskFailed:
				blocked = dep
				satisfied = false
			case TaskComplete:
				// dependency satisfied
			default:
				satisfied = false
			}
			if blocked != "" {
				break
			}
		}

		if blocked != "" {
			g.failLocked(t, fmt.Sprintf("blocked by failed dependency %s", blocked))
			continue
		}
		if satisfied {
			ready = append(ready, t)
		}
	}

	return ready
}

// MarkRunning transitions a pending task to running and stamps StartTime.
func (g *TaskGraph) MarkRunning(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("unknown task %q", id)
	}
	if t.Status != TaskPending {
		return fmt.Errorf("task %q cannot transition %s -> running", id, t.Status)
	}

	now := time.Now()
	t.Status = TaskRunning
	t.StartTime = &now

	return nil
}

// MarkComplete transitions a running task to complete with its final result.
func (g *TaskGraph) MarkComplete(id, result string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("unknown task %q", id)
	}
	if t.Status != TaskRunning {
		return fmt.Errorf("task %q cannot transition %s -> complete", id, t.Status)
	}

	now := time.Now()
	t.Status = TaskComplete
	t.Result = result
	t.EndTime = &now

	return nil
}

// MarkFailed transitions a pending or running task to failed. Terminal tasks
// are left untouched.
func (g *TaskGraph) MarkFailed(id, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("unknown task %q", id)
	}
	if t.Status.Terminal() {
		return fmt.Errorf("task %q cannot transition %s -> failed", id, t.Status)
	}

	g.failLocked(t, reason)

	return nil
}

// failLocked applies the failed status under the caller-held lock.
func (g *TaskGraph) failLocked(t *Task, reason string) {
	now := time.Now()
	t.Status = TaskFailed
	t.Error = reason
	t.EndTime = &now
}

// FailPending transitions every still-pending task to failed with the given
// reason. Used on cancellation; running tasks are left to drain naturally.
func (g *TaskGraph) FailPending(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, t := range g.plan.Tasks {
		if t.Status == TaskPending {
			g.failLocked(t, reason)
		}
	}
}

// Done reports whether no task is pending or running.
func (g *TaskGraph) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, t := range g.plan.Tasks {
		if !t.Status.Terminal() {
			return false
		}
	}

	return true
}

// StampCompleted sets plan.CompletedAt once all tasks are terminal. It is a
// no-op when tasks are still in flight or the stamp is already set.
func (g *TaskGraph) StampCompleted() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.plan.CompletedAt != nil {
		return
	}
	for _, t := range g.plan.Tasks {
		if !t.Status.Terminal() {
			return
		}
	}

	now := time.Now()
	g.plan.CompletedAt = &now
}
