package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaseek/alphaseek/core"
	"github.com/alphaseek/alphaseek/internal/testutil"
	"github.com/alphaseek/alphaseek/tool"
)

// fakeRegistry is a scriptable tool.Registry that records dispatch order and
// can fail or stall specific tools.
type fakeRegistry struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]string        // tool -> error message
	block   map[string]chan struct{} // tool -> release channel
	results map[string]string        // tool -> canned result
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		fail:    map[string]string{},
		block:   map[string]chan struct{}{},
		results: map[string]string{},
	}
}

func (f *fakeRegistry) ExecuteTool(ctx context.Context, name string, args map[string]any) tool.Result {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	release := f.block[name]
	errMsg := f.fail[name]
	result, hasResult := f.results[name]
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if errMsg != "" {
		return tool.Result{Result: "Error: " + errMsg, Success: false, Error: errMsg}
	}
	if !hasResult {
		result = "ok:" + name
	}
	return tool.Result{Result: result, Success: true}
}

func (f *fakeRegistry) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func mustSession(t *testing.T, plan *core.TaskPlan) *core.RunSession {
	t.Helper()
	graph, v := core.BuildTaskGraph(plan)
	require.True(t, v.Valid, "plan must validate: %v", v.Errors)
	return core.NewRunSession(plan.Query, graph)
}

func TestScheduler_RunsDependentsAfterDependency(t *testing.T) {
	plan := testutil.NewPlanBuilder("q").
		Task("a", testutil.Call("fetch_a", nil)).
		TaskDeps("b", []string{"a"}, testutil.Call("fetch_b", nil)).
		TaskDeps("c", []string{"a"}, testutil.Call("fetch_c", nil)).
		Build()

	registry := newFakeRegistry()
	session := mustSession(t, plan)

	err := New(registry).Run(context.Background(), session)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		task, ok := session.Graph.Task(id)
		require.True(t, ok)
		assert.Equal(t, core.TaskComplete, task.Status, "task %s", id)
	}

	// a must be dispatched before its dependents.
	registry.mu.Lock()
	defer registry.mu.Unlock()
	require.Len(t, registry.calls, 3)
	assert.Equal(t, "fetch_a", registry.calls[0])

	require.NotNil(t, plan.CompletedAt)
}

func TestScheduler_SequentialCallsWithinTask(t *testing.T) {
	plan := testutil.NewPlanBuilder("q").
		Task("a",
			testutil.Call("step_one", nil),
			testutil.Call("step_two", nil),
			testutil.Call("step_three", nil),
		).
		Build()

	registry := newFakeRegistry()
	session := mustSession(t, plan)

	require.NoError(t, New(registry).Run(context.Background(), session))

	registry.mu.Lock()
	defer registry.mu.Unlock()
	assert.Equal(t, []string{"step_one", "step_two", "step_three"}, registry.calls)

	task, _ := session.Graph.Task("a")
	assert.Equal(t, "ok:step_three", task.Result)
}

func TestScheduler_FailureSkipsRemainingCalls(t *testing.T) {
	plan := testutil.NewPlanBuilder("q").
		Task("a",
			testutil.Call("works", nil),
			testutil.Call("breaks", nil),
			testutil.Call("never_runs", nil),
		).
		Build()

	registry := newFakeRegistry()
	registry.fail["breaks"] = "upstream 500"
	session := mustSession(t, plan)

	require.NoError(t, New(registry).Run(context.Background(), session))

	task, _ := session.Graph.Task("a")
	assert.Equal(t, core.TaskFailed, task.Status)
	assert.Equal(t, "upstream 500", task.Error)

	registry.mu.Lock()
	calls := append([]string{}, registry.calls...)
	registry.mu.Unlock()
	assert.Equal(t, []string{"works", "breaks"}, calls)

	// Both outcomes were recorded, in order.
	entries := session.Scratchpad.GetFullContexts()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Success)
	assert.False(t, entries[1].Success)
	assert.Equal(t, "Error: upstream 500", entries[1].Result)
}

func TestScheduler_FailurePropagatesThroughGraph(t *testing.T) {
	plan := testutil.NewPlanBuilder("q").
		Task("a", testutil.Call("breaks", nil)).
		TaskDeps("b", []string{"a"}, testutil.Call("fetch_b", nil)).
		TaskDeps("c", []string{"b"}, testutil.Call("fetch_c", nil)).
		Task("d", testutil.Call("fetch_d", nil)).
		Build()

	registry := newFakeRegistry()
	registry.fail["breaks"] = "boom"
	session := mustSession(t, plan)

	require.NoError(t, New(registry).Run(context.Background(), session))

	a, _ := session.Graph.Task("a")
	b, _ := session.Graph.Task("b")
	c, _ := session.Graph.Task("c")
	d, _ := session.Graph.Task("d")

	assert.Equal(t, core.TaskFailed, a.Status)
	assert.Equal(t, core.TaskFailed, b.Status)
	assert.Equal(t, "blocked by failed dependency a", b.Error)
	assert.Equal(t, core.TaskFailed, c.Status)
	assert.Equal(t, "blocked by failed dependency b", c.Error)

	// Unrelated tasks continue.
	assert.Equal(t, core.TaskComplete, d.Status)

	require.NotNil(t, plan.CompletedAt)
}

func TestScheduler_IndependentTasksRunConcurrently(t *testing.T) {
	plan := testutil.NewPlanBuilder("q").
		Task("a", testutil.Call("slow_a", nil)).
		Task("b", testutil.Call("slow_b", nil)).
		Build()

	registry := newFakeRegistry()
	releaseA := make(chan struct{})
	releaseB := make(chan struct{})
	registry.block["slow_a"] = releaseA
	registry.block["slow_b"] = releaseB

	session := mustSession(t, plan)

	done := make(chan error, 1)
	go func() { done <- New(registry).Run(context.Background(), session) }()

	// Both tools must be in flight at once: neither has been released yet.
	require.Eventually(t, func() bool { return registry.callCount() == 2 }, time.Second, time.Millisecond)

	close(releaseA)
	close(releaseB)
	require.NoError(t, <-done)

	a, _ := session.Graph.Task("a")
	b, _ := session.Graph.Task("b")
	assert.Equal(t, core.TaskComplete, a.Status)
	assert.Equal(t, core.TaskComplete, b.Status)
}

func TestScheduler_WorkerPoolBoundsParallelism(t *testing.T) {
	var tasks []*core.Task
	for i := 0; i < 6; i++ {
		tasks = append(tasks, &core.Task{
			ID:        fmt.Sprintf("t%d", i),
			Status:    core.TaskPending,
			ToolCalls: []core.ToolCall{{Tool: "slow"}},
		})
	}
	plan := &core.TaskPlan{ID: "p", Query: "q", Tasks: tasks, CreatedAt: time.Now()}

	registry := newFakeRegistry()
	release := make(chan struct{})
	registry.block["slow"] = release

	session := mustSession(t, plan)

	done := make(chan error, 1)
	go func() {
		done <- New(registry, func(o *Options) { o.MaxWorkers = 2 }).Run(context.Background(), session)
	}()

	// Only two tasks may be dispatched while the pool is saturated.
	require.Eventually(t, func() bool { return registry.callCount() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, registry.callCount())

	close(release)
	require.NoError(t, <-done)
	assert.True(t, session.Graph.Done())
}

func TestScheduler_CancellationFailsPendingRecordsRunning(t *testing.T) {
	plan := testutil.NewPlanBuilder("q").
		Task("a", testutil.Call("slow", nil)).
		TaskDeps("b", []string{"a"}, testutil.Call("fetch_b", nil)).
		Build()

	registry := newFakeRegistry()
	release := make(chan struct{})
	registry.block["slow"] = release

	session := mustSession(t, plan)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(registry).Run(ctx, session) }()

	require.Eventually(t, func() bool { return registry.callCount() == 1 }, time.Second, time.Millisecond)

	cancel()
	close(release)

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	// The running task drained naturally and its outcome was recorded.
	a, _ := session.Graph.Task("a")
	assert.Equal(t, core.TaskComplete, a.Status)
	require.Len(t, session.Scratchpad.GetFullContexts(), 1)

	// The not-yet-started task failed with "cancelled".
	b, _ := session.Graph.Task("b")
	assert.Equal(t, core.TaskFailed, b.Status)
	assert.Equal(t, "cancelled", b.Error)

	require.NotNil(t, plan.CompletedAt)
}
