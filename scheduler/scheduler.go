// Package scheduler drives task state transitions for one run: it polls the
// task graph for ready tasks, dispatches their tool calls to the registry on
// a bounded worker pool, and records every outcome into the scratchpad.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/alphaseek/alphaseek/core"
	"github.com/alphaseek/alphaseek/logging"
	"github.com/alphaseek/alphaseek/tool"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// MaxWorkers bounds how many tasks execute concurrently.
	MaxWorkers int
	// PollInterval is the sleep between ready-task polls while tasks are
	// in flight but none is ready.
	PollInterval time.Duration
	// Logger receives scheduling and dispatch diagnostics.
	Logger logging.Logger
}

// Scheduler executes validated task plans.
//
// Tasks across the pool run concurrently with each other; tool calls within
// one task run sequentially, since later calls may rely on earlier calls'
// side effects. Each tool call gets exactly one attempt: retries, if any,
// are the tool implementation's responsibility.
type Scheduler struct {
	registry     tool.Registry
	maxWorkers   int
	pollInterval time.Duration
	logger       logging.Logger
}

// New constructs a Scheduler over the given tool registry.
func New(registry tool.Registry, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		MaxWorkers:   4,
		PollInterval: 10 * time.Millisecond,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}

	return &Scheduler{
		registry:     registry,
		maxWorkers:   opts.MaxWorkers,
		pollInterval: opts.PollInterval,
		logger:       opts.Logger,
	}
}

// Run executes the session's graph until no task is pending or running,
// then stamps the plan's CompletedAt.
//
// Cancellation: when ctx is cancelled, tasks not yet started fail with
// "cancelled"; tasks already running are not forcibly aborted, and their
// outcomes, once they return, are still recorded before the run finalizes.
// Individual tool failures never abort the run; sibling and unrelated tasks
// continue.
func (s *Scheduler) Run(ctx context.Context, session *core.RunSession) error {
	graph := session.Graph

	var wg sync.WaitGroup
	slots := make(chan struct{}, s.maxWorkers)

	cancelled := false

dispatch:
	for {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		ready := graph.ReadyTasks()
		if len(ready) == 0 {
			if graph.Done() {
				break
			}
			// Tasks are in flight; wait for completions to unlock dependents.
			select {
			case <-ctx.Done():
				cancelled = true
				break dispatch
			case <-time.After(s.pollInterval):
			}
			continue
		}

		for _, t := range ready {
			// Re-check before every dispatch: cancellation may land between
			// the poll and the task being handed to the pool.
			if ctx.Err() != nil {
				cancelled = true
				break dispatch
			}

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				cancelled = true
				break dispatch
			}

			if err := graph.MarkRunning(t.ID); err != nil {
				// Already transitioned elsewhere; give the slot back.
				<-slots
				continue
			}

			wg.Add(1)
			go func(t *core.Task) {
				defer wg.Done()
				defer func() { <-slots }()
				s.executeTask(ctx, session, t)
			}(t)
		}
	}

	if cancelled {
		graph.FailPending("cancelled")
		s.logger.Warn("scheduler.cancelled", "plan_id", graph.Plan().ID)
	}

	// Running tasks drain naturally; their results are recorded, no rollback.
	wg.Wait()

	graph.StampCompleted()

	s.logger.Info("scheduler.run.finished",
		"plan_id", graph.Plan().ID,
		"entries", session.Scratchpad.Len(),
		"elapsed_ms", session.ElapsedMs(),
	)

	return ctx.Err()
}

// executeTask runs the task's tool calls in order. The first failing call
// records its error, marks the task failed and skips the remaining calls.
func (s *Scheduler) executeTask(ctx context.Context, session *core.RunSession, t *core.Task) {
	var lastResult string

	for _, call := range t.ToolCalls {
		start := time.Now()
		res := s.registry.ExecuteTool(ctx, call.Tool, call.Args)

		session.Scratchpad.AddResult(t.ID, call.Tool, call.Args, res.Result, res.Success, res.Error)

		if !res.Success {
			s.logger.Warn("scheduler.tool.failed",
				"task_id", t.ID,
				"tool", call.Tool,
				"error", res.Error,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			if err := s.failTask(t.ID, res.Error, session); err != nil {
				s.logger.Error("scheduler.task.transition", "task_id", t.ID, "error", err.Error())
			}
			return
		}

		lastResult = res.Result

		s.logger.Debug("scheduler.tool.succeeded",
			"task_id", t.ID,
			"tool", call.Tool,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if err := session.Graph.MarkComplete(t.ID, lastResult); err != nil {
		s.logger.Error("scheduler.task.transition", "task_id", t.ID, "error", err.Error())
		return
	}

	s.logger.Info("scheduler.task.complete", "task_id", t.ID)
}

func (s *Scheduler) failTask(id, reason string, session *core.RunSession) error {
	if reason == "" {
		reason = "tool execution failed"
	}
	return session.Graph.MarkFailed(id, reason)
}
