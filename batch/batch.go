// Package batch carries the per-plan summary types produced for completed
// runs and a driver that processes multiple independent queries with its own
// bounded pool, separate from the per-run task worker pool, so total
// concurrent tool-call fan-out stays bounded across the process.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/alphaseek/alphaseek/core"
	"github.com/alphaseek/alphaseek/logging"
)

// ToolCallSummary is the per-call view inside a TaskSummary.
type ToolCallSummary struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Status string         `json:"status"`
}

// TaskSummary is the external, reporting-oriented view of one task after a
// plan has completed.
type TaskSummary struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	TaskType    string            `json:"taskType,omitempty"`
	Status      core.TaskStatus   `json:"status"`
	ToolCalls   []ToolCallSummary `json:"toolCalls,omitempty"`
	DurationMs  int64             `json:"durationMs,omitempty"`
}

// Metadata aggregates run-level accounting for one completed query.
type Metadata struct {
	Model      string    `json:"model"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	DurationMs int64     `json:"durationMs"`
	Iterations int       `json:"iterations"`
}

// Result is the aggregate outcome for one query of a batch.
type Result struct {
	Subject  string        `json:"ticker"`
	Query    string        `json:"query"`
	Answer   string        `json:"answer"`
	Tasks    []TaskSummary `json:"tasks"`
	Metadata Metadata      `json:"metadata"`
}

// Summarize converts a completed plan's tasks into their reporting view,
// preserving plan order.
func Summarize(plan *core.TaskPlan) []TaskSummary {
	summaries := make([]TaskSummary, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		s := TaskSummary{
			ID:          t.ID,
			Description: t.Description,
			TaskType:    t.TaskType,
			Status:      t.Status,
			DurationMs:  t.DurationMs(),
		}
		for _, call := range t.ToolCalls {
			s.ToolCalls = append(s.ToolCalls, ToolCallSummary{
				Tool:   call.Tool,
				Args:   call.Args,
				Status: string(t.Status),
			})
		}
		summaries = append(summaries, s)
	}

	return summaries
}

// Item is one query of a batch: a subject (ticker or topic), the query text
// and its planner-produced task plan.
type Item struct {
	Subject string
	Query   string
	Plan    *core.TaskPlan
}

// RunFunc executes a single item end to end. The engine façade's Run method
// satisfies this signature.
type RunFunc func(ctx context.Context, item Item) (*Result, error)

// DriverOptions configures a Driver.
type DriverOptions struct {
	// MaxConcurrentRuns bounds how many runs execute at once.
	MaxConcurrentRuns int
	// Logger receives batch progress diagnostics.
	Logger logging.Logger
}

// Driver processes independent queries concurrently. Each run owns its own
// session; nothing is shared between runs except the RunFunc itself.
type Driver struct {
	run    RunFunc
	maxPar int
	logger logging.Logger
}

// NewDriver constructs a Driver around the given RunFunc.
func NewDriver(run RunFunc, optFns ...func(o *DriverOptions)) *Driver {
	opts := DriverOptions{
		MaxConcurrentRuns: 3,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxConcurrentRuns < 1 {
		opts.MaxConcurrentRuns = 1
	}

	return &Driver{run: run, maxPar: opts.MaxConcurrentRuns, logger: opts.Logger}
}

// Process runs every item and returns results in item order. A failed run
// yields a nil slot in the results plus its error in the matching errors
// slot; other runs are unaffected.
func (d *Driver) Process(ctx context.Context, items []Item) ([]*Result, []error) {
	results := make([]*Result, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	slots := make(chan struct{}, d.maxPar)

	for i, item := range items {
		wg.Add(1)
		slots <- struct{}{}

		go func(i int, item Item) {
			defer wg.Done()
			defer func() { <-slots }()

			res, err := d.run(ctx, item)
			results[i] = res
			errs[i] = err

			if err != nil {
				d.logger.Error("batch.item.failed", "subject", item.Subject, "error", err.Error())
				return
			}
			d.logger.Info("batch.item.done", "subject", item.Subject)
		}(i, item)
	}

	wg.Wait()

	return results, errs
}
