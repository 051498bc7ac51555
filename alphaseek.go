// Package alphaseek provides a high-level façade over the task execution
// engine: it validates planner-produced task plans, schedules their tool
// calls, bounds the gathered evidence to a token budget and synthesizes the
// final answer through a pluggable model adapter. Most applications interact
// with this package by:
//  1. Creating an Engine via New() with a tool registry and a model
//  2. Running one query (Run) or a batch of queries (batch.Driver)
//
// All defaults are safe for local development and testing; production
// deployments typically supply a structured logger and provider-backed
// model adapters.
package alphaseek

import (
	"context"
	"fmt"
	"time"

	"github.com/alphaseek/alphaseek/batch"
	"github.com/alphaseek/alphaseek/core"
	"github.com/alphaseek/alphaseek/logging"
	"github.com/alphaseek/alphaseek/model"
	"github.com/alphaseek/alphaseek/prompt"
	"github.com/alphaseek/alphaseek/scheduler"
	"github.com/alphaseek/alphaseek/tool"
)

// DefaultInstructions is the standing system prompt for answer synthesis.
const DefaultInstructions = "You are a research analyst. Answer the query using only the gathered data below. Cite which tool results support each claim. If the data is insufficient, say so."

// Options configures the Engine instance.
type Options struct {
	// TokenBudget caps the estimated tokens of context included in the
	// final-answer prompt.
	TokenBudget int

	// CharsPerToken is the divisor of the char-to-token size heuristic.
	CharsPerToken float64

	// MaxWorkers bounds how many tasks execute concurrently within one run.
	MaxWorkers int

	// Instructions overrides the synthesis system prompt.
	Instructions string

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Engine binds the scheduler, budgeter, answer builder and synthesis model
// for repeated runs. Public methods are safe for concurrent use; every run
// gets its own session.
type Engine struct {
	registry     tool.Registry
	model        model.Model
	scheduler    *scheduler.Scheduler
	builder      *prompt.FinalAnswerBuilder
	instructions string
	logger       logging.Logger
}

// New creates an Engine over the given tool registry and synthesis model
// with optional overrides.
func New(registry tool.Registry, m model.Model, optFns ...func(o *Options)) *Engine {
	opts := Options{
		TokenBudget:   prompt.DefaultTokenBudget,
		CharsPerToken: prompt.DefaultCharsPerToken,
		MaxWorkers:    4,
		Instructions:  DefaultInstructions,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	budgeter := prompt.NewBudgeter(func(o *prompt.BudgeterOptions) {
		o.TokenBudget = opts.TokenBudget
		o.CharsPerToken = opts.CharsPerToken
	})

	sched := scheduler.New(registry, func(o *scheduler.Options) {
		o.MaxWorkers = opts.MaxWorkers
		o.Logger = opts.Logger
	})

	return &Engine{
		registry:     registry,
		model:        m,
		scheduler:    sched,
		builder:      prompt.NewFinalAnswerBuilder(budgeter),
		instructions: opts.Instructions,
		logger:       opts.Logger,
	}
}

// Run executes one query end to end: plan validation, scheduling, context
// building and answer synthesis. It satisfies batch.RunFunc.
//
// An invalid plan fails fast with *core.PlanValidationError before anything
// is scheduled. Individual tool failures never fail the run; they surface in
// the task summaries and, in the worst case, as the "no data" sentinels in
// the synthesized context.
func (e *Engine) Run(ctx context.Context, item batch.Item) (*batch.Result, error) {
	graph, validation := core.BuildTaskGraph(item.Plan)
	if !validation.Valid {
		return nil, &core.PlanValidationError{Validation: validation}
	}

	session := core.NewRunSession(item.Query, graph)
	session.NextIteration()

	e.logger.Info("run.start", "run_id", session.ID, "plan_id", item.Plan.ID, "tasks", len(item.Plan.Tasks))

	if err := e.scheduler.Run(ctx, session); err != nil {
		e.logger.Warn("run.scheduler.interrupted", "run_id", session.ID, "error", err.Error())
	}

	contextText := e.builder.Build(session.Scratchpad)

	answer, err := e.synthesize(ctx, session, item.Query, contextText)
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	endTime := time.Now()

	result := &batch.Result{
		Subject: item.Subject,
		Query:   item.Query,
		Answer:  answer,
		Tasks:   batch.Summarize(item.Plan),
		Metadata: batch.Metadata{
			Model:      e.model.Info().Name,
			StartTime:  session.StartTime,
			EndTime:    endTime,
			DurationMs: endTime.Sub(session.StartTime).Milliseconds(),
			Iterations: session.Iterations(),
		},
	}

	if tps, ok := session.Tokens.TokensPerSecond(session.ElapsedMs()); ok {
		e.logger.Info("run.done", "run_id", session.ID, "tokens_per_second", tps)
	} else {
		e.logger.Info("run.done", "run_id", session.ID)
	}

	return result, nil
}

// synthesize performs the final answer model call and feeds its usage into
// the session's token counter.
func (e *Engine) synthesize(ctx context.Context, session *core.RunSession, query, contextText string) (string, error) {
	req := model.Request{
		Instructions: e.instructions,
		Prompt:       fmt.Sprintf("Query: %s\n\nGathered data:\n\n%s", query, contextText),
	}

	start := time.Now()
	resp, err := e.model.Generate(ctx, req)
	if err != nil {
		e.logger.Error("run.synthesis.failed", "run_id", session.ID, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return "", err
	}

	session.Tokens.Add(resp.Usage)

	e.logger.Debug("run.synthesis.done", "run_id", session.ID, "duration_ms", time.Since(start).Milliseconds())

	return resp.Text, nil
}
