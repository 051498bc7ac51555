package core

import (
	"sync/atomic"
	"time"

	"github.com/alphaseek/alphaseek/internal/util"
)

// RunSession binds one query's task graph, scratchpad, token counter,
// iteration counter and start time for the lifetime of a single run.
//
// A session exclusively owns its scratchpad and counter; it is never shared
// across concurrent runs. A batch driver processing multiple queries creates
// one session per query.
type RunSession struct {
	ID         string
	Query      string
	Graph      *TaskGraph
	Scratchpad *Scratchpad
	Tokens     *TokenCounter
	StartTime  time.Time

	iterations atomic.Int64
}

// NewRunSession creates a session for one query over a validated graph.
func NewRunSession(query string, graph *TaskGraph) *RunSession {
	return &RunSession{
		ID:         util.NewID(),
		Query:      query,
		Graph:      graph,
		Scratchpad: NewScratchpad(),
		Tokens:     NewTokenCounter(),
		StartTime:  time.Now(),
	}
}

// NextIteration increments and returns the agent-loop iteration count.
func (s *RunSession) NextIteration() int {
	return int(s.iterations.Add(1))
}

// Iterations returns the number of iterations driven so far.
func (s *RunSession) Iterations() int {
	return int(s.iterations.Load())
}

// ElapsedMs returns wall-clock milliseconds since the session started.
func (s *RunSession) ElapsedMs() int64 {
	return time.Since(s.StartTime).Milliseconds()
}
