package core

import (
	"strings"
	"sync"
)

// errorResultPrefix marks a failed result's text so downstream consumers that
// only see the result string can still tell success from failure.
const errorResultPrefix = "Error:"

// ContextEntry is one recorded tool-call outcome. Entries are immutable once
// written and are never reordered or removed for the lifetime of a run.
type ContextEntry struct {
	TaskID  string         `json:"task_id"`
	Tool    string         `json:"tool"`
	Args    map[string]any `json:"args,omitempty"`
	Result  string         `json:"result"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
}

// Scratchpad is the append-only, insertion-ordered store of tool-call
// results for one run. Appends from concurrent workers are serialized so
// every read observes the exact insertion order.
type Scratchpad struct {
	mu      sync.Mutex
	entries []ContextEntry
}

// NewScratchpad constructs an empty scratchpad.
func NewScratchpad() *Scratchpad {
	return &Scratchpad{}
}

// AddResult appends a tool-call outcome. Append is the only mutation.
//
// Failed results are prefixed with "Error:" unless already marked, keeping
// the text convention and the explicit Success flag from diverging.
func (s *Scratchpad) AddResult(taskID, tool string, args map[string]any, result string, success bool, errMsg string) {
	if !success && !strings.HasPrefix(result, errorResultPrefix) {
		if result == "" {
			result = errMsg
		}
		result = errorResultPrefix + " " + result
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, ContextEntry{
		TaskID:  taskID,
		Tool:    tool,
		Args:    args,
		Result:  result,
		Success: success,
		Error:   errMsg,
	})
}

// GetFullContexts returns a copy of every entry in insertion order.
func (s *Scratchpad) GetFullContexts() []ContextEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]ContextEntry, len(s.entries))
	copy(entries, s.entries)

	return entries
}

// GetValidContexts returns the entries whose result does not carry the
// error marker, in insertion order.
func (s *Scratchpad) GetValidContexts() []ContextEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid := make([]ContextEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if strings.HasPrefix(e.Result, errorResultPrefix) {
			continue
		}
		valid = append(valid, e)
	}

	return valid
}

// Len returns the number of recorded entries.
func (s *Scratchpad) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
