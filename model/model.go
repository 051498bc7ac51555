// Package model abstracts the answer-synthesis LLM call behind a minimal
// interface with usage reporting, plus adapters for the official Anthropic
// and OpenAI SDKs and an in-memory mock for tests.
package model

import (
	"context"
	"fmt"

	"github.com/alphaseek/alphaseek/core"
)

// Request captures the normalized synthesis input: standing instructions
// plus the prompt assembled from the query and the bounded context.
type Request struct {
	Instructions string `json:"instructions"`
	Prompt       string `json:"prompt"`
}

// Response is the synthesized answer plus the usage reported by the
// provider. Usage may be nil when the provider omits it.
type Response struct {
	Text         string           `json:"text"`
	FinishReason string           `json:"finish_reason"`
	Usage        *core.TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface the engine needs to synthesize an answer.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
type MockModel struct {
	info      Info
	responses map[string]string
	usage     *core.TokenUsage
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// SetUsage sets the usage attached to every response.
func (m *MockModel) SetUsage(usage core.TokenUsage) { m.usage = &usage }

// SetError makes every Generate call fail with err.
func (m *MockModel) SetError(err error) { m.err = err }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, ok := m.responses[req.Prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}

	return &Response{Text: text, FinishReason: "stop", Usage: m.usage}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
